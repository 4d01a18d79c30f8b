package manager

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Per-provider failures. The orchestrator logs and skips these.
	ErrConfigMissing = errors.New("api key missing")
	ErrQuotaExceeded = errors.New("rate limit reached")
	ErrTransport     = errors.New("transport failure")
	ErrProviderData  = errors.New("provider returned no usable data")

	// Request level failures surfaced to the caller.
	ErrUnresolved       = errors.New("city could not be resolved")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidDay       = errors.New("invalid day")
	ErrUnknownProvider  = errors.New("unknown provider")
)
