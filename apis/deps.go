package apis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"weatherwizard/manager"
)

// Deps bundles the collaborators shared by every provider adapter.
type Deps struct {
	Client *Client
	Ledger manager.Ledger
	Keys   manager.KeyStore
}

// Gate fails fast when the provider has no api key and otherwise spends one
// call of its daily budget.
func (d Deps) Gate(ctx context.Context, provider manager.Provider, apiKey string) error {
	if apiKey == "" {
		zerolog.Ctx(ctx).Warn().Str("provider", provider.String()).Msg("api key missing")
		return fmt.Errorf("%s: %w", provider, manager.ErrConfigMissing)
	}
	return d.Spend(ctx, provider)
}

// Spend takes one call from the provider's daily budget for a request that is
// about to be sent. Nothing is spent while the provider's circuit is open.
func (d Deps) Spend(ctx context.Context, provider manager.Provider) error {
	if d.Client != nil && !d.Client.Available(provider) {
		zerolog.Ctx(ctx).Info().Str("provider", provider.String()).Msg("circuit open")
		return fmt.Errorf("%w: %s: circuit open", manager.ErrTransport, provider)
	}
	return d.Ledger.Consume(ctx, provider)
}

// LatLon formats coordinates the way every provider accepts them.
func LatLon(city *manager.City) (string, string) {
	return strconv.FormatFloat(city.Lat, 'f', -1, 64), strconv.FormatFloat(city.Lon, 'f', -1, 64)
}
