package quota

import (
	"time"

	"weatherwizard/manager"
)

const (
	// Margin is the number of calls held back from every daily limit.
	Margin = 2

	DefaultLimit = 1000
)

// Limits holds the daily call ceiling of each provider.
type Limits map[manager.Provider]int

func (l Limits) For(provider manager.Provider) int {
	if limit, ok := l[provider]; ok && limit > 0 {
		return limit
	}
	return DefaultLimit
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}
