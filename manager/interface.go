package manager

import (
	"context"
	"maps"
	"time"
)

// ForecastAPI is implemented by every weather provider adapter.
type ForecastAPI interface {
	Provider() Provider
	// Forecast returns today's and tomorrow's readings for the city.
	Forecast(ctx context.Context, city *City) ([2]Reading, error)
}

// HistoryAPI is implemented by adapters that can report past days.
type HistoryAPI interface {
	ForecastAPI
	History(ctx context.Context, city *City, date time.Time) (Reading, error)
}

type Geocoder interface {
	Lookup(ctx context.Context, name, country string) ([]Place, error)
}

// Ledger gates remote calls against a provider's daily budget.
type Ledger interface {
	// Consume returns ErrQuotaExceeded without counting the call when the
	// budget is spent, otherwise it records one call.
	Consume(ctx context.Context, provider Provider) error
	Usage(ctx context.Context, provider Provider) (QuotaEntry, error)
}

// Disambiguator lets a human pick between cities sharing a name.
type Disambiguator interface {
	Confirm(city City) (bool, error)
	// Choose returns an index into cities; len(cities) means none of them.
	Choose(cities []City) (int, error)
}

// KeyStore persists provider location keys resolved by the adapters.
type KeyStore interface {
	SetLocationKey(ctx context.Context, cityID uint, provider Provider, key string) error
}

type Store interface {
	KeyStore

	FindForecast(ctx context.Context, cityID uint, date time.Time, provider Provider) (*Forecast, error)
	// FindForecasts matches every provider when provider is zero.
	FindForecasts(ctx context.Context, cityID uint, date time.Time, provider Provider) ([]Forecast, error)
	SaveForecast(ctx context.Context, forecast *Forecast) error

	FindCity(ctx context.Context, name, region, country string) (*City, error)
	FindCities(ctx context.Context, name, country string) ([]City, error)
	SaveCity(ctx context.Context, city City) (*City, error)
	IncrementChosen(ctx context.Context, cityID uint) error
}

type City struct {
	ID           uint
	Name         string
	Region       string
	Country      string
	Lat          float64
	Lon          float64
	LocationKeys map[Provider]string
	Chosen       int
}

// LocationKey returns the provider specific identifier of the city, if known.
func (c *City) LocationKey(provider Provider) string {
	if c.LocationKeys == nil {
		return ""
	}
	return c.LocationKeys[provider]
}

func (c *City) SetLocationKey(provider Provider, key string) {
	if c.LocationKeys == nil {
		c.LocationKeys = make(map[Provider]string)
	}
	c.LocationKeys[provider] = key
}

// Clone returns a copy of the city that shares no location keys with c.
func (c City) Clone() City {
	c.LocationKeys = maps.Clone(c.LocationKeys)
	return c
}

// Label formats the city as "name, region, country", skipping an empty region.
func (c City) Label() string {
	if c.Region == "" {
		return c.Name + ", " + c.Country
	}
	return c.Name + ", " + c.Region + ", " + c.Country
}

type Forecast struct {
	ID          uint
	Date        time.Time
	CityID      uint
	CityName    string
	Weather     string
	Temperature *float64
	TempMin     float64
	TempMax     float64
	Provider    Provider
}

// Average is the mean of the day's extremes.
func (f Forecast) Average() float64 {
	return (f.TempMin + f.TempMax) / 2
}

// Reading is a provider report normalized but not yet bound to a city or day.
type Reading struct {
	Weather     string
	Temperature *float64
	TempMin     float64
	TempMax     float64
}

type QuotaEntry struct {
	Date     time.Time
	Provider Provider
	Calls    int
	Limit    int
}

// Place is a single geocoding candidate.
type Place struct {
	Name    string
	Country string
	State   string
	County  string
	Lat     float64
	Lon     float64
}
