package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

func New(store Store) *Manager {
	return &Manager{
		store: store,
		now:   time.Now,
	}
}

// Manager decides, per provider, whether a cached forecast can be used or a
// remote call must be made, and returns everything stored for the request.
type Manager struct {
	store    Store
	apis     []ForecastAPI
	resolver *Resolver
	now      func() time.Time
}

func (m *Manager) RegisterAPI(apis ...ForecastAPI) {
	m.apis = append(m.apis, apis...)
	sort.SliceStable(m.apis, func(i, j int) bool {
		return m.apis[i].Provider() < m.apis[j].Provider()
	})
}

func (m *Manager) SetGeocoding(geocoder Geocoder) {
	m.resolver = NewResolver(m.store, geocoder)
}

// SetClock replaces time.Now, which also fixes the time zone days are cut in.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Resolve delegates to the city resolver.
func (m *Manager) Resolve(ctx context.Context, name, country string, d Disambiguator) (*City, error) {
	if m.resolver == nil {
		m.resolver = NewResolver(m.store, nil)
	}
	return m.resolver.Resolve(ctx, name, country, d)
}

// Forecasts fetches what is missing for city on day from every registered
// provider (or only from provider when it is non-zero) and returns all
// records stored for that city and day.
func (m *Manager) Forecasts(ctx context.Context, city *City, day Day, provider Provider) ([]Forecast, error) {
	if city == nil {
		return nil, ErrUnresolved
	}

	now := m.now()
	date := day.Date(now)

	var (
		wg     sync.WaitGroup
		copies = make(map[Provider]*City)
	)
	for _, api := range m.apis {
		if provider != 0 && api.Provider() != provider {
			continue
		}

		// Adapters may learn location keys, so each one works on its own copy.
		local := city.Clone()
		copies[api.Provider()] = &local

		wg.Add(1)
		go func(api ForecastAPI, city *City) {
			defer wg.Done()

			log := zerolog.Ctx(ctx).With().Str("provider", api.Provider().String()).Logger()
			err := m.acquire(log.WithContext(ctx), api, city, day, now)
			switch {
			case err == nil:
			case isProviderError(err):
				log.Info().Err(err).Msg("provider skipped")
			default:
				log.Error().Err(err).Msg("provider failed")
			}
		}(api, &local)
	}
	wg.Wait()

	for p, local := range copies {
		if key := local.LocationKey(p); key != "" {
			city.SetLocationKey(p, key)
		}
	}

	forecasts, err := m.store.FindForecasts(ctx, city.ID, date, provider)
	if err != nil {
		return nil, fmt.Errorf("read forecasts: %w", err)
	}

	return forecasts, nil
}

// acquire runs the cache check and, on a miss, a single fetch for one provider.
func (m *Manager) acquire(ctx context.Context, api ForecastAPI, city *City, day Day, now time.Time) error {
	log := zerolog.Ctx(ctx)
	date := day.Date(now)

	cached, err := m.store.FindForecast(ctx, city.ID, date, api.Provider())
	switch {
	case err == nil && cached != nil:
		log.Debug().Str("date", date.Format(time.DateOnly)).Msg("data found")
		return nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}
	log.Debug().Str("date", date.Format(time.DateOnly)).Msg("no data found")

	if day == Yesterday {
		history, ok := api.(HistoryAPI)
		if !ok {
			return nil
		}

		reading, err := history.History(ctx, city, date)
		if err != nil {
			return err
		}
		return m.save(ctx, city, date, api.Provider(), reading)
	}

	readings, err := api.Forecast(ctx, city)
	if err != nil {
		return err
	}

	for i, d := range []Day{Today, Tomorrow} {
		if err := m.save(ctx, city, d.Date(now), api.Provider(), readings[i]); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) save(ctx context.Context, city *City, date time.Time, provider Provider, r Reading) error {
	return m.store.SaveForecast(ctx, &Forecast{
		Date:        date,
		CityID:      city.ID,
		CityName:    city.Name,
		Weather:     r.Weather,
		Temperature: r.Temperature,
		TempMin:     r.TempMin,
		TempMax:     r.TempMax,
		Provider:    provider,
	})
}
