package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Resolver maps free-text location input to a stored city.
type Resolver struct {
	store    Store
	geocoder Geocoder
}

func NewResolver(store Store, geocoder Geocoder) *Resolver {
	return &Resolver{store: store, geocoder: geocoder}
}

// Resolve finds the city the user means by name (and optional country code),
// populating the store from the geocoder when nothing is known locally and
// asking d when several cities match.
func (r *Resolver) Resolve(ctx context.Context, name, country string, d Disambiguator) (*City, error) {
	log := zerolog.Ctx(ctx)

	name = strings.TrimSpace(name)
	country = strings.ToUpper(strings.TrimSpace(country))

	cities, err := r.store.FindCities(ctx, name, country)
	if err != nil {
		return nil, err
	}

	if len(cities) == 0 {
		log.Info().Str("name", name).Msg("no cities stored, populating")
		if err := r.populate(ctx, name, country); err != nil {
			return nil, err
		}
		if cities, err = r.store.FindCities(ctx, name, country); err != nil {
			return nil, err
		}
	}

	log.Debug().Int("count", len(cities)).Str("name", name).Msg("cities found")

	switch len(cities) {
	case 0:
		return nil, fmt.Errorf("%w: no cities named %q", ErrUnresolved, name)
	case 1:
		return r.choose(ctx, cities[0])
	}

	ok, err := d.Confirm(cities[0])
	if err != nil {
		return nil, err
	}
	if ok {
		return r.choose(ctx, cities[0])
	}

	index, err := d.Choose(cities)
	if err != nil {
		return nil, err
	}
	if index == len(cities) {
		return nil, fmt.Errorf("%w: no other cities named %q", ErrUnresolved, name)
	}
	if index < 0 || index > len(cities) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSelection, index)
	}

	return r.choose(ctx, cities[index])
}

func (r *Resolver) choose(ctx context.Context, city City) (*City, error) {
	if err := r.store.IncrementChosen(ctx, city.ID); err != nil {
		return nil, err
	}
	city.Chosen++
	return &city, nil
}

// populate stores every geocoding candidate matching the input. Geocoder
// failures leave the store untouched and are not fatal.
func (r *Resolver) populate(ctx context.Context, name, country string) error {
	if r.geocoder == nil {
		return nil
	}

	places, err := r.geocoder.Lookup(ctx, name, country)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("geocoding failed")
		if isProviderError(err) {
			return nil
		}
		return err
	}

	for _, place := range places {
		if !strings.EqualFold(strings.TrimSpace(place.Name), name) {
			continue
		}
		if country != "" && !strings.EqualFold(place.Country, country) {
			continue
		}

		if _, err := r.store.SaveCity(ctx, cityFromPlace(place)); err != nil {
			return err
		}
	}

	return nil
}

// cityFromPlace takes the state as region for US and Canadian places and the
// county everywhere else.
func cityFromPlace(place Place) City {
	code := strings.ToUpper(place.Country)

	region := place.State
	if code != "US" && code != "CA" && place.County != "" {
		region = place.County
	}

	return City{
		Name:    strings.TrimSpace(place.Name),
		Region:  region,
		Country: code,
		Lat:     Round(place.Lat, 2),
		Lon:     Round(place.Lon, 2),
	}
}

func isProviderError(err error) bool {
	return errors.Is(err, ErrConfigMissing) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrProviderData)
}
