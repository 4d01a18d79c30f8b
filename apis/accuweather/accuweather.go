package accuweather

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

const apiName = manager.AccuWeather

func New(apiKey string, deps apis.Deps) *accuWeather {
	return &accuWeather{
		apiKey:  apiKey,
		baseURL: "http://dataservice.accuweather.com",
		deps:    deps,
	}
}

type accuWeather struct {
	apiKey  string
	baseURL string
	deps    apis.Deps
}

func (a accuWeather) Provider() manager.Provider {
	return apiName
}

func (a accuWeather) Forecast(ctx context.Context, city *manager.City) ([2]manager.Reading, error) {
	var readings [2]manager.Reading

	if err := a.deps.Gate(ctx, apiName, a.apiKey); err != nil {
		return readings, err
	}

	key, err := a.locationKey(ctx, city)
	if err != nil {
		return readings, err
	}

	zerolog.Ctx(ctx).Info().Str("provider", apiName.String()).Str("city", city.Name).Msg("calling forecast API")

	var r forecastResult
	params := map[string]string{
		"apikey": a.apiKey,
		"metric": "true",
	}
	if err := a.deps.Client.FetchJSON(ctx, apiName, a.baseURL+"/forecasts/v1/daily/5day/"+key, params, &r); err != nil {
		return readings, err
	}

	if r.Code != "" {
		return readings, fmt.Errorf("%w: %s", manager.ErrProviderData, r.Message)
	}
	if len(r.DailyForecasts) < 2 {
		return readings, fmt.Errorf("%w: forecast data not found for %s", manager.ErrProviderData, city.Name)
	}

	for i := range readings {
		f := r.DailyForecasts[i]
		readings[i] = manager.NewReading(f.Day.IconPhrase, nil, f.Temperature.Minimum.Value, f.Temperature.Maximum.Value)
	}

	return readings, nil
}

// locationKey returns the AccuWeather key of the city, looking it up by
// coordinates and storing it when the city does not have one yet. The lookup
// is a metered call of its own.
func (a accuWeather) locationKey(ctx context.Context, city *manager.City) (string, error) {
	log := zerolog.Ctx(ctx)

	if key := city.LocationKey(apiName); key != "" {
		log.Debug().Str("city", city.Name).Str("key", key).Msg("location key found")
		return key, nil
	}
	log.Info().Str("city", city.Name).Msg("location key missing")

	if err := a.deps.Spend(ctx, apiName); err != nil {
		return "", err
	}

	lat, lon := apis.LatLon(city)
	params := map[string]string{
		"apikey": a.apiKey,
		"q":      lat + "," + lon,
	}

	log.Info().Str("provider", apiName.String()).Str("city", city.Name).Msg("calling location API")

	var r locationResult
	if err := a.deps.Client.FetchJSON(ctx, apiName, a.baseURL+"/locations/v1/cities/geoposition/search", params, &r); err != nil {
		return "", err
	}

	if r.Code != "" {
		return "", fmt.Errorf("%w: %s", manager.ErrProviderData, r.Message)
	}
	if r.Key == "" {
		return "", fmt.Errorf("%w: location data not found for %s", manager.ErrProviderData, city.Name)
	}

	if err := a.deps.Keys.SetLocationKey(ctx, city.ID, apiName, r.Key); err != nil {
		return "", err
	}
	city.SetLocationKey(apiName, r.Key)

	return r.Key, nil
}

type providerError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type locationResult struct {
	providerError
	Key string `json:"Key"`
}

type forecastResult struct {
	providerError
	DailyForecasts []struct {
		EpochDate   int64 `json:"EpochDate"`
		Temperature struct {
			Minimum struct {
				Value float64 `json:"Value"`
			} `json:"Minimum"`
			Maximum struct {
				Value float64 `json:"Value"`
			} `json:"Maximum"`
		} `json:"Temperature"`
		Day struct {
			IconPhrase string `json:"IconPhrase"`
		} `json:"Day"`
	} `json:"DailyForecasts"`
}
