package weatherbit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

const apiName = manager.Weatherbit

func New(apiKey string, deps apis.Deps) *weatherbit {
	return &weatherbit{
		apiKey:  apiKey,
		baseURL: "https://api.weatherbit.io/v2.0",
		deps:    deps,
	}
}

type weatherbit struct {
	apiKey  string
	baseURL string
	deps    apis.Deps
}

func (w weatherbit) Provider() manager.Provider {
	return apiName
}

func (w weatherbit) Forecast(ctx context.Context, city *manager.City) ([2]manager.Reading, error) {
	var readings [2]manager.Reading

	if err := w.deps.Gate(ctx, apiName, w.apiKey); err != nil {
		return readings, err
	}

	params := w.params(city)
	params["days"] = "2"

	zerolog.Ctx(ctx).Info().Str("provider", apiName.String()).Str("city", city.Name).Msg("calling forecast API")

	var r dailyResult
	if err := w.deps.Client.FetchJSON(ctx, apiName, w.baseURL+"/forecast/daily", params, &r); err != nil {
		return readings, err
	}
	if r.Error != "" {
		return readings, fmt.Errorf("%w: %s", manager.ErrProviderData, r.Error)
	}
	if len(r.Data) < 2 {
		return readings, fmt.Errorf("%w: forecast data not found for %s", manager.ErrProviderData, city.Name)
	}

	for i := range readings {
		d := r.Data[i]
		temp := d.Temp
		readings[i] = manager.NewReading(d.Weather.Description, &temp, d.MinTemp, d.MaxTemp)
	}

	return readings, nil
}

// History summarizes the hourly observations of date: extremes and mean of
// the temperatures, and the weather reported closest to noon.
func (w weatherbit) History(ctx context.Context, city *manager.City, date time.Time) (manager.Reading, error) {
	if err := w.deps.Gate(ctx, apiName, w.apiKey); err != nil {
		return manager.Reading{}, err
	}

	params := w.params(city)
	params["start_date"] = date.Format(time.DateOnly)
	params["end_date"] = date.AddDate(0, 0, 1).Format(time.DateOnly)

	zerolog.Ctx(ctx).Info().
		Str("provider", apiName.String()).
		Str("city", city.Name).
		Str("date", params["start_date"]).
		Msg("calling history API")

	var r hourlyResult
	if err := w.deps.Client.FetchJSON(ctx, apiName, w.baseURL+"/history/hourly", params, &r); err != nil {
		return manager.Reading{}, err
	}
	if r.Error != "" {
		return manager.Reading{}, fmt.Errorf("%w: %s", manager.ErrProviderData, r.Error)
	}
	if len(r.Data) == 0 {
		return manager.Reading{}, fmt.Errorf("%w: history data not found for %s", manager.ErrProviderData, city.Name)
	}

	return r.summary(), nil
}

func (w weatherbit) params(city *manager.City) map[string]string {
	lat, lon := apis.LatLon(city)
	return map[string]string{
		"key": w.apiKey,
		"lat": lat,
		"lon": lon,
	}
}

type weather struct {
	Description string `json:"description"`
}

type dailyResult struct {
	Error string `json:"error"`
	Data  []struct {
		ValidDate string  `json:"valid_date"`
		Temp      float64 `json:"temp"`
		MinTemp   float64 `json:"min_temp"`
		MaxTemp   float64 `json:"max_temp"`
		Weather   weather `json:"weather"`
	} `json:"data"`
}

type hourlyResult struct {
	Error string `json:"error"`
	Data  []struct {
		TimestampLocal string  `json:"timestamp_local"`
		Temp           float64 `json:"temp"`
		Weather        weather `json:"weather"`
	} `json:"data"`
}

func (r hourlyResult) summary() manager.Reading {
	var (
		sum         float64
		description string
		lo          = math.Inf(1)
		hi          = math.Inf(-1)
		nearest     = math.MaxInt
	)

	for _, hour := range r.Data {
		sum += hour.Temp
		lo = math.Min(lo, hour.Temp)
		hi = math.Max(hi, hour.Temp)

		t, err := time.Parse("2006-01-02T15:04:05", hour.TimestampLocal)
		if err != nil {
			continue
		}
		if d := absInt(t.Hour() - 12); d < nearest {
			nearest = d
			description = hour.Weather.Description
		}
	}

	avg := sum / float64(len(r.Data))
	return manager.NewReading(description, &avg, lo, hi)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
