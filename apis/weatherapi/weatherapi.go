package weatherapi

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

const apiName = manager.WeatherAPI

func New(apiKey string, deps apis.Deps) *weatherApi {
	return &weatherApi{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		deps:    deps,
	}
}

type weatherApi struct {
	apiKey  string
	baseURL string
	deps    apis.Deps
}

func (w weatherApi) Provider() manager.Provider {
	return apiName
}

func (w weatherApi) Forecast(ctx context.Context, city *manager.City) ([2]manager.Reading, error) {
	var readings [2]manager.Reading

	if err := w.deps.Gate(ctx, apiName, w.apiKey); err != nil {
		return readings, err
	}

	params := w.params(city)
	params["days"] = "2"

	zerolog.Ctx(ctx).Info().Str("provider", apiName.String()).Str("city", city.Name).Msg("calling forecast API")

	days, err := w.processRequest(ctx, w.baseURL+"/forecast.json", params)
	if err != nil {
		return readings, err
	}
	if len(days) < 2 {
		return readings, fmt.Errorf("%w: forecast data not found for %s", manager.ErrProviderData, city.Name)
	}

	readings[0] = days[0]
	readings[1] = days[1]

	return readings, nil
}

func (w weatherApi) History(ctx context.Context, city *manager.City, date time.Time) (manager.Reading, error) {
	if err := w.deps.Gate(ctx, apiName, w.apiKey); err != nil {
		return manager.Reading{}, err
	}

	params := w.params(city)
	params["dt"] = date.Format(time.DateOnly)
	params["hour"] = "12"

	zerolog.Ctx(ctx).Info().
		Str("provider", apiName.String()).
		Str("city", city.Name).
		Str("date", params["dt"]).
		Msg("calling history API")

	days, err := w.processRequest(ctx, w.baseURL+"/history.json", params)
	if err != nil {
		return manager.Reading{}, err
	}
	if len(days) == 0 {
		return manager.Reading{}, fmt.Errorf("%w: history data not found for %s", manager.ErrProviderData, city.Name)
	}

	return days[0], nil
}

func (w weatherApi) params(city *manager.City) map[string]string {
	lat, lon := apis.LatLon(city)
	return map[string]string{
		"key": w.apiKey,
		"q":   fmt.Sprintf("%s,%s", lat, lon),
	}
}

func (w weatherApi) processRequest(ctx context.Context, path string, params map[string]string) ([]manager.Reading, error) {
	var r result
	if err := w.deps.Client.FetchJSON(ctx, apiName, path, params, &r); err != nil {
		return nil, err
	}

	if r.Error.Code != 0 {
		return nil, fmt.Errorf("%w: %d %s", manager.ErrProviderData, r.Error.Code, r.Error.Message)
	}

	return r.readings(), nil
}

type result struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Forecast struct {
		ForecastDay []struct {
			DateEpoch int64 `json:"date_epoch"`
			Day       struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				MinTempC  float64 `json:"mintemp_c"`
				MaxTempC  float64 `json:"maxtemp_c"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (r result) readings() []manager.Reading {
	readings := make([]manager.Reading, 0, len(r.Forecast.ForecastDay))
	for _, fd := range r.Forecast.ForecastDay {
		avg := fd.Day.AvgTempC
		readings = append(readings, manager.NewReading(fd.Day.Condition.Text, &avg, fd.Day.MinTempC, fd.Day.MaxTempC))
	}
	return readings
}
