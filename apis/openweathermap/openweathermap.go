package openweathermap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

const apiName = manager.OpenWeatherMap

func New(apiKey string, deps apis.Deps) *openWeatherMap {
	return &openWeatherMap{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		deps:    deps,
	}
}

type openWeatherMap struct {
	apiKey  string
	baseURL string
	deps    apis.Deps
}

func (o openWeatherMap) Provider() manager.Provider {
	return apiName
}

// Forecast asks for nine 3-hourly entries, covering the next 24 hours: the
// first one stands for today and the last one for tomorrow.
func (o openWeatherMap) Forecast(ctx context.Context, city *manager.City) ([2]manager.Reading, error) {
	var readings [2]manager.Reading

	if err := o.deps.Gate(ctx, apiName, o.apiKey); err != nil {
		return readings, err
	}

	params := map[string]string{
		"APPID": o.apiKey,
		"units": "metric",
		"cnt":   "9",
	}
	if id := city.LocationKey(apiName); id != "" {
		params["id"] = id
	} else {
		params["lat"], params["lon"] = apis.LatLon(city)
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("provider", apiName.String()).Str("city", city.Name).Msg("calling forecast API")

	var r result
	if err := o.deps.Client.FetchJSON(ctx, apiName, o.baseURL+"/forecast", params, &r); err != nil {
		return readings, err
	}

	if code := fmt.Sprint(r.Cod); code != "200" {
		return readings, fmt.Errorf("%w: %s: %v", manager.ErrProviderData, code, r.Message)
	}
	if len(r.List) < 2 {
		return readings, fmt.Errorf("%w: forecast data not found for %s", manager.ErrProviderData, city.Name)
	}

	if city.LocationKey(apiName) == "" && r.City.ID != 0 {
		id := strconv.FormatInt(r.City.ID, 10)
		if err := o.deps.Keys.SetLocationKey(ctx, city.ID, apiName, id); err != nil {
			log.Warn().Err(err).Msg("saving location key failed")
		} else {
			city.SetLocationKey(apiName, id)
		}
	}

	for i, entry := range []entry{r.List[0], r.List[len(r.List)-1]} {
		temp := entry.Main.Temp
		var description string
		if len(entry.Weather) > 0 {
			description = entry.Weather[0].Description
		}
		readings[i] = manager.NewReading(description, &temp, entry.Main.TempMin, entry.Main.TempMax)
	}

	return readings, nil
}

type entry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type result struct {
	Cod     interface{} `json:"cod"`
	Message interface{} `json:"message"`
	List    []entry     `json:"list"`
	City    struct {
		ID int64 `json:"id"`
	} `json:"city"`
}
