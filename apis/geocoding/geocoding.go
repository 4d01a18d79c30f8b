package geocoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

const apiName = manager.OpenCage

func New(apiKey string, deps apis.Deps) *geocoding {
	return &geocoding{
		apiKey:  apiKey,
		baseURL: "https://api.opencagedata.com/geocode/v1/json",
		deps:    deps,
	}
}

type geocoding struct {
	apiKey  string
	baseURL string
	deps    apis.Deps
}

func (g geocoding) Lookup(ctx context.Context, name, country string) ([]manager.Place, error) {
	if err := g.deps.Gate(ctx, apiName, g.apiKey); err != nil {
		return nil, err
	}

	q := name
	if country != "" {
		q = fmt.Sprintf("%s, %s", name, country)
	}

	params := map[string]string{
		"key":            g.apiKey,
		"q":              q,
		"no_annotations": "1",
	}

	zerolog.Ctx(ctx).Info().Str("provider", apiName.String()).Str("name", name).Msg("calling geocoding API")

	var r result
	if err := g.deps.Client.FetchJSON(ctx, apiName, g.baseURL, params, &r); err != nil {
		return nil, err
	}

	if r.Status.Code != 0 && r.Status.Code != 200 {
		return nil, fmt.Errorf("%w: %s", manager.ErrProviderData, r.Status.Message)
	}

	return r.places(), nil
}

type result struct {
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Results []struct {
		Formatted  string `json:"formatted"`
		Components struct {
			CountryCode string `json:"country_code"`
			State       string `json:"state"`
			County      string `json:"county"`
		} `json:"components"`
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

func (r result) places() []manager.Place {
	places := make([]manager.Place, 0, len(r.Results))
	for _, res := range r.Results {
		name, _, _ := strings.Cut(res.Formatted, ", ")
		places = append(places, manager.Place{
			Name:    name,
			Country: strings.ToUpper(res.Components.CountryCode),
			State:   res.Components.State,
			County:  res.Components.County,
			Lat:     res.Geometry.Lat,
			Lon:     res.Geometry.Lng,
		})
	}
	return places
}
