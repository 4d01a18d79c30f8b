package manager

import (
	"fmt"
	"strings"
)

type Provider int

const (
	AccuWeather Provider = iota + 1
	WeatherAPI
	Weatherbit
	OpenWeatherMap
	OpenCage
)

// WeatherProviders lists the weather sources in the order they are consulted.
var WeatherProviders = []Provider{AccuWeather, WeatherAPI, Weatherbit, OpenWeatherMap}

var providerTable = map[Provider]struct {
	tag     string
	env     string
	aliases []string
}{
	AccuWeather:    {"accuweather.com", "ACCUWEATHER", []string{"accuweather"}},
	WeatherAPI:     {"weatherapi.com", "WEATHERAPI", []string{"weatherapi", "apixu", "apixu.com"}},
	Weatherbit:     {"weatherbit.io", "WEATHERBIT", []string{"weatherbit"}},
	OpenWeatherMap: {"openweathermap.org", "OPENWEATHERMAP", []string{"owm", "openweather", "openweathermap"}},
	OpenCage:       {"opencagedata.com", "OPENCAGEDATA", []string{"opencage", "opencagedata"}},
}

// String returns the provider tag stored alongside records.
func (p Provider) String() string {
	if p == 0 {
		return "any"
	}
	if info, ok := providerTable[p]; ok {
		return info.tag
	}
	return fmt.Sprintf("provider(%d)", int(p))
}

// EnvName is the suffix used by API_KEY_* and API_LIMIT_* variables.
func (p Provider) EnvName() string {
	return providerTable[p].env
}

// ParseProvider accepts a tag or one of its aliases. An empty string yields
// the zero Provider, meaning "all providers".
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	for _, p := range WeatherProviders {
		info := providerTable[p]
		if s == info.tag {
			return p, nil
		}
		for _, alias := range info.aliases {
			if s == alias {
				return p, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// ProviderFromTag maps a stored tag back to its identifier.
func ProviderFromTag(tag string) (Provider, bool) {
	for p, info := range providerTable {
		if info.tag == tag {
			return p, true
		}
	}
	return 0, false
}

// ProviderOptions lists the short names accepted on the command line.
func ProviderOptions() []string {
	opts := make([]string, 0, len(WeatherProviders))
	for _, p := range WeatherProviders {
		opts = append(opts, providerTable[p].aliases[0])
	}
	return opts
}
