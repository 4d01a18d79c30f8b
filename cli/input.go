package cli

import (
	"fmt"
	"strings"

	"weatherwizard/manager"
)

const (
	defaultCity = "ljubljana"
	defaultDay  = "today"
)

type request struct {
	name     string
	country  string
	day      manager.Day
	provider manager.Provider
}

// inputError describes an argument that is not one of the accepted values.
type inputError struct {
	field string
	value string
	valid []string
}

func (e *inputError) Error() string {
	return fmt.Sprintf("Sorry, '%s' is not a valid option for the '%s' field.", e.value, e.field)
}

// Options renders the accepted values as "'a', 'b' or 'c'".
func (e *inputError) Options() string {
	quoted := make([]string, len(e.valid))
	for i, v := range e.valid {
		quoted[i] = "'" + v + "'"
	}
	if len(quoted) < 2 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// parseInput reads "city[,country] [day] [provider]".
func parseInput(args []string) (request, error) {
	values := []string{defaultCity, defaultDay, ""}
	for i, arg := range args {
		if i < len(values) {
			values[i] = strings.ToLower(strings.TrimSpace(arg))
		}
	}

	var req request

	name, country, _ := strings.Cut(values[0], ",")
	req.name = strings.TrimSpace(name)
	req.country = strings.TrimSpace(country)
	if req.country == "uk" {
		req.country = "gb"
	}
	if req.name == "" {
		return req, &inputError{field: "city_name", value: values[0], valid: []string{"a city name, optionally followed by ',' and a country code"}}
	}

	day, err := manager.ParseDay(values[1])
	if err != nil {
		return req, &inputError{field: "day", value: values[1], valid: manager.DayOptions()}
	}
	req.day = day

	provider, err := manager.ParseProvider(values[2])
	if err != nil {
		return req, &inputError{field: "provider", value: values[2], valid: manager.ProviderOptions()}
	}
	req.provider = provider

	return req, nil
}
