package manager

import (
	"math"
	"strings"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// NewReading normalizes raw provider values: weather text is lower-cased and
// trimmed of a trailing period, temperatures are rounded to one decimal.
func NewReading(weather string, avg *float64, lo, hi float64) Reading {
	r := Reading{
		Weather: strings.TrimRight(strings.ToLower(strings.TrimSpace(weather)), "."),
		TempMin: Round(lo, 1),
		TempMax: Round(hi, 1),
	}
	if avg != nil {
		t := Round(*avg, 1)
		r.Temperature = &t
	}
	return r
}
