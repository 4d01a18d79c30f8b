package manager

import (
	"fmt"
	"strings"
	"time"
)

type Day int

const (
	Yesterday Day = iota - 1
	Today
	Tomorrow
)

var dayNames = map[Day]string{
	Yesterday: "yesterday",
	Today:     "today",
	Tomorrow:  "tomorrow",
}

func (d Day) String() string {
	return dayNames[d]
}

func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range dayNames {
		if name == s {
			return d, nil
		}
	}
	return Today, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// DayOptions lists the accepted day names.
func DayOptions() []string {
	return []string{"today", "tomorrow", "yesterday"}
}

// Date returns the calendar day d refers to, relative to now.
func (d Day) Date(now time.Time) time.Time {
	return Truncate(now).AddDate(0, 0, int(d))
}

// Truncate drops the time of day, keeping t's location.
func Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
