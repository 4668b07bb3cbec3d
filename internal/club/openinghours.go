package club

import (
	"slices"
	"strconv"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// DefaultSlotTimes is the club's standard 90 minute grid.
var DefaultSlotTimes = []string{"09:00", "10:30", "12:00", "13:30", "15:00", "16:30", "18:00", "19:30", "21:00"}

// OpeningHours maps a day of week (0 = Sunday) to its bookable start times.
type OpeningHours map[time.Weekday][]string

// Slots returns the start times for day in ascending order.
func (h OpeningHours) Slots(day time.Weekday) []string {
	out := slices.Clone(h[day])
	slices.Sort(out)
	return out
}

// Contains treats the day's times as an unordered set.
func (h OpeningHours) Contains(day time.Weekday, slot string) bool {
	return slices.Contains(h[day], slot)
}

// Wire converts the hours to the string-keyed JSON shape, every day present.
func (h OpeningHours) Wire() map[string][]string {
	out := make(map[string][]string, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		slots := h.Slots(day)
		if slots == nil {
			slots = []string{}
		}
		out[strconv.Itoa(int(day))] = slots
	}
	return out
}

// ParseOpeningHours validates the wire shape: keys "0".."6", HH:MM times and
// no duplicate time within a day.
func ParseOpeningHours(raw map[string][]string) (OpeningHours, error) {
	if raw == nil {
		return nil, apperr.Validation("opening hours are required")
	}
	hours := make(OpeningHours, len(raw))
	for key, times := range raw {
		day, err := strconv.Atoi(key)
		if err != nil || day < 0 || day > 6 || strconv.Itoa(day) != key {
			return nil, apperr.Validation("invalid day of week %q, expected 0-6", key)
		}
		seen := make(map[string]bool, len(times))
		for _, t := range times {
			if err := ValidateTime(t); err != nil {
				return nil, err
			}
			if seen[t] {
				return nil, apperr.Validation("duplicate time %s on day %d", t, day)
			}
			seen[t] = true
		}
		hours[time.Weekday(day)] = slices.Clone(times)
	}
	return hours, nil
}

// ParseDate parses a YYYY-MM-DD club-local date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ValidateTime checks a HH:MM slot start time.
func ValidateTime(s string) error {
	if len(s) != len(timeLayout) {
		return apperr.Validation("invalid time %q, expected HH:MM", s)
	}
	if _, err := time.Parse(timeLayout, s); err != nil {
		return apperr.Validation("invalid time %q, expected HH:MM", s)
	}
	return nil
}
