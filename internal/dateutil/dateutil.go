// Package dateutil converts between the HTML form input formats and the
// SkyLab API wire formats. All conversions are pure reformatting of naive
// local timestamps; no timezone math is applied.
package dateutil

import (
	"fmt"
	"time"
)

const (
	// WireDateTime is the API format for event and announcement dates.
	WireDateTime = "02-01-2006 15:04"
	// WireDate is the API format for season boundaries.
	WireDate = "02-01-2006"

	// InputDateTime matches <input type="datetime-local">.
	InputDateTime = "2006-01-02T15:04"
	// InputDate matches <input type="date">.
	InputDate = "2006-01-02"
)

// WireFromInput converts a datetime-local value to the API wire format.
func WireFromInput(value string) (string, error) {
	t, err := time.Parse(InputDateTime, value)
	if err != nil {
		return "", fmt.Errorf("invalid datetime %q: %w", value, err)
	}
	return t.Format(WireDateTime), nil
}

// InputFromWire converts an API datetime to the datetime-local format.
func InputFromWire(value string) (string, error) {
	t, err := time.Parse(WireDateTime, value)
	if err != nil {
		return "", fmt.Errorf("invalid wire datetime %q: %w", value, err)
	}
	return t.Format(InputDateTime), nil
}

// WireDateFromInput converts a date input value to the API date format.
func WireDateFromInput(value string) (string, error) {
	t, err := time.Parse(InputDate, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t.Format(WireDate), nil
}

// InputFromWireDate converts an API date to the date input format.
func InputFromWireDate(value string) (string, error) {
	t, err := time.Parse(WireDate, value)
	if err != nil {
		return "", fmt.Errorf("invalid wire date %q: %w", value, err)
	}
	return t.Format(InputDate), nil
}

// ValidateSeasonBounds checks that both boundaries parse as wire dates and
// that end is strictly after start.
func ValidateSeasonBounds(start, end string) error {
	startAt, err := time.Parse(WireDate, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endAt, err := time.Parse(WireDate, end)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if !endAt.After(startAt) {
		return fmt.Errorf("end date %s must be after start date %s", end, start)
	}
	return nil
}
