package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrCityEmpty is returned when the city name is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city name is required")

// ErrCityTooLong is returned when the city name exceeds the maximum length.
var ErrCityTooLong = errors.New("city name too long")

// ErrInvalidDate is returned when a date is not a valid YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidDateRange is returned when the start date is after the end date.
var ErrInvalidDateRange = errors.New("start date after end date")

// ErrInvalidCoordinate is returned for NaN or infinite coordinate values.
// Finite out-of-range values are NOT rejected here; they pass through to the
// API, which may reject them.
var ErrInvalidCoordinate = errors.New("coordinate is not a finite number")

const maxCityLen = 256

const dateLayout = "2006-01-02"

// ValidateCity trims the input and enforces non-emptiness and a length cap
// (in runes). Returns the trimmed string.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	n := len([]rune(s))
	if n == 0 {
		return "", ErrCityEmpty
	}
	if n > maxCityLen {
		return "", ErrCityTooLong
	}
	return s, nil
}

// ValidateDate checks that s is an ISO-8601 calendar date (YYYY-MM-DD).
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return nil
}

// ValidateDateRange checks both dates and that start is not after end.
func ValidateDateRange(start, end string) error {
	if err := ValidateDate(start); err != nil {
		return err
	}
	if err := ValidateDate(end); err != nil {
		return err
	}
	s, _ := time.Parse(dateLayout, start)
	e, _ := time.Parse(dateLayout, end)
	if s.After(e) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	return nil
}

// ValidateCoordinates rejects values that cannot be serialized into a query
// string. Range checks are deliberately absent.
func ValidateCoordinates(lat, lon float64) error {
	for _, v := range []float64{lat, lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidCoordinate
		}
	}
	return nil
}
