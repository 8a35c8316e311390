// Package validation checks request parameters before they reach the service layer.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/kjstillabower/krishivani/internal/models"
)

var (
	// ErrLatitudeRange is returned when latitude is outside [-90, 90].
	ErrLatitudeRange = errors.New("latitude must be between -90 and 90")
	// ErrLongitudeRange is returned when longitude is outside [-180, 180].
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")
	// ErrCoordinateFormat is returned when a coordinate is not a finite decimal number.
	ErrCoordinateFormat = errors.New("coordinate must be a decimal number")
	// ErrCoordinatePartial is returned when only one of lat/lon is supplied.
	ErrCoordinatePartial = errors.New("lat and lon must be supplied together")
	// ErrLanguageCode is returned for malformed language codes.
	ErrLanguageCode = errors.New("language code must be letters with an optional region")
	// ErrDayIndex is returned when a day index is not an integer in range.
	ErrDayIndex = errors.New("day index out of range")
)

// ValidateCoordinates checks that c is finite and within geographic bounds.
func ValidateCoordinates(c models.Coordinates) error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return ErrCoordinateFormat
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return ErrLatitudeRange
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// ParseCoordinates parses lat and lon query values. ok is false when both are empty,
// meaning the caller should use the default location.
func ParseCoordinates(lat, lon string) (c models.Coordinates, ok bool, err error) {
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	if lat == "" && lon == "" {
		return models.Coordinates{}, false, nil
	}
	if lat == "" || lon == "" {
		return models.Coordinates{}, false, ErrCoordinatePartial
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("%w: lat %q", ErrCoordinateFormat, lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("%w: lon %q", ErrCoordinateFormat, lon)
	}
	c = models.Coordinates{Latitude: la, Longitude: lo}
	if err := ValidateCoordinates(c); err != nil {
		return models.Coordinates{}, false, err
	}
	return c, true, nil
}

// ValidateLanguageCode accepts an empty code (use the default) or a 2-3 letter code with
// an optional "-" or "_" region suffix, e.g. "te", "te-IN", "kn_IN".
func ValidateLanguageCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	primary, region, hasRegion := strings.Cut(strings.ReplaceAll(code, "_", "-"), "-")
	if len(primary) < 2 || len(primary) > 3 || !allLetters(primary) {
		return ErrLanguageCode
	}
	if hasRegion && (len(region) < 2 || len(region) > 3 || !allLettersOrDigits(region)) {
		return ErrLanguageCode
	}
	return nil
}

// ParseDayIndex parses a day index in [0, days).
func ParseDayIndex(s string, days int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrDayIndex, s)
	}
	if n < 0 || n >= days {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrDayIndex, n, days)
	}
	return n, nil
}

func allLetters(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func allLettersOrDigits(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
