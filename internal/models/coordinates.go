package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key rounds both axes to two decimals (about 1 km), so nearby requests share cache entries.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.2f,%.2f", c.Latitude, c.Longitude)
}

func (c Coordinates) String() string {
	return c.Key()
}

// ParseCoordinates parses "lat,lon". Range checks are left to validation.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("coordinates %q: want \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("coordinates %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("coordinates %q: longitude: %w", s, err)
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}
