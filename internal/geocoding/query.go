package geocoding

import (
	"errors"
	"fmt"
)

// DefaultLimit is the number of results requested when a query sets none.
const DefaultLimit = 5

// ErrInvalidQuery is returned by the query constructors on malformed input.
var ErrInvalidQuery = errors.New("invalid geocoding query")

// GeocodeQuery is a forward geocoding request.
type GeocodeQuery struct {
	Text  string // Free-text address
	Limit int    // Maximum number of results, at least 1
}

// NewGeocodeQuery creates a query for text with DefaultLimit.
func NewGeocodeQuery(text string) (GeocodeQuery, error) {
	if text == "" {
		return GeocodeQuery{}, fmt.Errorf("%w: empty address", ErrInvalidQuery)
	}

	return GeocodeQuery{Text: text, Limit: DefaultLimit}, nil
}

// WithLimit returns a copy of the query with the given result limit.
func (q GeocodeQuery) WithLimit(limit int) (GeocodeQuery, error) {
	if limit < 1 {
		return q, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidQuery, limit)
	}
	q.Limit = limit

	return q, nil
}

// ReverseQuery is a reverse geocoding request.
type ReverseQuery struct {
	Latitude  float64
	Longitude float64
}

// NewReverseQuery creates a query for the given point.
func NewReverseQuery(lat, lng float64) (ReverseQuery, error) {
	const maxLat, maxLng = 90, 180

	if lat < -maxLat || lat > maxLat {
		return ReverseQuery{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidQuery, lat)
	}
	if lng < -maxLng || lng > maxLng {
		return ReverseQuery{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidQuery, lng)
	}

	return ReverseQuery{Latitude: lat, Longitude: lng}, nil
}
