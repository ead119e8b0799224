package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
)

// Provider is an interface that defines forward and reverse geocoding.
// Geocode resolves free text into locations, ReverseGeocode resolves a point
// into addresses. Both return locations in the order the upstream API ranks them.
type Provider interface {
	Geocode(ctx context.Context, query GeocodeQuery) ([]models.Location, error)
	ReverseGeocode(ctx context.Context, query ReverseQuery) ([]models.Location, error)
	Name() string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
