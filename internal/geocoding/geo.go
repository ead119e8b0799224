package geocoding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	geo "github.com/codingsince1985/geo-golang"
)

// GeoGolang exposes a Provider as a geo.Geocoder from geo-golang.
// Following geo-golang conventions, "no result" is a nil value with a nil error.
type GeoGolang struct {
	provider Provider
	timeout  time.Duration
}

var _ geo.Geocoder = (*GeoGolang)(nil)

// NewGeoGolang wraps provider. A positive timeout bounds each call.
func NewGeoGolang(provider Provider, timeout time.Duration) *GeoGolang {
	return &GeoGolang{provider: provider, timeout: timeout}
}

// Geocode returns the best location for address.
func (g *GeoGolang) Geocode(address string) (*geo.Location, error) {
	ctx, cancel := g.context()
	defer cancel()

	locations, err := g.provider.Geocode(ctx, GeocodeQuery{Text: address, Limit: 1})
	if err != nil {
		return nil, g.translate(err)
	}
	if len(locations) == 0 {
		return nil, nil
	}

	point := locations[0].Coordinates()

	return &geo.Location{Lat: point.Latitude, Lng: point.Longitude}, nil
}

// ReverseGeocode returns the best address for the point.
func (g *GeoGolang) ReverseGeocode(lat, lng float64) (*geo.Address, error) {
	ctx, cancel := g.context()
	defer cancel()

	locations, err := g.provider.ReverseGeocode(ctx, ReverseQuery{Latitude: lat, Longitude: lng})
	if err != nil {
		return nil, g.translate(err)
	}
	if len(locations) == 0 {
		return nil, nil
	}

	return toGeoAddress(locations[0]), nil
}

func (g *GeoGolang) context() (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(context.Background(), g.timeout)
	}

	return context.WithCancel(context.Background())
}

func (g *GeoGolang) translate(err error) error {
	switch {
	case errors.Is(err, ErrZeroResults):
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return geo.ErrTimeout
	default:
		return err
	}
}

func toGeoAddress(loc models.Location) *geo.Address {
	addr := &geo.Address{
		Street:      loc.StreetName,
		HouseNumber: loc.StreetNumber,
		Suburb:      loc.SubLocality,
		Postcode:    loc.PostalCode,
		City:        loc.Locality,
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		State:       loc.AdminLevel(1),
		County:      loc.AdminLevel(2),
	}
	addr.FormattedAddress = formatAddress(loc)

	return addr
}

func formatAddress(loc models.Location) string {
	var parts []string
	if street := strings.TrimSpace(loc.StreetNumber + " " + loc.StreetName); street != "" {
		parts = append(parts, street)
	}
	if city := strings.TrimSpace(loc.PostalCode + " " + loc.Locality); city != "" {
		parts = append(parts, city)
	}
	if loc.Country != "" {
		parts = append(parts, loc.Country)
	}

	return strings.Join(parts, ", ")
}
