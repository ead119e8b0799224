package geocoding

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleName is the identifier the Google provider reports.
const GoogleName = "google_maps"

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the part of *maps.Client the provider calls.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider around an already configured client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Name returns the provider identifier.
func (gp *GoogleProvider) Name() string {
	return GoogleName
}

// Geocode resolves an address with the Google Maps Geocoding API and returns
// at most query.Limit locations.
func (gp *GoogleProvider) Geocode(ctx context.Context, query GeocodeQuery) ([]models.Location, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", query.Text)

	req := maps.GeocodingRequest{Address: query.Text}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	return gp.toLocations(geocodeResponse, query.Limit)
}

// ReverseGeocode resolves a point with the Google Maps Geocoding API.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, query ReverseQuery) ([]models.Location, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", query.Latitude, "lng", query.Longitude)

	req := maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: query.Latitude, Lng: query.Longitude}}
	geocodeResponse, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode coordinates: %w", err)
	}

	return gp.toLocations(geocodeResponse, 0)
}

func (gp *GoogleProvider) toLocations(results []maps.GeocodingResult, limit int) ([]models.Location, error) {
	if len(results) == 0 {
		return nil, &Error{Kind: KindZeroResults, Message: "get empty response from Google Maps API"}
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	locations := make([]models.Location, 0, len(results))
	for _, res := range results {
		locations = append(locations, googleLocation(res))
	}

	return locations, nil
}

func googleLocation(res maps.GeocodingResult) models.Location {
	geometry := res.Geometry
	loc := models.Location{
		Latitude:   geometry.Location.Lat,
		Longitude:  geometry.Location.Lng,
		ProvidedBy: GoogleName,
	}

	viewport := geometry.Viewport
	if viewport != (maps.LatLngBounds{}) {
		loc.Bounds = &models.Bounds{
			South: viewport.SouthWest.Lat,
			West:  viewport.SouthWest.Lng,
			North: viewport.NorthEast.Lat,
			East:  viewport.NorthEast.Lng,
		}
	}

	for _, comp := range res.AddressComponents {
		for _, typ := range comp.Types {
			switch {
			case typ == "street_number":
				loc.StreetNumber = comp.LongName
			case typ == "route":
				loc.StreetName = comp.LongName
			case typ == "locality" || typ == "postal_town":
				if loc.Locality == "" {
					loc.Locality = comp.LongName
				}
			case typ == "sublocality":
				loc.SubLocality = comp.LongName
			case typ == "postal_code":
				loc.PostalCode = comp.LongName
			case typ == "country":
				loc.Country = comp.LongName
				loc.CountryCode = comp.ShortName
			case strings.HasPrefix(typ, "administrative_area_level_"):
				level, err := strconv.Atoi(strings.TrimPrefix(typ, "administrative_area_level_"))
				if err == nil {
					loc.AdminLevels = append(loc.AdminLevels, models.AdminLevel{Name: comp.LongName, Level: level})
				}
			}
		}
	}

	// Components come most specific first, levels are reported top-down.
	slices.SortStableFunc(loc.AdminLevels, func(a, b models.AdminLevel) int {
		return cmp.Compare(a.Level, b.Level)
	})

	return loc
}
