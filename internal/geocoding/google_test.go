package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type mockGoogleAPIClient struct {
	mock.Mock
}

func (m *mockGoogleAPIClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)
	res, _ := args.Get(0).([]maps.GeocodingResult)
	return res, args.Error(1)
}

func (m *mockGoogleAPIClient) ReverseGeocode(
	ctx context.Context,
	r *maps.GeocodingRequest,
) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)
	res, _ := args.Get(0).([]maps.GeocodingResult)
	return res, args.Error(1)
}

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := &mockGoogleAPIClient{}
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, geocoding.GeocodeQuery{Text: address, Limit: 1})

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some empty place"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		locations, err := provider.Geocode(ctx, geocoding.GeocodeQuery{Text: address, Limit: 1})

		require.Nil(t, locations)
		require.ErrorIs(t, err, geocoding.ErrZeroResults)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull geocoding", func(t *testing.T) {
		address := "1600 Amphitheatre Parkway, Mountain View, CA"
		req := &maps.GeocodingRequest{Address: address}
		mockReponse := []maps.GeocodingResult{
			{
				AddressComponents: []maps.AddressComponent{
					{LongName: "1600", Types: []string{"street_number"}},
					{LongName: "Amphitheatre Parkway", Types: []string{"route"}},
					{LongName: "Mountain View", Types: []string{"locality", "political"}},
					{LongName: "Santa Clara County", Types: []string{"administrative_area_level_2", "political"}},
					{LongName: "California", ShortName: "CA", Types: []string{"administrative_area_level_1", "political"}},
					{LongName: "United States", ShortName: "US", Types: []string{"country", "political"}},
					{LongName: "94043", Types: []string{"postal_code"}},
				},
				Geometry: maps.AddressGeometry{
					Location: maps.LatLng{Lat: 37.42, Lng: -122.08},
					Viewport: maps.LatLngBounds{
						NorthEast: maps.LatLng{Lat: 37.43, Lng: -122.07},
						SouthWest: maps.LatLng{Lat: 37.41, Lng: -122.09},
					},
				},
			},
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 1, Lng: 1}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		locations, err := provider.Geocode(ctx, geocoding.GeocodeQuery{Text: address, Limit: 1})

		require.NoError(t, err)
		require.Len(t, locations, 1)
		loc := locations[0]
		require.InEpsilon(t, 37.42, loc.Latitude, 0.01)
		require.InEpsilon(t, -122.08, loc.Longitude, 0.01)
		assert.Equal(t, "1600", loc.StreetNumber)
		assert.Equal(t, "Amphitheatre Parkway", loc.StreetName)
		assert.Equal(t, "Mountain View", loc.Locality)
		assert.Equal(t, "94043", loc.PostalCode)
		assert.Equal(t, "United States", loc.Country)
		assert.Equal(t, "US", loc.CountryCode)
		assert.Equal(t, []models.AdminLevel{
			{Name: "California", Level: 1},
			{Name: "Santa Clara County", Level: 2},
		}, loc.AdminLevels)
		assert.Equal(t, &models.Bounds{South: 37.41, West: -122.09, North: 37.43, East: -122.07}, loc.Bounds)
		assert.Equal(t, geocoding.GoogleName, loc.ProvidedBy)
		mockClient.AssertExpectations(t)
	})
}

func TestGoogleProvider_ReverseGeocode(t *testing.T) {
	mockClient := &mockGoogleAPIClient{}
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()
	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: 50.45, Lng: 30.52}}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.ReverseGeocode(ctx, geocoding.ReverseQuery{Latitude: 50.45, Longitude: 30.52})

		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull reverse geocoding", func(t *testing.T) {
		mockReponse := []maps.GeocodingResult{
			{
				AddressComponents: []maps.AddressComponent{
					{LongName: "Kyiv", Types: []string{"locality"}},
					{LongName: "Ukraine", ShortName: "UA", Types: []string{"country"}},
				},
				Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 50.45, Lng: 30.52}},
			},
		}
		mockClient.On("ReverseGeocode", ctx, req).Return(mockReponse, nil).Once()

		locations, err := provider.ReverseGeocode(ctx, geocoding.ReverseQuery{Latitude: 50.45, Longitude: 30.52})

		require.NoError(t, err)
		require.Len(t, locations, 1)
		assert.Equal(t, "Kyiv", locations[0].Locality)
		assert.Equal(t, "UA", locations[0].CountryCode)
		assert.Nil(t, locations[0].Bounds)
		mockClient.AssertExpectations(t)
	})

	assert.Equal(t, "google_maps", provider.Name())
}
