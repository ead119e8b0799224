package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
)

// MapQuestName is the identifier the MapQuest provider reports.
const MapQuestName = "map_quest"

// MapQuest endpoint templates. The open tier and the licensed tier share the
// same API and differ by host only.
const (
	MapQuestOpenGeocodeURL     = "https://open.mapquestapi.com/geocoding/v1/address?location=%s&outFormat=json&maxResults=%d&key=%s&thumbMaps=false"
	MapQuestOpenReverseURL     = "https://open.mapquestapi.com/geocoding/v1/reverse?key=%s&lat=%s&lng=%s"
	MapQuestLicensedGeocodeURL = "https://www.mapquestapi.com/geocoding/v1/address?location=%s&outFormat=json&maxResults=%d&key=%s&thumbMaps=false"
	MapQuestLicensedReverseURL = "https://www.mapquestapi.com/geocoding/v1/reverse?key=%s&lat=%s&lng=%s"
)

// MapQuestConfig holds the settings of a MapQuest provider.
type MapQuestConfig struct {
	APIKey   string          // API key; empty means no key was configured
	Licensed bool            // Use the licensed endpoint instead of the open one
	Defaults models.Location // Base values every result starts from
}

// MapQuestProvider implements geocoding using the MapQuest Geocoding API.
// It holds no mutable state and is safe for concurrent use.
type MapQuestProvider struct {
	client   HTTPClient      // HTTP client for making requests
	apiKey   string          // API key with geocoding access
	licensed bool            // Licensed or open endpoint
	defaults models.Location // Base layer merged under every result
	log      *slog.Logger    // Logger for logging operations
}

// mapQuestResponse is the part of the MapQuest reply the provider reads.
type mapQuestResponse struct {
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     jsonText `json:"street"`
	PostalCode jsonText `json:"postalCode"`
	AdminArea1 jsonText `json:"adminArea1"`
	AdminArea3 jsonText `json:"adminArea3"`
	AdminArea4 jsonText `json:"adminArea4"`
	AdminArea5 jsonText `json:"adminArea5"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// jsonText accepts a JSON string, number or null. Numbers keep their literal
// text (postal codes are sometimes sent unquoted).
// Booleans, objects and arrays are treated as absent.
type jsonText string

func (t *jsonText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = jsonText(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*t = jsonText(data)
	default:
		*t = ""
	}

	return nil
}

// NewMapQuestProvider creates a new MapQuest geocoding provider.
func NewMapQuestProvider(cfg MapQuestConfig, log *slog.Logger) *MapQuestProvider {
	const timeout = 10

	return NewMapQuestProviderWithClient(&http.Client{Timeout: timeout * time.Second}, cfg, log)
}

// NewMapQuestProviderWithClient allows injecting custom HTTP client.
func NewMapQuestProviderWithClient(client HTTPClient, cfg MapQuestConfig, log *slog.Logger) *MapQuestProvider {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &MapQuestProvider{
		client:   client,
		apiKey:   cfg.APIKey,
		licensed: cfg.Licensed,
		defaults: cfg.Defaults.Clone(),
		log:      log,
	}
}

// Name returns the provider identifier.
func (mp *MapQuestProvider) Name() string {
	return MapQuestName
}

// Geocode resolves a free-text address into locations.
// IP addresses are rejected, MapQuest does not geolocate them.
func (mp *MapQuestProvider) Geocode(ctx context.Context, query GeocodeQuery) ([]models.Location, error) {
	if mp.apiKey == "" {
		return nil, invalidCredentials("no API key provided")
	}

	if net.ParseIP(query.Text) != nil {
		return nil, unsupportedOperation("the MapQuest provider does not support IP addresses")
	}

	tmpl := MapQuestOpenGeocodeURL
	if mp.licensed {
		tmpl = MapQuestLicensedGeocodeURL
	}
	reqURL := fmt.Sprintf(tmpl, url.QueryEscape(query.Text), query.Limit, mp.apiKey)

	mp.log.DebugContext(ctx, "Geocoding using MapQuest", "address", query.Text, "limit", query.Limit)

	return mp.executeQuery(ctx, reqURL)
}

// ReverseGeocode resolves a point into addresses.
func (mp *MapQuestProvider) ReverseGeocode(ctx context.Context, query ReverseQuery) ([]models.Location, error) {
	if mp.apiKey == "" {
		return nil, invalidCredentials("no API key provided")
	}

	tmpl := MapQuestOpenReverseURL
	if mp.licensed {
		tmpl = MapQuestLicensedReverseURL
	}
	reqURL := fmt.Sprintf(tmpl, mp.apiKey, formatCoordinate(query.Latitude), formatCoordinate(query.Longitude))

	mp.log.DebugContext(ctx, "Reverse geocoding using MapQuest", "lat", query.Latitude, "lng", query.Longitude)

	return mp.executeQuery(ctx, reqURL)
}

func (mp *MapQuestProvider) executeQuery(ctx context.Context, reqURL string) ([]models.Location, error) {
	mp.log.DebugContext(ctx, "MapQuest request URL", "url", redactURL(reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := mp.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(body) == 0 {
		return nil, invalidServerResponse(reqURL)
	}

	mp.log.DebugContext(ctx, "MapQuest raw response", "status", resp.StatusCode, "body", string(body))

	// A body that is not JSON is reported like a reply without results;
	// the decode error stays reachable through errors.Unwrap.
	var result mapQuestResponse
	if err = json.Unmarshal(body, &result); err != nil {
		mp.log.WarnContext(ctx, "Failed to parse MapQuest response", "error", err, "url", redactURL(reqURL))
		return nil, zeroResults(reqURL, err)
	}

	if len(result.Results) == 0 || len(result.Results[0].Locations) == 0 {
		return nil, zeroResults(reqURL, nil)
	}

	locations := make([]models.Location, 0, len(result.Results[0].Locations))
	for _, raw := range result.Results[0].Locations {
		if raw.Street == "" && raw.PostalCode == "" &&
			raw.AdminArea5 == "" && raw.AdminArea4 == "" && raw.AdminArea3 == "" {
			continue
		}
		locations = append(locations, mp.normalize(raw))
	}

	if len(locations) == 0 {
		return nil, zeroResults(reqURL, nil)
	}

	mp.log.DebugContext(ctx, "MapQuest found results", "count", len(locations))

	return locations, nil
}

// normalize overlays the parsed fields on a copy of the provider defaults.
func (mp *MapQuestProvider) normalize(raw mapQuestLocation) models.Location {
	loc := mp.defaults.Clone()

	loc.Latitude = raw.LatLng.Lat
	loc.Longitude = raw.LatLng.Lng
	loc.StreetName = string(raw.Street)
	loc.Locality = string(raw.AdminArea5)
	loc.PostalCode = string(raw.PostalCode)
	// MapQuest has no separate ISO code field, adminArea1 fills both.
	loc.Country = string(raw.AdminArea1)
	loc.CountryCode = string(raw.AdminArea1)
	loc.ProvidedBy = MapQuestName

	loc.AdminLevels = nil
	if raw.AdminArea3 != "" {
		loc.AdminLevels = append(loc.AdminLevels, models.AdminLevel{Name: string(raw.AdminArea3), Level: 1})
	}
	if raw.AdminArea4 != "" {
		loc.AdminLevels = append(loc.AdminLevels, models.AdminLevel{Name: string(raw.AdminArea4), Level: 2})
	}

	return loc
}

// formatCoordinate renders v with as many digits as needed to round-trip.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
