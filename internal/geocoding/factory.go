package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeMapQuest represents the MapQuest geocoding provider.
	ProviderTypeMapQuest ProviderType = "mapquest"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType    // Type of provider to create
	APIKey    string          // API key
	Licensed  bool            // Use the licensed MapQuest endpoint
	Defaults  models.Location // Base values for MapQuest results
	Timeout   time.Duration   // HTTP timeout (MapQuest), zero keeps the provider default
	RateLimit int             // Requests per second (used by Google provider)
	Logger    *slog.Logger    // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "mapquest": MapQuest Geocoding API, open or licensed endpoint
// - "google": Google Maps Geocoding API (requires API key)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeMapQuest:
		return newMapQuestProvider(config), nil
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newMapQuestProvider creates a MapQuest provider. A missing API key is not
// an error here, every call reports it instead.
func newMapQuestProvider(config ProviderConfig) Provider {
	cfg := MapQuestConfig{
		APIKey:   config.APIKey,
		Licensed: config.Licensed,
		Defaults: config.Defaults,
	}

	if config.APIKey == "" && config.Logger != nil {
		config.Logger.Warn("MapQuest API key not set, every request will fail")
	}

	if config.Timeout > 0 {
		return NewMapQuestProviderWithClient(&http.Client{Timeout: config.Timeout}, cfg, config.Logger)
	}

	return NewMapQuestProvider(cfg, config.Logger)
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	// Create Google Maps client with API key and rate limiting
	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	// Apply rate limiting if specified
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	if config.Timeout > 0 {
		clientOpts = append(clientOpts, maps.WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return NewGoogleProvider(client, logger), nil
}
