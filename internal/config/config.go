package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the geocoding service.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - Port: The port for the geocoder monitoring server.
// - Provider: Which geocoding provider to use and how to reach it.
// - Workers: The number of concurrent workers for processing requests.
// - Interval: The duration between processing intervals.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env        string         `yaml:"env"`               // Env is the current environment: local, dev, prod.
	Port       int            `yaml:"geocoder.port"`     // Port is the geocoder monitoring server port.
	Provider   ProviderConfig `yaml:"provider"`          // Provider holds the geocoding provider settings.
	Workers    int            `yaml:"geocoder.workers"`  // The number of concurrent workers for processing requests.
	Interval   time.Duration  `yaml:"geocoder.interval"` // The duration between processing intervals.
	Database   PostgresConfig `yaml:"postgres"`          // Database holds the postgres database configuration
	AddrPrefix string         `yaml:"addr_prefix"`       // Address prefix for more accurate geocoding
}

// ProviderConfig holds the geocoding provider settings.
type ProviderConfig struct {
	Type            string        `yaml:"type"`             // Type is the provider to use: mapquest, google.
	APIKey          string        `yaml:"api_key"`          // The API key for accessing the provider.
	Licensed        bool          `yaml:"licensed"`         // Licensed selects the licensed MapQuest endpoint.
	Timeout         time.Duration `yaml:"timeout"`          // Timeout bounds a single provider request.
	ResultLimit     int           `yaml:"result_limit"`     // ResultLimit is the number of results requested per address.
	DefaultTimezone string        `yaml:"default_timezone"` // Timezone every result starts from.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad reads the configuration from the environment and returns a Config struct.
// Variables from a .env file (or the file named by ATLAS_ENV_FILE) are loaded first
// and never override variables already set. It panics on malformed values.
func MustLoad() *Config {
	if file, ok := os.LookupEnv("ATLAS_ENV_FILE"); ok {
		_ = godotenv.Load(file)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ATLAS_ENV", "production")
	v.SetDefault("ATLAS_INTERVAL", "10m")
	v.SetDefault("ATLAS_HEALTH_PORT", "8080")
	v.SetDefault("ATLAS_WORKERS", "10")
	v.SetDefault("ATLAS_PROVIDER_TYPE", "mapquest")
	v.SetDefault("ATLAS_PROVIDER_TIMEOUT", "10s")
	v.SetDefault("ATLAS_MAPQUEST_LICENSED", "false")
	v.SetDefault("ATLAS_RESULT_LIMIT", "1")
	v.SetDefault("DB_PORT", "5432")

	interval, err := cast.ToDurationE(v.GetString("ATLAS_INTERVAL"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := cast.ToIntE(v.GetString("ATLAS_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := cast.ToIntE(v.GetString("ATLAS_WORKERS"))
	if err != nil || workers < 1 {
		panic("failed to parse workers from configuration, must be a positive integer")
	}

	timeout, err := cast.ToDurationE(v.GetString("ATLAS_PROVIDER_TIMEOUT"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	licensed, err := cast.ToBoolE(v.GetString("ATLAS_MAPQUEST_LICENSED"))
	if err != nil {
		panic("failed to parse MapQuest licensing flag from configuration, must be a boolean")
	}

	limit, err := cast.ToIntE(v.GetString("ATLAS_RESULT_LIMIT"))
	if err != nil || limit < 1 {
		panic("failed to parse result limit from configuration, must be a positive integer")
	}

	return &Config{
		Env:        v.GetString("ATLAS_ENV"),
		AddrPrefix: v.GetString("ATLAS_ADDRESS_PREFIX"),
		Port:       healthPort,
		Provider: ProviderConfig{
			Type:            v.GetString("ATLAS_PROVIDER_TYPE"),
			APIKey:          v.GetString("ATLAS_PROVIDER_KEY"),
			Licensed:        licensed,
			Timeout:         timeout,
			ResultLimit:     limit,
			DefaultTimezone: v.GetString("ATLAS_DEFAULT_TIMEZONE"),
		},
		Workers:  workers,
		Interval: interval,
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}

// Geocoding converts the provider settings into a geocoding.ProviderConfig.
// The default timezone becomes the base layer of every MapQuest result.
func (p ProviderConfig) Geocoding(log *slog.Logger) geocoding.ProviderConfig {
	return geocoding.ProviderConfig{
		Type:     geocoding.ProviderType(p.Type),
		APIKey:   p.APIKey,
		Licensed: p.Licensed,
		Timeout:  p.Timeout,
		Defaults: models.Location{Timezone: p.DefaultTimezone},
		Logger:   log,
	}
}
