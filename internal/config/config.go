package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"4000" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`

	// Outbound timeout applied to every upstream call (0 = no client timeout).
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s" validate:"gte=0"`

	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	ForecastURL  string `envconfig:"OPENMETEO_FORECAST_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	MarineURL    string `envconfig:"OPENMETEO_MARINE_URL" default:"https://marine-api.open-meteo.com/v1/marine" validate:"required,url"`
	ForecastDays int    `envconfig:"OPENMETEO_FORECAST_DAYS" default:"8" validate:"min=7,max=16"`
	MaxRetries   int    `envconfig:"OPENMETEO_MAX_RETRIES" default:"0" validate:"min=0,max=5"`

	// Address ranking is disabled when empty.
	GoogleMapsAPIKey string `envconfig:"GOOGLE_MAPS_API_KEY"`

	// Error reporting is disabled when empty.
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// ProbeInterval controls how often the upstream is checked (0 = disabled).
	ProbeInterval  time.Duration `envconfig:"PROBE_INTERVAL" default:"15m" validate:"gte=0"`
	ProbeLatitude  float64       `envconfig:"PROBE_LATITUDE" default:"52.52" validate:"min=-90,max=90"`
	ProbeLongitude float64       `envconfig:"PROBE_LONGITUDE" default:"13.41" validate:"min=-180,max=180"`

	// In-memory probe store retention.
	StoreMaxHistory int           `envconfig:"STORE_MAX_HISTORY" default:"96" validate:"gte=0"` // max results per upstream (0 = unlimited)
	StoreMaxAge     time.Duration `envconfig:"STORE_MAX_AGE" default:"24h" validate:"gte=0"`    // max age of results (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.WithField("prefix", "config").Infof("no .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
