// Package config loads statesearch settings from a YAML file, STATESEARCH_*
// environment variables and defaults, in that order of precedence after
// explicit flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/internal/logging"
	"github.com/pdrpinto/statesearch/internal/telemetry"
	"github.com/pdrpinto/statesearch/roads"
)

// EnvPrefix namespaces environment overrides, e.g. STATESEARCH_SEARCH_STRATEGY.
const EnvPrefix = "STATESEARCH"

// Config holds all configuration for the application.
type Config struct {
	Log       logging.Config   `mapstructure:"log"`
	Search    SearchConfig     `mapstructure:"search"`
	Geocoder  GeocoderConfig   `mapstructure:"geocoder"`
	Network   NetworkConfig    `mapstructure:"network"`
	Server    ServerConfig     `mapstructure:"server"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// SearchConfig holds engine defaults.
type SearchConfig struct {
	Strategy      string `mapstructure:"strategy" validate:"required"`
	MaxExpansions int    `mapstructure:"max_expansions" validate:"gte=0"`
	Workers       int    `mapstructure:"workers" validate:"gte=0"`
}

// CircuitBreakerConfig holds configuration for circuit breaking.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ReadyToTripRatio float64       `mapstructure:"ready_to_trip_ratio" validate:"gte=0,lte=1"`
}

// Place is a fixed geocoding answer.
type Place struct {
	Lat float64 `mapstructure:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `mapstructure:"lon" validate:"gte=-180,lte=180"`
}

// GeocoderConfig holds the geocoding collaborator settings.
type GeocoderConfig struct {
	BaseURL        string               `mapstructure:"base_url" validate:"required,url"`
	UserAgent      string               `mapstructure:"user_agent" validate:"required"`
	Timeout        time.Duration        `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries     int                  `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelay     time.Duration        `mapstructure:"retry_delay" validate:"gte=0"`
	RatePerSecond  float64              `mapstructure:"rate_per_second" validate:"gte=0"`
	CachePath      string               `mapstructure:"cache_path"`
	Places         map[string]Place     `mapstructure:"places" validate:"dive"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// NetworkConfig points at the road network file.
type NetworkConfig struct {
	Path   string             `mapstructure:"path"`
	Weight string             `mapstructure:"weight" validate:"omitempty,oneof=length travel_time"`
	Speeds map[string]float64 `mapstructure:"speeds" validate:"dive,gt=0"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"` // gin mode
	// MaxExpansions caps every request that does not set a lower budget.
	MaxExpansions int `mapstructure:"max_expansions" validate:"gte=0"`
}

var validate = validator.New()

// New returns a viper instance with defaults and environment binding set.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (when not empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the names that only the domain
// packages can parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := search.ParseStrategy(c.Search.Strategy); err != nil {
		return fmt.Errorf("invalid config: search.strategy: %w", err)
	}
	if _, err := roads.ParseWeight(c.Network.Weight); err != nil {
		return fmt.Errorf("invalid config: network.weight: %w", err)
	}
	return nil
}

// SearchOptions turns the search section into engine options.
func (c *Config) SearchOptions() []search.Option {
	strategy, _ := search.ParseStrategy(c.Search.Strategy)
	options := []search.Option{search.WithStrategy(strategy)}
	if c.Search.MaxExpansions > 0 {
		options = append(options, search.WithMaxExpansions(c.Search.MaxExpansions))
	}
	if c.Search.Workers > 0 {
		options = append(options, search.WithWorkers(c.Search.Workers))
	}
	return options
}

// NominatimOptions maps the geocoder section onto the client options.
func (c *Config) NominatimOptions() geocode.NominatimOptions {
	g := c.Geocoder
	return geocode.NominatimOptions{
		BaseURL:       g.BaseURL,
		UserAgent:     g.UserAgent,
		Timeout:       g.Timeout,
		RatePerSecond: g.RatePerSecond,
		Breaker: geocode.BreakerSettings{
			Enabled:          g.CircuitBreaker.Enabled,
			MaxRequests:      g.CircuitBreaker.MaxRequests,
			Interval:         g.CircuitBreaker.Interval,
			Timeout:          g.CircuitBreaker.Timeout,
			ReadyToTripRatio: g.CircuitBreaker.ReadyToTripRatio,
		},
	}
}

// StaticPlaces returns the configured fixed places as a geocoder.
func (c *Config) StaticPlaces() geocode.Static {
	places := make(geocode.Static, len(c.Geocoder.Places))
	for name, place := range c.Geocoder.Places {
		places[name] = geocode.Location{Lat: place.Lat, Lon: place.Lon, DisplayName: name}
	}
	return places
}

// ErrNoNetwork is returned when a road network is needed but none is configured.
var ErrNoNetwork = errors.New("config: network.path is not set")

// LoadNetwork loads the configured road network.
func (c *Config) LoadNetwork() (*roads.Network, error) {
	if c.Network.Path == "" {
		return nil, ErrNoNetwork
	}
	return roads.LoadFile(c.Network.Path, roads.SpeedTable(c.Network.Speeds))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("search.strategy", "bfs")
	v.SetDefault("search.max_expansions", 0)
	v.SetDefault("search.workers", 0)

	nominatim := geocode.DefaultNominatimOptions()
	v.SetDefault("geocoder.base_url", nominatim.BaseURL)
	v.SetDefault("geocoder.user_agent", nominatim.UserAgent)
	v.SetDefault("geocoder.timeout", nominatim.Timeout)
	v.SetDefault("geocoder.max_retries", geocode.DefaultMaxRetries)
	v.SetDefault("geocoder.retry_delay", geocode.DefaultRetryDelay)
	v.SetDefault("geocoder.rate_per_second", nominatim.RatePerSecond)
	v.SetDefault("geocoder.cache_path", "")
	v.SetDefault("geocoder.circuit_breaker.enabled", nominatim.Breaker.Enabled)
	v.SetDefault("geocoder.circuit_breaker.max_requests", nominatim.Breaker.MaxRequests)
	v.SetDefault("geocoder.circuit_breaker.interval", nominatim.Breaker.Interval)
	v.SetDefault("geocoder.circuit_breaker.timeout", nominatim.Breaker.Timeout)
	v.SetDefault("geocoder.circuit_breaker.ready_to_trip_ratio", nominatim.Breaker.ReadyToTripRatio)

	v.SetDefault("network.path", "")
	v.SetDefault("network.weight", "length")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_expansions", 1_000_000)
	v.SetDefault("server.mode", "release")

	telemetryDefaults := telemetry.DefaultConfig()
	v.SetDefault("telemetry.service_name", telemetryDefaults.ServiceName)
	v.SetDefault("telemetry.service_version", telemetryDefaults.ServiceVersion)
	v.SetDefault("telemetry.metrics_exporter", telemetryDefaults.MetricsExporter)
}
