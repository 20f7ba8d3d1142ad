package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/geocode"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statesearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "bfs", cfg.Search.Strategy)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, geocode.DefaultMaxRetries, cfg.Geocoder.MaxRetries)
	assert.Equal(t, time.Second, cfg.Geocoder.RetryDelay)
	assert.True(t, cfg.Geocoder.CircuitBreaker.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1_000_000, cfg.Server.MaxExpansions)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricsExporter)

	_, err = cfg.LoadNetwork()
	assert.ErrorIs(t, err, ErrNoNetwork)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
search:
  strategy: astar
  max_expansions: 500
  workers: 2
geocoder:
  retry_delay: 250ms
  places:
    Parque: {lat: 6.17, lon: -75.59}
  circuit_breaker:
    enabled: false
network:
  path: ../../roads/testdata/envigado.yaml
  weight: travel_time
  speeds:
    residential: 30
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 500, cfg.Search.MaxExpansions)
	assert.Equal(t, 250*time.Millisecond, cfg.Geocoder.RetryDelay)
	assert.False(t, cfg.NominatimOptions().Breaker.Enabled)
	assert.Len(t, cfg.SearchOptions(), 3)

	places := cfg.StaticPlaces()
	require.Len(t, places, 1)
	location, err := places.Resolve(t.Context(), "parque")
	require.NoError(t, err)
	assert.Equal(t, 6.17, location.Lat)

	network, err := cfg.LoadNetwork()
	require.NoError(t, err)
	edge, ok := network.Edge(1, 0)
	require.True(t, ok)
	assert.Equal(t, 30.0, edge.Speed)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STATESEARCH_SEARCH_STRATEGY", "ucs")
	t.Setenv("STATESEARCH_SERVER_ADDR", "127.0.0.1:9000")
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "ucs", cfg.Search.Strategy)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"strategy", "search:\n  strategy: random\n"},
		{"weight", "network:\n  weight: elevation\n"},
		{"log format", "log:\n  format: xml\n"},
		{"latitude", "geocoder:\n  places:\n    north: {lat: 99, lon: 0}\n"},
		{"ratio", "geocoder:\n  circuit_breaker:\n    ready_to_trip_ratio: 2\n"},
		{"negative budget", "search:\n  max_expansions: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSearchOptions(t *testing.T) {
	cfg := &Config{Search: SearchConfig{Strategy: "greedy"}}
	options := cfg.SearchOptions()
	require.Len(t, options, 1)
	var applied search.Options
	options[0](&applied)
	assert.Equal(t, search.Greedy, applied.Strategy)
}
