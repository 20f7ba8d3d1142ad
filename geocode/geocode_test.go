package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func testOptions(baseURL string) NominatimOptions {
	return NominatimOptions{BaseURL: baseURL, UserAgent: "statesearch-test", Timeout: time.Second}
}

func TestNominatim_Resolve(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Envigado, Colombia", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "statesearch-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"6.1716","lon":"-75.5877","display_name":"Envigado"}]`))
	})

	location, err := NewNominatim(testOptions(server.URL)).Resolve(context.Background(), "Envigado, Colombia")
	require.NoError(t, err)
	assert.InDelta(t, 6.1716, location.Lat, 1e-9)
	assert.InDelta(t, -75.5877, location.Lon, 1e-9)
	assert.Equal(t, "Envigado", location.DisplayName)
}

func TestNominatim_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no match", http.StatusOK, `[]`, ErrNotFound},
		{"server error", http.StatusBadGateway, ``, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, ``, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := NewNominatim(testOptions(server.URL)).Resolve(context.Background(), "nowhere")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewNominatim(testOptions("http://127.0.0.1:1")).Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestNominatim_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	options := testOptions(server.URL)
	options.Breaker = BreakerSettings{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ReadyToTripRatio: 0.5}
	client := NewNominatim(options)

	for i := 0; i < 5; i++ {
		_, err := client.Resolve(context.Background(), "x")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetrier_RetriesThenSucceeds(t *testing.T) {
	var calls int
	flaky := Func(func(ctx context.Context, name string) (Location, error) {
		calls++
		if calls < 3 {
			return Location{}, ErrUnavailable
		}
		return Location{Lat: 1, Lon: 2}, nil
	})
	location, err := WithRetry(flaky, 5, 0, nil).Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, Location{Lat: 1, Lon: 2}, location)
	assert.Equal(t, 3, calls)
}

func TestRetrier_ExhaustedIsNotFound(t *testing.T) {
	var calls int
	down := Func(func(ctx context.Context, name string) (Location, error) {
		calls++
		return Location{}, errors.New("timeout")
	})
	_, err := WithRetry(down, 4, time.Millisecond, nil).Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 4, calls)
}

func TestRetrier_NotFoundIsFinal(t *testing.T) {
	var calls int
	missing := Func(func(ctx context.Context, name string) (Location, error) {
		calls++
		return Location{}, ErrNotFound
	})
	_, err := WithRetry(missing, 10, 0, nil).Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetrier_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	down := Func(func(ctx context.Context, name string) (Location, error) {
		cancel()
		return Location{}, ErrUnavailable
	})
	_, err := WithRetry(down, 10, time.Hour, nil).Resolve(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache(t *testing.T) {
	var calls int
	origin := Func(func(ctx context.Context, name string) (Location, error) {
		calls++
		if name == "missing" {
			return Location{}, ErrNotFound
		}
		return Location{Lat: 6.2, Lon: -75.6, DisplayName: name}, nil
	})
	path := filepath.Join(t.TempDir(), "geocode.db")
	cache, err := OpenCache(path, origin)
	require.NoError(t, err)

	first, err := cache.Resolve(context.Background(), "Medellin")
	require.NoError(t, err)
	second, err := cache.Resolve(context.Background(), "  medellin ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = cache.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, found, err := cache.Lookup("missing")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(path, origin)
	require.NoError(t, err)
	defer reopened.Close()
	cached, found, err := reopened.Lookup("MEDELLIN")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first, cached)
}

func TestStaticAndChain(t *testing.T) {
	static := Static{"Parque Envigado": {Lat: 6.17, Lon: -75.59}}
	location, err := static.Resolve(context.Background(), "parque  envigado")
	require.NoError(t, err)
	assert.Equal(t, 6.17, location.Lat)

	_, err = static.Resolve(context.Background(), "elsewhere")
	assert.ErrorIs(t, err, ErrNotFound)

	fallback := Func(func(ctx context.Context, name string) (Location, error) {
		return Location{Lat: 9}, nil
	})
	chained, err := Chain{static, fallback}.Resolve(context.Background(), "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, 9.0, chained.Lat)

	broken := Func(func(ctx context.Context, name string) (Location, error) {
		return Location{}, ErrUnavailable
	})
	_, err = Chain{broken, fallback}.Resolve(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Chain{}.Resolve(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
