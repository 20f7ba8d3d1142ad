package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BreakerSettings configures the circuit breaker in front of Nominatim.
type BreakerSettings struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// NominatimOptions configures a Nominatim client.
type NominatimOptions struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond float64
	Breaker       BreakerSettings
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// DefaultNominatimOptions follows the public endpoint's usage policy of one request per second.
func DefaultNominatimOptions() NominatimOptions {
	return NominatimOptions{
		BaseURL:       "https://nominatim.openstreetmap.org",
		UserAgent:     "statesearch",
		Timeout:       10 * time.Second,
		RatePerSecond: 1,
		Breaker: BreakerSettings{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			ReadyToTripRatio: 0.6,
		},
	}
}

// Nominatim resolves names with the /search endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatim creates a client. Zero fields fall back to DefaultNominatimOptions.
func NewNominatim(options NominatimOptions) *Nominatim {
	defaults := DefaultNominatimOptions()
	if options.BaseURL == "" {
		options.BaseURL = defaults.BaseURL
	}
	if options.UserAgent == "" {
		options.UserAgent = defaults.UserAgent
	}
	if options.Timeout <= 0 {
		options.Timeout = defaults.Timeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: options.Timeout}
	}

	n := &Nominatim{
		baseURL:   options.BaseURL,
		userAgent: options.UserAgent,
		client:    client,
		logger:    options.Logger,
	}
	if options.RatePerSecond > 0 {
		n.limiter = rate.NewLimiter(rate.Limit(options.RatePerSecond), 1)
	}
	if options.Breaker.Enabled {
		n.breaker = newBreaker("nominatim", options.Breaker, options.Logger)
	}
	return n
}

func newBreaker(name string, settings BreakerSettings, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= settings.ReadyToTripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("geocoder circuit breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// Resolve looks up name and returns the best match.
func (n *Nominatim) Resolve(ctx context.Context, name string) (Location, error) {
	if normalize(name) == "" {
		return Location{}, ErrEmptyName
	}
	if n.breaker == nil {
		return n.lookup(ctx, name)
	}
	out, err := n.breaker.Execute(func() (interface{}, error) {
		return n.lookup(ctx, name)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return Location{}, err
	}
	return out.(Location), nil
}

func (n *Nominatim) lookup(ctx context.Context, name string) (Location, error) {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return Location{}, err
		}
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("format", "json")
	query.Set("limit", "1")
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: build request: %w", err)
	}
	request.Header.Set("User-Agent", n.userAgent)
	request.Header.Set("Accept", "application/json")

	response, err := n.client.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return Location{}, ctx.Err()
		}
		return Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, response.Body)
		return Location{}, fmt.Errorf("%w: status %d", ErrUnavailable, response.StatusCode)
	case response.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, response.Body)
		return Location{}, fmt.Errorf("geocode: unexpected status %d for %q", response.StatusCode, name)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(response.Body).Decode(&places); err != nil {
		return Location{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(places) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: bad longitude %q: %w", places[0].Lon, err)
	}
	n.logger.Debug("geocoded", slog.String("name", name), slog.Float64("lat", lat), slog.Float64("lon", lon))
	return Location{Lat: lat, Lon: lon, DisplayName: places[0].DisplayName}, nil
}
