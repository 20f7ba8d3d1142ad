// Package geocode resolves place names into coordinates.
//
// Nominatim talks to an OpenStreetMap Nominatim endpoint behind a rate
// limiter and a circuit breaker. Retrier adds bounded, fixed-delay retries
// and Cache keeps successful lookups in a bbolt file. All of them satisfy
// Geocoder and can be stacked.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the name has no match, or every retry failed.
	ErrNotFound = errors.New("geocode: location not found")

	// ErrUnavailable marks failures worth retrying: timeouts, 5xx, open breaker.
	ErrUnavailable = errors.New("geocode: service unavailable")

	ErrEmptyName = errors.New("geocode: empty place name")
)

// Location is a resolved coordinate pair.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

func (l Location) String() string { return fmt.Sprintf("(%.6f, %.6f)", l.Lat, l.Lon) }

// Geocoder resolves a place name.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (Location, error)
}

// Func adapts a function to Geocoder.
type Func func(ctx context.Context, name string) (Location, error)

func (f Func) Resolve(ctx context.Context, name string) (Location, error) { return f(ctx, name) }

// Static resolves names from a fixed table, matching case-insensitively.
type Static map[string]Location

func (s Static) Resolve(_ context.Context, name string) (Location, error) {
	key := normalize(name)
	if key == "" {
		return Location{}, ErrEmptyName
	}
	for candidate, location := range s {
		if normalize(candidate) == key {
			return location, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Chain tries each geocoder in order and returns the first match.
// Only ErrNotFound moves on to the next one.
type Chain []Geocoder

func (c Chain) Resolve(ctx context.Context, name string) (Location, error) {
	err := fmt.Errorf("%w: %q", ErrNotFound, name)
	for _, geocoder := range c {
		var location Location
		location, err = geocoder.Resolve(ctx, name)
		if err == nil {
			return location, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Location{}, err
		}
	}
	return Location{}, err
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
