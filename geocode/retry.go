package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultMaxRetries = 20
	DefaultRetryDelay = time.Second
)

// Retrier retries a Geocoder a bounded number of times with a fixed delay.
// A definitive ErrNotFound is returned at once; exhausting the retries is
// also reported as ErrNotFound.
type Retrier struct {
	next       Geocoder
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
}

// WithRetry wraps next. Non-positive values fall back to the defaults,
// and a nil logger uses slog.Default().
func WithRetry(next Geocoder, maxRetries int, delay time.Duration, logger *slog.Logger) *Retrier {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{next: next, maxRetries: maxRetries, delay: delay, logger: logger}
}

func (r *Retrier) Resolve(ctx context.Context, name string) (Location, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		location, err := r.next.Resolve(ctx, name)
		if err == nil {
			return location, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyName) {
			return Location{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Location{}, ctxErr
		}
		lastErr = err
		r.logger.Warn("geocoder failed, retrying",
			slog.String("name", name),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", r.maxRetries),
			slog.String("error", err.Error()),
		)
		if attempt == r.maxRetries {
			break
		}
		timer := time.NewTimer(r.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Location{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Location{}, fmt.Errorf("%w: %q after %d attempts: %v", ErrNotFound, name, r.maxRetries, lastErr)
}
