// Package telemetry installs the OpenTelemetry meter provider that backs the
// search metrics and exposes it for Prometheus scraping.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

var (
	ErrNilContext      = errors.New("telemetry: nil context")
	ErrUnknownExporter = errors.New("telemetry: unknown exporter")
)

// Config controls which metric exporter is installed.
type Config struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	// MetricsExporter is "prometheus" or "none".
	MetricsExporter string `mapstructure:"metrics_exporter" validate:"omitempty,oneof=prometheus none"`
}

// DefaultConfig exports metrics for Prometheus.
func DefaultConfig() Config {
	return Config{
		ServiceName:     "statesearch",
		ServiceVersion:  "dev",
		MetricsExporter: "prometheus",
	}
}

var (
	metricsHandler   http.Handler
	metricsHandlerMu sync.RWMutex
)

// MetricsHandler returns the /metrics handler, or nil when the Prometheus
// exporter is not installed.
func MetricsHandler() http.Handler {
	metricsHandlerMu.RLock()
	defer metricsHandlerMu.RUnlock()
	return metricsHandler
}

// Init sets the global meter provider. The returned shutdown must be called
// on exit. Each call gets its own Prometheus registry so that re-initialising
// never collides with earlier registrations.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	noop := func(context.Context) error { return nil }

	switch cfg.MetricsExporter {
	case "none", "":
		metricsHandlerMu.Lock()
		metricsHandler = nil
		metricsHandlerMu.Unlock()
		return noop, nil
	case "prometheus":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricsExporter)
	}

	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	provider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	metricsHandlerMu.Lock()
	metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	metricsHandlerMu.Unlock()

	return provider.Shutdown, nil
}
