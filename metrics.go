package search

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("statesearch.search")
	meter  = otel.Meter("statesearch.search")
)

var (
	runsTotal       metric.Int64Counter
	expandedPerRun  metric.Int64Histogram
	runDuration     metric.Float64Histogram
	metricsOnce     sync.Once
	metricsDisabled bool
)

// initMetrics creates the instruments on first use. If any instrument
// fails, recording is skipped instead of failing searches.
func initMetrics() {
	metricsOnce.Do(func() {
		var err error
		runsTotal, err = meter.Int64Counter("search_runs_total",
			metric.WithDescription("Search runs by strategy and final status"),
		)
		if err != nil {
			metricsDisabled = true
			return
		}
		expandedPerRun, err = meter.Int64Histogram("search_expanded_nodes",
			metric.WithDescription("Nodes expanded per search run"),
		)
		if err != nil {
			metricsDisabled = true
			return
		}
		runDuration, err = meter.Float64Histogram("search_duration_seconds",
			metric.WithDescription("Wall time of search runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsDisabled = true
		}
	})
}

func recordRun(ctx context.Context, strategy Strategy, status Status, expanded int, elapsed time.Duration) {
	initMetrics()
	if metricsDisabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy.String()),
		attribute.String("status", status.String()),
	)
	runsTotal.Add(ctx, 1, attrs)
	expandedPerRun.Record(ctx, int64(expanded), attrs)
	runDuration.Record(ctx, elapsed.Seconds(), attrs)
}
