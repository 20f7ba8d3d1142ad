package roads

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/render"
)

// Route is a ready-to-search query built from two place names.
type Route struct {
	Problem *Problem
	Start   NodeID
	Goal    NodeID
	From    geocode.Location
	To      geocode.Location
}

// Plan resolves both names, snaps them to the nearest network nodes and
// builds the problem. Collaborator failures are returned here so the search
// itself never sees them.
func Plan(ctx context.Context, geocoder geocode.Geocoder, network *Network, from, to string, weight Weight, logger *slog.Logger) (*Route, error) {
	if logger == nil {
		logger = slog.Default()
	}
	origin, err := geocoder.Resolve(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("resolve origin %q: %w", from, err)
	}
	destination, err := geocoder.Resolve(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", to, err)
	}
	return PlanCoordinates(network, origin, destination, weight, logger)
}

// PlanCoordinates is Plan for already resolved locations.
func PlanCoordinates(network *Network, origin, destination geocode.Location, weight Weight, logger *slog.Logger) (*Route, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if network == nil {
		return nil, ErrEmptyNetwork
	}
	start, startDistance, err := network.Nearest(origin.Lat, origin.Lon)
	if err != nil {
		return nil, err
	}
	goal, goalDistance, err := network.Nearest(destination.Lat, destination.Lon)
	if err != nil {
		return nil, err
	}
	problem, err := NewProblem(network, goal, weight)
	if err != nil {
		return nil, err
	}
	logger.Info("route planned",
		slog.Int64("start", int64(start)),
		slog.Float64("start_snap_m", startDistance),
		slog.Int64("goal", int64(goal)),
		slog.Float64("goal_snap_m", goalDistance),
		slog.String("weight", weight.String()),
	)
	return &Route{Problem: problem, Start: start, Goal: goal, From: origin, To: destination}, nil
}

// RenderSegments converts traversed segments to the GeoJSON view.
func RenderSegments(segments []Segment) []render.Segment {
	out := make([]render.Segment, 0, len(segments))
	for _, segment := range segments {
		out = append(out, render.Segment{
			From:       render.Point{Lat: segment.From.Lat, Lon: segment.From.Lon},
			To:         render.Point{Lat: segment.To.Lat, Lon: segment.To.Lon},
			FromID:     int64(segment.From.ID),
			ToID:       int64(segment.To.ID),
			Length:     segment.Edge.Length,
			TravelTime: segment.Edge.TravelTime,
			Name:       segment.Edge.Name,
		})
	}
	return out
}
