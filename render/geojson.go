package render

import (
	"encoding/json"
	"io"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Segment is one traversed road edge with its attributes.
type Segment struct {
	From       Point
	To         Point
	FromID     int64
	ToID       int64
	Length     float64
	TravelTime float64
	Name       string
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func position(p Point) [2]float64 { return [2]float64{p.Lon, p.Lat} }

// RouteGeoJSON writes the route as a FeatureCollection: one LineString per
// segment carrying its attributes, plus start and end points.
func RouteGeoJSON(w io.Writer, segments []Segment) error {
	collection := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	var length, travelTime float64
	for i, segment := range segments {
		length += segment.Length
		travelTime += segment.TravelTime
		collection.Features = append(collection.Features, feature{
			Type: "Feature",
			Geometry: geometry{
				Type:        "LineString",
				Coordinates: [][2]float64{position(segment.From), position(segment.To)},
			},
			Properties: map[string]any{
				"index":       i,
				"node_start":  segment.FromID,
				"node_end":    segment.ToID,
				"length":      segment.Length,
				"travel_time": segment.TravelTime,
				"name":        segment.Name,
			},
		})
	}
	if len(segments) > 0 {
		first, last := segments[0], segments[len(segments)-1]
		collection.Features = append(collection.Features,
			feature{
				Type:       "Feature",
				Geometry:   geometry{Type: "Point", Coordinates: position(first.From)},
				Properties: map[string]any{"role": "start", "node": first.FromID},
			},
			feature{
				Type:     "Feature",
				Geometry: geometry{Type: "Point", Coordinates: position(last.To)},
				Properties: map[string]any{
					"role":        "end",
					"node":        last.ToID,
					"length":      length,
					"travel_time": travelTime,
				},
			},
		)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(collection)
}
