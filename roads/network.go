// Package roads searches shortest routes over a road network.
//
// A Network is a directed multigraph of intersections joined by road
// segments. Problem exposes it to the search package: a state is a node
// id, the operators at a node are its outgoing edges and the step cost is
// either edge length or travel time.
package roads

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyNetwork = errors.New("roads: network has no nodes")
	ErrUnknownNode  = errors.New("roads: unknown node")
	ErrInvalidEdge  = errors.New("roads: invalid edge")
	ErrInvalidSpeed = errors.New("roads: speeds must be positive and finite")
)

// NodeID identifies an intersection.
type NodeID int64

// Node is an intersection with its WGS84 position. Elevation is in metres
// and optional.
type Node struct {
	ID        NodeID  `yaml:"id" json:"id"`
	Lat       float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
	Elevation float64 `yaml:"elevation,omitempty" json:"elevation,omitempty"`
}

// Edge is one directed road segment. Length is in metres, Speed in km/h
// and TravelTime in seconds. Grade is the rise over length, derived from
// node elevations.
type Edge struct {
	From       NodeID  `yaml:"from" json:"from"`
	To         NodeID  `yaml:"to" json:"to"`
	Length     float64 `yaml:"length,omitempty" json:"length" validate:"gte=0"`
	Speed      float64 `yaml:"speed_kph,omitempty" json:"speed_kph" validate:"gte=0"`
	TravelTime float64 `yaml:"travel_time,omitempty" json:"travel_time" validate:"gte=0"`
	Highway    string  `yaml:"highway,omitempty" json:"highway,omitempty"`
	Name       string  `yaml:"name,omitempty" json:"name,omitempty"`
	Oneway     bool    `yaml:"oneway,omitempty" json:"oneway,omitempty"`
	Grade      float64 `yaml:"-" json:"grade"`
}

// SpeedTable maps highway types to speeds in km/h.
type SpeedTable map[string]float64

// DefaultSpeeds are used for edges without an explicit speed.
func DefaultSpeeds() SpeedTable {
	return SpeedTable{"residential": 35, "secondary": 50, "tertiary": 60}
}

// fallback is the mean of the table, used for unknown highway types.
func (t SpeedTable) fallback() float64 {
	if len(t) == 0 {
		return 30
	}
	var sum float64
	for _, speed := range t {
		sum += speed
	}
	return sum / float64(len(t))
}

func positiveSpeed(speed float64) bool {
	return speed > 0 && !math.IsInf(speed, 0)
}

// Network is immutable once built and safe for concurrent reads.
type Network struct {
	Name  string
	nodes map[NodeID]Node
	order []NodeID
	out   map[NodeID][]Edge
	edges int
}

// NewNetwork builds a network. Two-way edges (Oneway false) are added in
// both directions. Missing lengths become the great-circle distance,
// missing speeds come from speeds and travel time is derived from both.
// Every speed in the table must be positive.
func NewNetwork(name string, nodes []Node, edges []Edge, speeds SpeedTable) (*Network, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyNetwork
	}
	if speeds == nil {
		speeds = DefaultSpeeds()
	}
	for highway, speed := range speeds {
		if !positiveSpeed(speed) {
			return nil, fmt.Errorf("%w: %s is %v", ErrInvalidSpeed, highway, speed)
		}
	}
	network := &Network{
		Name:  name,
		nodes: make(map[NodeID]Node, len(nodes)),
		out:   make(map[NodeID][]Edge, len(nodes)),
	}
	for _, node := range nodes {
		if _, dup := network.nodes[node.ID]; dup {
			return nil, fmt.Errorf("roads: duplicate node %d", node.ID)
		}
		network.nodes[node.ID] = node
		network.order = append(network.order, node.ID)
	}
	sort.Slice(network.order, func(i, j int) bool { return network.order[i] < network.order[j] })

	for i, edge := range edges {
		from, ok := network.nodes[edge.From]
		if !ok {
			return nil, fmt.Errorf("%w %d: edge %d starts there", ErrUnknownNode, edge.From, i)
		}
		to, ok := network.nodes[edge.To]
		if !ok {
			return nil, fmt.Errorf("%w %d: edge %d ends there", ErrUnknownNode, edge.To, i)
		}
		if edge.Length < 0 || edge.Speed < 0 || edge.TravelTime < 0 {
			return nil, fmt.Errorf("%w: edge %d has a negative attribute", ErrInvalidEdge, i)
		}
		if edge.Length == 0 {
			edge.Length = Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
		}
		if edge.Speed == 0 {
			speed, known := speeds[edge.Highway]
			if !known {
				speed = speeds.fallback()
			}
			edge.Speed = speed
		}
		if !positiveSpeed(edge.Speed) {
			return nil, fmt.Errorf("%w: edge %d has speed %v", ErrInvalidSpeed, i, edge.Speed)
		}
		if edge.TravelTime == 0 {
			edge.TravelTime = edge.Length / (edge.Speed * 1000 / 3600)
		}
		if edge.Length > 0 {
			edge.Grade = (to.Elevation - from.Elevation) / edge.Length
		}
		network.addEdge(edge)
		if !edge.Oneway && edge.From != edge.To {
			reverse := edge
			reverse.From, reverse.To = edge.To, edge.From
			reverse.Grade = -edge.Grade
			network.addEdge(reverse)
		}
	}
	return network, nil
}

func (n *Network) addEdge(edge Edge) {
	n.out[edge.From] = append(n.out[edge.From], edge)
	n.edges++
}

// Node returns the node with the given id.
func (n *Network) Node(id NodeID) (Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Nodes returns all nodes ordered by id.
func (n *Network) Nodes() []Node {
	out := make([]Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.nodes[id])
	}
	return out
}

// Edges returns the outgoing edges of id in load order. The slice must not be modified.
func (n *Network) Edges(id NodeID) []Edge { return n.out[id] }

// Edge returns the index-th outgoing edge of from.
func (n *Network) Edge(from NodeID, index int) (Edge, bool) {
	edges := n.out[from]
	if index < 0 || index >= len(edges) {
		return Edge{}, false
	}
	return edges[index], true
}

func (n *Network) NodeCount() int { return len(n.nodes) }
func (n *Network) EdgeCount() int { return n.edges }

// Nearest returns the node closest to the coordinate by great-circle distance.
// Ties go to the lowest id.
func (n *Network) Nearest(lat, lon float64) (NodeID, float64, error) {
	if len(n.order) == 0 {
		return 0, 0, ErrEmptyNetwork
	}
	best, bestDistance := n.order[0], math.Inf(1)
	for _, id := range n.order {
		node := n.nodes[id]
		if d := Haversine(lat, lon, node.Lat, node.Lon); d < bestDistance {
			best, bestDistance = id, d
		}
	}
	return best, bestDistance, nil
}

// minRatio returns the smallest edge weight per metre of straight-line
// distance between the edge endpoints. Scaling straight-line distance by it
// never exceeds the weight of any path.
func (n *Network) minRatio(weight Weight) float64 {
	ratio := math.Inf(1)
	for from, edges := range n.out {
		a := n.nodes[from]
		for _, edge := range edges {
			b := n.nodes[edge.To]
			d := Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
			if d <= 0 {
				continue
			}
			if r := weight.of(edge) / d; r < ratio {
				ratio = r
			}
		}
	}
	if math.IsInf(ratio, 1) {
		return 0
	}
	return ratio
}
