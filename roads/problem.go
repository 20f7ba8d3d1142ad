package roads

import (
	"fmt"
	"strings"

	search "github.com/pdrpinto/statesearch"
)

// Weight selects the edge attribute used as step cost.
type Weight int

const (
	ByLength Weight = iota
	ByTravelTime
)

func (w Weight) String() string {
	if w == ByTravelTime {
		return "travel_time"
	}
	return "length"
}

// ParseWeight accepts "length" and "travel_time".
func ParseWeight(name string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "length", "distance", "":
		return ByLength, nil
	case "travel_time", "time", "travel-time":
		return ByTravelTime, nil
	}
	return 0, fmt.Errorf("roads: unknown weight %q", name)
}

func (w Weight) of(edge Edge) float64 {
	if w == ByTravelTime {
		return edge.TravelTime
	}
	return edge.Length
}

// Problem is a shortest-route query towards one goal node.
type Problem struct {
	network   *Network
	goal      NodeID
	goalNode  Node
	weight    Weight
	scale     float64
	operators []search.Operator
}

// NewProblem prepares a query on network towards goal.
func NewProblem(network *Network, goal NodeID, weight Weight) (*Problem, error) {
	if network == nil || network.NodeCount() == 0 {
		return nil, ErrEmptyNetwork
	}
	goalNode, ok := network.Node(goal)
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownNode, goal)
	}
	degree := 0
	for _, edges := range network.out {
		degree = max(degree, len(edges))
	}
	operators := make([]search.Operator, degree)
	for i := range operators {
		operators[i] = search.Operator(i)
	}
	return &Problem{
		network:   network,
		goal:      goal,
		goalNode:  goalNode,
		weight:    weight,
		scale:     network.minRatio(weight),
		operators: operators,
	}, nil
}

// Goal returns the target node id.
func (p *Problem) Goal() NodeID { return p.goal }

// Weight returns the cost attribute in use.
func (p *Problem) Weight() Weight { return p.weight }

// Operators returns one operator per outgoing edge of state.
func (p *Problem) Operators(state NodeID) []search.Operator {
	return p.operators[:len(p.network.out[state])]
}

// Apply follows the operator-th outgoing edge. Self-loops yield no successor.
func (p *Problem) Apply(state NodeID, operator search.Operator) (NodeID, bool) {
	edge, ok := p.network.Edge(state, int(operator))
	if !ok {
		panic(fmt.Sprintf("roads: node %d has no edge %d", state, int(operator)))
	}
	if edge.To == state {
		return state, false
	}
	return edge.To, true
}

func (p *Problem) IsGoal(state NodeID) bool { return state == p.goal }

func (p *Problem) StepCost(from NodeID, operator search.Operator, _ NodeID) float64 {
	edge, _ := p.network.Edge(from, int(operator))
	return p.weight.of(edge)
}

// Heuristic is the straight-line distance to the goal scaled by the
// network's smallest weight per metre, so it never overestimates.
func (p *Problem) Heuristic(state NodeID) float64 {
	node, ok := p.network.Node(state)
	if !ok {
		return 0
	}
	return Haversine(node.Lat, node.Lon, p.goalNode.Lat, p.goalNode.Lon) * p.scale
}

// OperatorName labels an operator as the edge slot it follows.
func (p *Problem) OperatorName(operator search.Operator) string {
	return fmt.Sprintf("edge-%d", int(operator))
}

// Segment is one traversed edge of a route with both endpoints.
type Segment struct {
	From Node
	To   Node
	Edge Edge
}

// Segments resolves a search path into the edges it traverses.
func (p *Problem) Segments(path []search.Step[NodeID]) []Segment {
	if len(path) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		edge, ok := p.network.Edge(path[i-1].State, int(path[i].Action))
		if !ok {
			continue
		}
		from, _ := p.network.Node(edge.From)
		to, _ := p.network.Node(edge.To)
		segments = append(segments, Segment{From: from, To: to, Edge: edge})
	}
	return segments
}
