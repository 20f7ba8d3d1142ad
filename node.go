package search

import "github.com/pdrpinto/statesearch/internal"

// Operator indexes one entry of a problem's operator catalogue.
type Operator int

// NoAction is the action recorded on the root node.
const NoAction Operator = -1

// Node is one immutable point in the search history.
// Parent is an index into the run's node arena, -1 for the root.
type Node[S comparable] struct {
	State    S
	Parent   int
	Action   Operator
	PathCost float64
	Depth    int
}

// IsRoot reports whether the node was created from the initial state.
func (n Node[S]) IsRoot() bool { return n.Parent < 0 }

// Step is one entry of a reconstructed solution path.
type Step[S comparable] struct {
	Action Operator
	State  S
	Cost   float64
	Depth  int
}

// Trace rebuilds the path from the root to nodes[index] by following parent links.
// It does not modify the arena, so repeated calls return equal paths.
func Trace[S comparable](nodes []Node[S], index int) []Step[S] {
	if index < 0 || index >= len(nodes) {
		return nil
	}
	indices := internal.ReconstructPath(func(i int) int { return nodes[i].Parent }, index)
	path := make([]Step[S], 0, len(indices))
	for _, i := range indices {
		n := nodes[i]
		path = append(path, Step[S]{Action: n.Action, State: n.State, Cost: n.PathCost, Depth: n.Depth})
	}
	return path
}

// Actions returns the operator sequence of a path, skipping the root.
func Actions[S comparable](path []Step[S]) []Operator {
	if len(path) == 0 {
		return nil
	}
	actions := make([]Operator, 0, len(path)-1)
	for _, step := range path[1:] {
		actions = append(actions, step.Action)
	}
	return actions
}
