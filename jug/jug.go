// Package jug implements the two-jar water jug puzzle as a search problem.
//
// A state is the pair of volumes held by jar A and jar B. Six operators fill,
// empty or pour between the jars. Any operator that would leave the state
// unchanged yields no successor, so the state graph has no self-loops.
package jug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	search "github.com/pdrpinto/statesearch"
)

// Operators in catalogue order.
const (
	FillA search.Operator = iota
	FillB
	EmptyA
	EmptyB
	PourAB
	PourBA
)

var operatorNames = [...]string{
	FillA:  "fill-jar-1",
	FillB:  "fill-jar-2",
	EmptyA: "empty-jar-1",
	EmptyB: "empty-jar-2",
	PourAB: "pour-1-into-2",
	PourBA: "pour-2-into-1",
}

var catalogue = []search.Operator{FillA, FillB, EmptyA, EmptyB, PourAB, PourBA}

var (
	ErrInvalidCapacity = errors.New("jug: capacities must be positive")
	ErrNilGoal         = errors.New("jug: goal is required")
	ErrInvalidJar      = errors.New("jug: jar must be 1 or 2")
)

// State is the volume in each jar.
type State struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (s State) String() string { return fmt.Sprintf("(%d,%d)", s.A, s.B) }

// Goal decides whether a state solves the puzzle.
type Goal func(State) bool

// JarEquals is satisfied when the given jar (1 or 2) holds volume.
func JarEquals(jar, volume int) (Goal, error) {
	switch jar {
	case 1:
		return func(s State) bool { return s.A == volume }, nil
	case 2:
		return func(s State) bool { return s.B == volume }, nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrInvalidJar, jar)
}

// StateEquals is satisfied by exactly one state.
func StateEquals(target State) Goal {
	return func(s State) bool { return s == target }
}

// Problem is the puzzle for fixed capacities and goal.
type Problem struct {
	capacityA int
	capacityB int
	goal      Goal
}

// New returns a puzzle with the given jar capacities.
func New(capacityA, capacityB int, goal Goal) (*Problem, error) {
	if capacityA <= 0 || capacityB <= 0 {
		return nil, fmt.Errorf("%w: got (%d,%d)", ErrInvalidCapacity, capacityA, capacityB)
	}
	if goal == nil {
		return nil, ErrNilGoal
	}
	return &Problem{capacityA: capacityA, capacityB: capacityB, goal: goal}, nil
}

// Standard returns the classic 3 and 4 unit puzzle.
func Standard(goal Goal) (*Problem, error) { return New(3, 4, goal) }

// Capacities returns the jar sizes.
func (p *Problem) Capacities() (int, int) { return p.capacityA, p.capacityB }

// Valid reports whether s respects the capacity bounds.
func (p *Problem) Valid(s State) bool {
	return s.A >= 0 && s.A <= p.capacityA && s.B >= 0 && s.B <= p.capacityB
}

// Operators returns the fixed catalogue regardless of state.
func (p *Problem) Operators(State) []search.Operator { return catalogue }

// Apply returns the successor of state under operator. An unknown operator
// index is a programming error and panics.
func (p *Problem) Apply(state State, operator search.Operator) (State, bool) {
	next := state
	switch operator {
	case FillA:
		if state.A >= p.capacityA {
			return state, false
		}
		next.A = p.capacityA
	case FillB:
		if state.B >= p.capacityB {
			return state, false
		}
		next.B = p.capacityB
	case EmptyA:
		if state.A <= 0 {
			return state, false
		}
		next.A = 0
	case EmptyB:
		if state.B <= 0 {
			return state, false
		}
		next.B = 0
	case PourAB:
		next.A, next.B = pour(state.A, state.B, p.capacityB)
	case PourBA:
		next.B, next.A = pour(state.B, state.A, p.capacityA)
	default:
		panic(fmt.Sprintf("jug: unknown operator %d", int(operator)))
	}
	if next == state {
		return state, false
	}
	return next, true
}

// pour moves min(source, capacity-destination) units.
func pour(source, destination, capacity int) (int, int) {
	transfer := min(source, capacity-destination)
	return source - transfer, destination + transfer
}

// IsGoal applies the configured goal.
func (p *Problem) IsGoal(state State) bool { return p.goal(state) }

// StepCost is one per move, so path cost equals depth.
func (p *Problem) StepCost(State, search.Operator, State) float64 { return 1 }

// OperatorName returns the catalogue label of operator.
func (p *Problem) OperatorName(operator search.Operator) string {
	if operator < 0 || int(operator) >= len(operatorNames) {
		return fmt.Sprintf("op%d", int(operator))
	}
	return operatorNames[operator]
}

// Reachable returns every state reachable from start in breadth-first
// expansion order, start first.
func (p *Problem) Reachable(start State) []State {
	exhaustive := &Problem{
		capacityA: p.capacityA,
		capacityB: p.capacityB,
		goal:      func(State) bool { return false },
	}
	var states []State
	// Breadth-first with no goal and no budget always exhausts the frontier.
	_, _ = search.Search(context.Background(), exhaustive, start,
		search.WithLogger(slog.New(slog.DiscardHandler)),
		search.WithObserver(func(event search.Event[State]) {
			states = append(states, event.State)
		}),
	)
	return states
}
