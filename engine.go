package search

import "fmt"

// engine holds the bookkeeping of one run. It is shared by Search and
// Stepper and is never used from more than one goroutine.
type engine[S comparable] struct {
	problem   Problem[S]
	options   Options
	heuristic func(S) float64
	observer  func(Event[S])

	nodes    []Node[S]
	frontier frontier
	explored map[S]struct{}

	status      Status
	current     int
	goal        int
	expanded    int
	generated   int
	maxFrontier int
}

func newEngine[S comparable](problem Problem[S], start S, options Options) (*engine[S], error) {
	run := &engine[S]{
		problem:   problem,
		options:   options,
		heuristic: func(S) float64 { return 0 },
		frontier:  newFrontier(options.Strategy),
		explored:  make(map[S]struct{}),
		status:    StatusReady,
		current:   -1,
		goal:      -1,
	}
	if informed, ok := problem.(Heuristic[S]); ok {
		run.heuristic = informed.Heuristic
	}
	if options.Observer != nil {
		observer, ok := options.Observer.(func(Event[S]))
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrObserverType, options.Observer)
		}
		run.observer = observer
	}

	root := Node[S]{State: start, Parent: -1, Action: NoAction}
	run.nodes = append(run.nodes, root)
	run.frontier.push(0, run.priority(root))
	run.maxFrontier = 1
	return run, nil
}

func (e *engine[S]) priority(node Node[S]) float64 {
	switch e.options.Strategy {
	case UniformCost:
		return node.PathCost
	case Greedy:
		return e.heuristic(node.State)
	case AStar:
		return node.PathCost + e.heuristic(node.State)
	}
	return 0
}

// step pops nodes until one is expanded or the run reaches a terminal status.
func (e *engine[S]) step() {
	if e.status.Terminal() {
		return
	}
	e.status = StatusRunning
	for e.frontier.len() > 0 {
		index := e.frontier.pop()
		state := e.nodes[index].State
		if _, seen := e.explored[state]; seen {
			continue
		}
		e.explored[state] = struct{}{}
		e.expanded++
		e.current = index

		if e.problem.IsGoal(state) {
			e.status = StatusSucceeded
			e.goal = index
		} else {
			e.expand(index)
		}
		e.notify(index)
		return
	}
	e.status = StatusFailed
}

func (e *engine[S]) expand(index int) {
	parent := e.nodes[index]
	for _, operator := range e.problem.Operators(parent.State) {
		next, ok := e.problem.Apply(parent.State, operator)
		if !ok {
			continue
		}
		if _, seen := e.explored[next]; seen {
			continue
		}
		cost := e.problem.StepCost(parent.State, operator, next)
		if cost < 0 {
			panic(fmt.Errorf("%w: %v for operator %d", ErrNegativeStepCost, cost, int(operator)))
		}
		child := Node[S]{
			State:    next,
			Parent:   index,
			Action:   operator,
			PathCost: parent.PathCost + cost,
			Depth:    parent.Depth + 1,
		}
		e.nodes = append(e.nodes, child)
		e.frontier.push(len(e.nodes)-1, e.priority(child))
		e.generated++
	}
	if size := e.frontier.len(); size > e.maxFrontier {
		e.maxFrontier = size
	}
}

func (e *engine[S]) notify(index int) {
	if e.observer == nil {
		return
	}
	node := e.nodes[index]
	e.observer(Event[S]{
		Step:     e.expanded,
		State:    node.State,
		Depth:    node.Depth,
		PathCost: node.PathCost,
		Frontier: e.frontier.len(),
		Explored: len(e.explored),
	})
}

func (e *engine[S]) result() Result[S] {
	result := Result[S]{
		Status:         e.status,
		ExpandedNodes:  e.expanded,
		GeneratedNodes: e.generated,
		ExploredStates: len(e.explored),
		MaxFrontier:    e.maxFrontier,
	}
	if e.status == StatusSucceeded {
		result.Found = true
		result.Path = Trace(e.nodes, e.goal)
		result.TotalCost = e.nodes[e.goal].PathCost
	}
	return result
}

func (e *engine[S]) frontierStates() []S {
	indices := e.frontier.nodes()
	states := make([]S, 0, len(indices))
	for _, index := range indices {
		states = append(states, e.nodes[index].State)
	}
	return states
}

func (e *engine[S]) exploredStates() []S {
	states := make([]S, 0, len(e.explored))
	for state := range e.explored {
		states = append(states, state)
	}
	return states
}
