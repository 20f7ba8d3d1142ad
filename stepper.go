package search

// Snapshot exposes the per-iteration state of the search.
type Snapshot[S comparable] struct {
	Current   S
	HasNode   bool
	Frontier  []S
	Explored  []S
	Status    Status
	Done      bool
	Found     bool
	Path      []Step[S]
	TotalCost float64
	StepIndex int
}

// Stepper runs the same engine as Search one expansion per call to Step.
// A Stepper is not safe for concurrent use.
type Stepper[S comparable] struct {
	run *engine[S]
}

// NewStepper creates a stepper positioned before the first expansion.
func NewStepper[S comparable](problem Problem[S], start S, options ...Option) (*Stepper[S], error) {
	if problem == nil {
		return nil, ErrNilProblem
	}
	searchOptions, err := buildOptions(options)
	if err != nil {
		return nil, err
	}
	run, err := newEngine(problem, start, searchOptions)
	if err != nil {
		return nil, err
	}
	return &Stepper[S]{run: run}, nil
}

// Status returns the current lifecycle state.
func (s *Stepper[S]) Status() Status { return s.run.status }

// Step advances the search by one node expansion and returns a snapshot.
// Once the run is terminal, further calls return the final snapshot again.
func (s *Stepper[S]) Step() Snapshot[S] {
	if !s.run.status.Terminal() {
		if max := s.run.options.MaxExpansions; max > 0 && s.run.expanded >= max {
			s.run.status = StatusAborted
		} else {
			s.run.step()
		}
	}
	return s.Snapshot()
}

// Snapshot reports the current state without advancing.
func (s *Stepper[S]) Snapshot() Snapshot[S] {
	run := s.run
	snapshot := Snapshot[S]{
		Frontier:  run.frontierStates(),
		Explored:  run.exploredStates(),
		Status:    run.status,
		Done:      run.status.Terminal(),
		Found:     run.status == StatusSucceeded,
		StepIndex: run.expanded,
	}
	if run.current >= 0 {
		snapshot.Current = run.nodes[run.current].State
		snapshot.HasNode = true
	}
	if snapshot.Found {
		snapshot.Path = Trace(run.nodes, run.goal)
		snapshot.TotalCost = run.nodes[run.goal].PathCost
	}
	return snapshot
}

// Result returns the outcome so far; it is final once Status is terminal.
func (s *Stepper[S]) Result() Result[S] { return s.run.result() }
