package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Problem is the capability set a domain implements over its state type S.
// S must be comparable so it can key the explored set.
//
// Apply reports false when the operator is inapplicable or would leave the
// state unchanged; that is normal control flow, not an error.
type Problem[S comparable] interface {
	Operators(state S) []Operator
	Apply(state S, operator Operator) (S, bool)
	IsGoal(state S) bool
	StepCost(from S, operator Operator, to S) float64
}

// Heuristic is implemented by problems that can estimate the remaining cost
// to a goal. Greedy and A* use it; the estimate must not overestimate for
// A* to stay optimal. Problems without it get a zero estimate.
type Heuristic[S comparable] interface {
	Heuristic(state S) float64
}

// OperatorNamer is implemented by problems with human readable operators.
type OperatorNamer interface {
	OperatorName(operator Operator) string
}

// OperatorName labels an operator using the problem's OperatorNamer when present.
func OperatorName(problem any, operator Operator) string {
	if operator == NoAction {
		return "start"
	}
	if namer, ok := problem.(OperatorNamer); ok {
		return namer.OperatorName(operator)
	}
	return fmt.Sprintf("op%d", int(operator))
}

// Informed attaches an estimate function to a problem that has none,
// or replaces the one it has.
func Informed[S comparable](problem Problem[S], estimate func(S) float64) Problem[S] {
	return informed[S]{Problem: problem, estimate: estimate}
}

type informed[S comparable] struct {
	Problem[S]
	estimate func(S) float64
}

func (p informed[S]) Heuristic(state S) float64 { return p.estimate(state) }

func (p informed[S]) OperatorName(operator Operator) string {
	return OperatorName(p.Problem, operator)
}

// Strategy selects the frontier ordering.
type Strategy int

const (
	BreadthFirst Strategy = iota
	DepthFirst
	UniformCost
	Greedy
	AStar
)

var strategyNames = map[Strategy]string{
	BreadthFirst: "bfs",
	DepthFirst:   "dfs",
	UniformCost:  "ucs",
	Greedy:       "greedy",
	AStar:        "astar",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts the short names returned by String and a few long forms.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first", "breadth_first":
		return BreadthFirst, nil
	case "dfs", "depth-first", "depth_first":
		return DepthFirst, nil
	case "ucs", "uniform-cost", "uniform_cost", "dijkstra":
		return UniformCost, nil
	case "greedy", "best-first":
		return Greedy, nil
	case "astar", "a*", "a-star":
		return AStar, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Status is the lifecycle of one search run.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether no further expansion will happen.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusAborted
}

var (
	ErrNilProblem       = errors.New("search: nil problem")
	ErrUnknownStrategy  = errors.New("search: unknown strategy")
	ErrBudgetExceeded   = errors.New("search: expansion budget exceeded")
	ErrNegativeStepCost = errors.New("search: negative step cost")
	ErrObserverType     = errors.New("search: observer state type does not match problem")
)

// Result contains the outcome of a search.
// A search that exhausts its frontier has Found false and a nil Path; it is
// not an error.
type Result[S comparable] struct {
	Status         Status
	Found          bool
	Path           []Step[S]
	TotalCost      float64
	ExpandedNodes  int
	GeneratedNodes int
	ExploredStates int
	MaxFrontier    int
}

// Actions returns the operator sequence of the solution path.
func (r Result[S]) Actions() []Operator { return Actions(r.Path) }

// Final returns the last state of the path.
func (r Result[S]) Final() (S, bool) {
	var zero S
	if len(r.Path) == 0 {
		return zero, false
	}
	return r.Path[len(r.Path)-1].State, true
}

// Event describes one expansion and is handed to an Observer.
type Event[S comparable] struct {
	Step     int
	State    S
	Depth    int
	PathCost float64
	Frontier int
	Explored int
}

// Options defines parameters for the search.
type Options struct {
	Strategy        Strategy
	MaxExpansions   int
	NumberOfWorkers int
	Logger          *slog.Logger
	// Observer holds a func(Event[S]); see WithObserver.
	Observer any
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStrategy picks the frontier ordering. The default is BreadthFirst.
func WithStrategy(strategy Strategy) Option {
	return func(options *Options) { options.Strategy = strategy }
}

// WithMaxExpansions stops a run with ErrBudgetExceeded after n expansions. Zero means unbounded.
func WithMaxExpansions(n int) Option {
	return func(options *Options) { options.MaxExpansions = n }
}

// WithWorkers specifies how many searches RunAll executes at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithLogger sets the logger for run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithObserver registers a callback invoked after every expansion. S must
// match the state type of the problem being searched, otherwise Search and
// NewStepper fail with ErrObserverType.
func WithObserver[S comparable](observer func(Event[S])) Option {
	return func(options *Options) { options.Observer = observer }
}

func buildOptions(options []Option) (Options, error) {
	searchOptions := Options{
		Strategy:        BreadthFirst,
		NumberOfWorkers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if _, ok := strategyNames[searchOptions.Strategy]; !ok {
		return searchOptions, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(searchOptions.Strategy))
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.Default()
	}
	return searchOptions, nil
}

// Search runs problem from start until a goal is dequeued or the frontier is empty.
//
// The returned error is non-nil only when the run was stopped by the
// expansion budget or by ctx; the partial Result is still returned.
func Search[S comparable](
	ctx context.Context,
	problem Problem[S],
	start S,
	options ...Option,
) (Result[S], error) {
	if problem == nil {
		return Result[S]{}, ErrNilProblem
	}
	searchOptions, err := buildOptions(options)
	if err != nil {
		return Result[S]{}, err
	}

	run, err := newEngine(problem, start, searchOptions)
	if err != nil {
		return Result[S]{}, err
	}

	ctx, span := tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("search.strategy", searchOptions.Strategy.String()),
	))
	defer span.End()

	began := time.Now()
	for !run.status.Terminal() {
		// Limits are enforced here and nowhere else in the loop.
		if err := ctx.Err(); err != nil {
			return abort(ctx, run, span, began, err)
		}
		if searchOptions.MaxExpansions > 0 && run.expanded >= searchOptions.MaxExpansions {
			return abort(ctx, run, span, began, fmt.Errorf("%w: %d", ErrBudgetExceeded, run.expanded))
		}
		run.step()
	}

	result := run.result()
	span.SetAttributes(
		attribute.String("search.status", result.Status.String()),
		attribute.Int("search.expanded", result.ExpandedNodes),
	)
	recordRun(ctx, searchOptions.Strategy, result.Status, result.ExpandedNodes, time.Since(began))
	searchOptions.Logger.Debug("search finished",
		slog.String("strategy", searchOptions.Strategy.String()),
		slog.String("status", result.Status.String()),
		slog.Int("expanded", result.ExpandedNodes),
		slog.Int("generated", result.GeneratedNodes),
		slog.Float64("cost", result.TotalCost),
		slog.Duration("elapsed", time.Since(began)),
	)
	return result, nil
}

func abort[S comparable](ctx context.Context, run *engine[S], span trace.Span, began time.Time, err error) (Result[S], error) {
	run.status = StatusAborted
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	result := run.result()
	recordRun(context.WithoutCancel(ctx), run.options.Strategy, result.Status, result.ExpandedNodes, time.Since(began))
	run.options.Logger.Warn("search aborted",
		slog.String("strategy", run.options.Strategy.String()),
		slog.Int("expanded", result.ExpandedNodes),
		slog.String("error", err.Error()),
	)
	return result, err
}
