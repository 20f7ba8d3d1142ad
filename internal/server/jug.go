package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/jug"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManySessions  = errors.New("too many open sessions")
	ErrInvalidStepCount = errors.New("count must be between 1 and 1000")
)

type jugRequest struct {
	CapacityA     int        `json:"capacity_a" binding:"gte=0,lte=1000000"`
	CapacityB     int        `json:"capacity_b" binding:"gte=0,lte=1000000"`
	Jar           int        `json:"jar" binding:"required,oneof=1 2"`
	Volume        int        `json:"volume" binding:"gte=0"`
	Start         *jug.State `json:"start"`
	Strategy      string     `json:"strategy"`
	MaxExpansions int        `json:"max_expansions" binding:"gte=0"`
}

// problem builds the puzzle; zero capacities mean the classic 3 and 4.
func (r jugRequest) problem() (*jug.Problem, jug.State, error) {
	capacityA, capacityB := r.CapacityA, r.CapacityB
	if capacityA == 0 {
		capacityA = 3
	}
	if capacityB == 0 {
		capacityB = 4
	}
	goal, err := jug.JarEquals(r.Jar, r.Volume)
	if err != nil {
		return nil, jug.State{}, err
	}
	problem, err := jug.New(capacityA, capacityB, goal)
	if err != nil {
		return nil, jug.State{}, err
	}
	var start jug.State
	if r.Start != nil {
		start = *r.Start
	}
	if !problem.Valid(start) {
		return nil, jug.State{}, fmt.Errorf("start %s does not fit capacities (%d,%d)", start, capacityA, capacityB)
	}
	return problem, start, nil
}

type stepView struct {
	Action   string    `json:"action"`
	State    jug.State `json:"state"`
	PathCost float64   `json:"path_cost"`
	Depth    int       `json:"depth"`
}

func jugSteps(problem *jug.Problem, path []search.Step[jug.State]) []stepView {
	steps := make([]stepView, 0, len(path))
	for _, step := range path {
		steps = append(steps, stepView{
			Action:   search.OperatorName(problem, step.Action),
			State:    step.State,
			PathCost: step.Cost,
			Depth:    step.Depth,
		})
	}
	return steps
}

type solveResponse struct {
	Status    string     `json:"status"`
	Found     bool       `json:"found"`
	Steps     []stepView `json:"steps"`
	TotalCost float64    `json:"total_cost"`
	Expanded  int        `json:"expanded"`
	Generated int        `json:"generated"`
	Error     string     `json:"error,omitempty"`
}

func (s *Server) handleJugSolve(c *gin.Context) {
	var request jugRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	problem, start, err := request.problem()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	options, err := s.searchOptions(request.Strategy, request.MaxExpansions)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	result, err := search.Search(c.Request.Context(), problem, start, append(options, search.WithLogger(s.logger))...)
	response := solveResponse{
		Status:    result.Status.String(),
		Found:     result.Found,
		Steps:     jugSteps(problem, result.Path),
		TotalCost: result.TotalCost,
		Expanded:  result.ExpandedNodes,
		Generated: result.GeneratedNodes,
	}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(http.StatusOK, response)
}

// session is one step-by-step run. The stepper is not safe for concurrent
// use, so every access goes through mu.
type session struct {
	mu      sync.Mutex
	problem *jug.Problem
	stepper *search.Stepper[jug.State]
	created time.Time
}

type snapshotView struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Step      int         `json:"step"`
	Done      bool        `json:"done"`
	Found     bool        `json:"found"`
	Current   *jug.State  `json:"current,omitempty"`
	Frontier  []jug.State `json:"frontier"`
	Explored  []jug.State `json:"explored"`
	Path      []stepView  `json:"path,omitempty"`
	TotalCost float64     `json:"total_cost"`
}

func (s *session) view(id string, snapshot search.Snapshot[jug.State]) snapshotView {
	view := snapshotView{
		ID:        id,
		Status:    snapshot.Status.String(),
		Step:      snapshot.StepIndex,
		Done:      snapshot.Done,
		Found:     snapshot.Found,
		Frontier:  snapshot.Frontier,
		Explored:  snapshot.Explored,
		TotalCost: snapshot.TotalCost,
	}
	if snapshot.HasNode {
		current := snapshot.Current
		view.Current = &current
	}
	if snapshot.Found {
		view.Path = jugSteps(s.problem, snapshot.Path)
	}
	return view
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var request jugRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	problem, start, err := request.problem()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	options, err := s.searchOptions(request.Strategy, request.MaxExpansions)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	stepper, err := search.NewStepper(problem, start, options...)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	id := uuid.NewString()
	created := &session{problem: problem, stepper: stepper, created: time.Now()}
	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		abortWithError(c, http.StatusTooManyRequests, ErrTooManySessions)
		return
	}
	s.sessions[id] = created
	s.mu.Unlock()

	s.logger.Debug("session created", slog.String("session_id", id), slog.String("start", start.String()))
	c.JSON(http.StatusCreated, created.view(id, stepper.Snapshot()))
}

func (s *Server) lookup(c *gin.Context) (string, *session, bool) {
	id := c.Param("id")
	s.mu.Lock()
	found, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		abortWithError(c, http.StatusNotFound, ErrSessionNotFound)
	}
	return id, found, ok
}

func (s *Server) handleGetSession(c *gin.Context) {
	id, found, ok := s.lookup(c)
	if !ok {
		return
	}
	found.mu.Lock()
	defer found.mu.Unlock()
	c.JSON(http.StatusOK, found.view(id, found.stepper.Snapshot()))
}

// handleStepSession advances by ?count expansions (default one) and stops
// early once the run is terminal.
func (s *Server) handleStepSession(c *gin.Context) {
	id, found, ok := s.lookup(c)
	if !ok {
		return
	}
	count := 1
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStepsPerRequest {
			abortWithError(c, http.StatusBadRequest, ErrInvalidStepCount)
			return
		}
		count = parsed
	}

	found.mu.Lock()
	defer found.mu.Unlock()
	var snapshot search.Snapshot[jug.State]
	for i := 0; i < count; i++ {
		snapshot = found.stepper.Step()
		if snapshot.Done {
			break
		}
	}
	c.JSON(http.StatusOK, found.view(id, snapshot))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, found, ok := s.lookup(c)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Debug("session deleted", slog.String("session_id", id), slog.Duration("age", time.Since(found.created)))
	c.Status(http.StatusNoContent)
}
