// Package server exposes the search engine over HTTP: one-shot solves and
// step-by-step sessions that a browser can drive one expansion at a time.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/roads"
)

const (
	defaultMaxSessions   = 256
	defaultMaxExpansions = 1_000_000
	maxStepsPerRequest   = 1000
	requestIDHeader      = "X-Request-ID"
)

// Config wires the server to its collaborators. Network and Geocoder are
// optional; without them the route endpoint answers 503.
//
// MaxExpansions bounds every search the server runs, whatever the
// request or SearchOptions ask for.
type Config struct {
	Logger        *slog.Logger
	SearchOptions []search.Option
	Network       *roads.Network
	Geocoder      geocode.Geocoder
	Weight        roads.Weight
	Metrics       http.Handler
	MaxSessions   int
	MaxExpansions int
}

// Server holds the router and the live stepping sessions.
type Server struct {
	logger      *slog.Logger
	options     []search.Option
	network     *roads.Network
	geocoder    geocode.Geocoder
	weight      roads.Weight
	maxSessions int
	budget      int
	router      *gin.Engine

	mu       sync.Mutex
	sessions map[string]*session
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.MaxExpansions <= 0 {
		cfg.MaxExpansions = defaultMaxExpansions
	}
	s := &Server{
		logger:      cfg.Logger,
		options:     cfg.SearchOptions,
		network:     cfg.Network,
		geocoder:    cfg.Geocoder,
		weight:      cfg.Weight,
		maxSessions: cfg.MaxSessions,
		budget:      cfg.MaxExpansions,
		sessions:    make(map[string]*session),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/health", s.handleHealth)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}
	v1 := router.Group("/v1")
	{
		v1.POST("/jug/solve", s.handleJugSolve)
		sessions := v1.Group("/jug/sessions")
		{
			sessions.POST("", s.handleCreateSession)
			sessions.GET("/:id", s.handleGetSession)
			sessions.POST("/:id/step", s.handleStepSession)
			sessions.DELETE("/:id", s.handleDeleteSession)
		}
		v1.POST("/routes/solve", s.handleRouteSolve)
	}
	s.router = router
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- httpServer.ListenAndServe() }()
	s.logger.Info("server listening", slog.String("addr", addr))

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return httpServer.Shutdown(shutdownContext)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()
		s.logger.Info("request",
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(began)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	open := len(s.sessions)
	s.mu.Unlock()
	body := gin.H{"status": "ok", "sessions": open}
	if s.network != nil {
		body["network"] = s.network.Name
		body["network_nodes"] = s.network.NodeCount()
	}
	c.JSON(http.StatusOK, body)
}

// searchOptions returns the server defaults followed by per-request
// overrides, so the latter win. The expansion budget is then clamped to
// the server limit.
func (s *Server) searchOptions(strategy string, maxExpansions int) ([]search.Option, error) {
	options := append([]search.Option(nil), s.options...)
	if strategy != "" {
		parsed, err := search.ParseStrategy(strategy)
		if err != nil {
			return nil, err
		}
		options = append(options, search.WithStrategy(parsed))
	}
	if maxExpansions > 0 {
		options = append(options, search.WithMaxExpansions(maxExpansions))
	}
	var effective search.Options
	for _, option := range options {
		option(&effective)
	}
	if effective.MaxExpansions == 0 || effective.MaxExpansions > s.budget {
		options = append(options, search.WithMaxExpansions(s.budget))
	}
	return options, nil
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
