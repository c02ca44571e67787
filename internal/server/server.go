package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/logging"
	"github.com/jonathan/talent-match/internal/metrics"
	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/scoring"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// Storage is the persistence surface the handlers need. *store.Store
// satisfies it; tests substitute an in-memory fake.
type Storage interface {
	SaveCandidate(ctx context.Context, cand *types.Candidate) error
	GetCandidate(ctx context.Context, id string) (*types.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
	ListCandidates(ctx context.Context, limit, offset int) ([]*types.Candidate, error)
	AllCandidates(ctx context.Context) ([]*types.Candidate, error)

	SaveJob(ctx context.Context, job *types.Job) error
	GetJob(ctx context.Context, id string) (*types.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, limit, offset int) ([]*types.Job, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	store      Storage
	taxonomy   *taxonomy.Holder
	normalizer *normalize.Normalizer
	calculator *metrics.Calculator
	ranker     *scoring.Ranker
	cfg        *config.Config
	log        *zap.Logger
}

// New creates a new server instance wired to the given collaborators.
func New(cfg *config.Config, st Storage, holder *taxonomy.Holder, norm *normalize.Normalizer, calc *metrics.Calculator, ranker *scoring.Ranker, log *zap.Logger) *Server {
	s := &Server{
		store:      st,
		taxonomy:   holder,
		normalizer: norm,
		calculator: calc,
		ranker:     ranker,
		cfg:        cfg,
		log:        logging.NopIfNil(log),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Candidate endpoints
	mux.HandleFunc("POST /api/v1/candidates", s.handleCreateCandidate)
	mux.HandleFunc("GET /api/v1/candidates", s.handleListCandidates)
	mux.HandleFunc("GET /api/v1/candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("PUT /api/v1/candidates/{id}", s.handleUpdateCandidate)
	mux.HandleFunc("DELETE /api/v1/candidates/{id}", s.handleDeleteCandidate)
	mux.HandleFunc("POST /api/v1/candidates/{id}/metrics", s.handleRecomputeMetrics)

	// Job endpoints
	mux.HandleFunc("POST /api/v1/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/v1/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /api/v1/jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/v1/jobs/{id}", s.handleDeleteJob)

	// Matching
	mux.HandleFunc("POST /api/v1/jobs/{id}/match", s.handleMatch)

	// Taxonomy
	mux.HandleFunc("POST /api/v1/taxonomy/reload", s.handleTaxonomyReload)
	mux.HandleFunc("POST /api/v1/normalize", s.handleNormalize)

	return s.withLogging(s.withCORS(mux))
}

// Start begins listening for requests and blocks until an interrupt or
// SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// parseQueryInt parses an integer query parameter, returning def when the
// parameter is absent or malformed.
func parseQueryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}
