package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"youtube-summarizer/internal/application"
	"youtube-summarizer/internal/cache"
	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/pipeline"
)

// Runner executes one summarization job. It is the seam between the
// HTTP layer and the pipeline, so tests can swap in a fake.
type Runner interface {
	Run(ctx context.Context, url string) (*pipeline.SummaryResult, error)
}

// RunnerFactory resolves the runner for a request. An empty modelPath
// selects the configured default model.
type RunnerFactory func(modelPath string) (Runner, error)

// Server holds the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	runnerFor    RunnerFactory
	cacheManager *cache.Manager
	notifier     Notifier
	startedAt    time.Time
}

// Notifier posts completed results to an external webhook.
type Notifier interface {
	NotifyCompleted(ctx context.Context, result *pipeline.SummaryResult) error
}

// NewServer creates a new HTTP server around the application wiring.
func NewServer(app *application.Application) *Server {
	s := &Server{
		config:       app.Config,
		cacheManager: app.Cache,
		startedAt:    time.Now(),
		runnerFor: func(modelPath string) (Runner, error) {
			return app.OrchestratorFor(modelPath)
		},
	}
	if app.Notifier != nil {
		s.notifier = app.Notifier
	}
	return s
}

// NewServerForTests creates a server with injected dependencies.
func NewServerForTests(cfg *config.Config, cacheManager *cache.Manager, runnerFor RunnerFactory) *Server {
	return &Server{
		config:       cfg,
		cacheManager: cacheManager,
		runnerFor:    runnerFor,
		startedAt:    time.Now(),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Interactive web form
	r.HandleFunc("/", s.indexHandler).Methods("GET")
	r.HandleFunc("/summarize", s.formSummarizeHandler).Methods("POST")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Summary operations
	api.HandleFunc("/summarize", s.summarizeHandler).Methods("POST")

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("DELETE")

	// Status and configuration
	api.HandleFunc("/status", s.statusHandler).Methods("GET")
	api.HandleFunc("/config", s.configHandler).Methods("GET")

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   "v1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// notifyCompleted posts the result to the configured webhook, if any.
// Failures are logged, never surfaced to the caller.
func (s *Server) notifyCompleted(result *pipeline.SummaryResult) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.notifier.NotifyCompleted(ctx, result); err != nil {
		log.Printf("Error sending completion notification: %v", err)
	}
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
