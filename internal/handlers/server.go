package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/archive"
	"github.com/pep299/newsletter-generator/internal/config"
	"github.com/pep299/newsletter-generator/internal/newsletter"
	"github.com/pep299/newsletter-generator/internal/response"
)

// Version is reported by the health and status endpoints
var Version = "v1.0.0"

// maxUploadBytes bounds the multipart form kept in memory
const maxUploadBytes = 10 << 20

// Server holds the HTTP handlers and their dependencies
type Server struct {
	config  *config.Config
	service *newsletter.Service
	archive archive.Archive
	logger  *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, service *newsletter.Service, archive archive.Archive, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:  cfg,
		service: service,
		archive: archive,
		logger:  logger.Named("http"),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteMethodNotAllowed(w)
	})

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	// Newsletter operations
	api.HandleFunc("/newsletter", s.generateNewsletterHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/newsletter/export", s.exportNewsletterHandler).Methods(http.MethodPost, http.MethodOptions)

	// Archive operations
	api.HandleFunc("/archive/stats", s.archiveStatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/archive/{id}", s.archiveEntryHandler).Methods(http.MethodGet)

	// Status and configuration
	api.HandleFunc("/status", s.statusHandler).Methods(http.MethodGet)
	api.HandleFunc("/config", s.configHandler).Methods(http.MethodGet)

	return r
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
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

		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)))
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
