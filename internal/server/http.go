// Package server exposes the validation engine over HTTP (chi) and a
// gRPC health endpoint for orchestrators.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/export"
	"github.com/rajiviyer/medical-doc-extractor/internal/ingest"
	"github.com/rajiviyer/medical-doc-extractor/internal/pipeline"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
)

// Server wires HTTP routes to the pipeline, repositories, and exporter.
type Server struct {
	logger    *slog.Logger
	processor *pipeline.Processor
	ingestor  ingest.Ingestor
	docs      repository.DocumentRepository
	runs      repository.RunRepository
	exporter  *export.Service
}

func New(
	logger *slog.Logger,
	processor *pipeline.Processor,
	ingestor ingest.Ingestor,
	docs repository.DocumentRepository,
	runs repository.RunRepository,
	exporter *export.Service,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		processor: processor,
		ingestor:  ingestor,
		docs:      docs,
		runs:      runs,
		exporter:  exporter,
	}
}

// Router builds the chi mux with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/classify", s.handleClassify)

		r.Post("/documents", s.handleIngest)
		r.Get("/documents/{documentID}", s.handleGetDocument)
		r.Post("/documents/{documentID}/process", s.handleProcess)
		r.Get("/documents/{documentID}/runs", s.handleListRuns)

		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/runs/{runID}/export", s.handleExportRun)
	})
	return r
}

// requestLogger tags each request with an id, records metrics, and logs
// one line per request in the slog dotted-event style.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-ID", reqID)

		ctx := common.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		httpRequests.WithLabelValues(route, fmt.Sprintf("%dxx", status/100)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		s.logger.Info("http.request",
			"req_id", reqID,
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
