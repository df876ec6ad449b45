// internal/server/server.go
//
// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	stderrors "worthcheck/internal/common/errors"
	"worthcheck/internal/common/logger"
	"worthcheck/internal/pipeline"
)

// Analyzer is the part of the pipeline the server needs.
type Analyzer interface {
	Analyze(ctx context.Context, req *pipeline.Request) (*pipeline.Report, error)
}

type Server struct {
	router   *mux.Router
	analyzer Analyzer
	logger   logger.Logger
}

func New(analyzer Analyzer, log logger.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		analyzer: analyzer,
		logger:   log.WithFields(map[string]interface{}{"component": "http_server"}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestID)
	s.router.HandleFunc("/api/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}
	if req.VideoID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "videoId is required",
		})
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), &req)
	if err != nil {
		s.writeError(w, req.VideoID, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeError(w http.ResponseWriter, videoID string, err error) {
	status := http.StatusInternalServerError
	switch stderrors.CodeOf(err) {
	case stderrors.ErrCodeGatewayTimeout:
		status = http.StatusGatewayTimeout
	case stderrors.ErrCodeGatewayRequestFailed:
		status = http.StatusBadGateway
	case stderrors.ErrCodeExtractionFailed,
		stderrors.ErrCodeRepairFailed,
		stderrors.ErrCodeSchemaMismatch,
		stderrors.ErrCodeContinuationExhausted:
		status = http.StatusUnprocessableEntity
	}

	s.logger.WithError(err).Error("request failed", map[string]interface{}{
		"videoId": videoID,
		"status":  status,
	})

	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		writeJSON(w, status, stdErr)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
