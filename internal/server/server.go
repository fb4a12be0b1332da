// Package server exposes the ingestion pipeline over a single HTTP
// endpoint. Malformed request input is the only condition that yields
// an error envelope; an empty-but-valid history is a success.
package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/valtlai/agent-history/internal"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Server serves conversation history over HTTP.
type Server struct {
	aggregator *internal.Aggregator
}

// New creates a Server wired against the given configuration.
func New(cfg internal.Config) *Server {
	return &Server{aggregator: internal.NewAggregator(cfg)}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/history", s.handleHistory)
	return r
}

type historyRequest struct {
	ProjectPath string `json:"projectPath"`
}

type historyResponse struct {
	Success bool                    `json:"success"`
	History *internal.HistoryResult `json:"history"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectPath == "" {
		writeError(w, http.StatusBadRequest, "projectPath is required")
		return
	}
	if !filepath.IsAbs(req.ProjectPath) {
		writeError(w, http.StatusBadRequest, "projectPath must be absolute")
		return
	}

	history := s.aggregator.GetHistory(r.Context(), req.ProjectPath)
	writeJSON(w, http.StatusOK, historyResponse{Success: true, History: history})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.LogError("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
