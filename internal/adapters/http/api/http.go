// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/domain/model"
	"github.com/okian/biofitviz/internal/domain/palette"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Data computes the full dashboard payload.
	Data(ctx context.Context) (*geometry.Result, error)
	// Hulls computes only the cluster hulls.
	Hulls(ctx context.Context) ([]model.Hull, error)
	// WorkoutDescriptions lists workouts in source order.
	WorkoutDescriptions(ctx context.Context) ([]model.Description, error)
	// Palette returns the cluster palette, nil before the data is loaded.
	Palette() *palette.Palette
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	dataHandler    *DataHandler
	previewHandler *PreviewHandler
	corsOrigins    []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the allowed origins; "*" allows any.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = append([]string(nil), origins...)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		dataHandler:    NewDataHandler(deps),
		previewHandler: NewPreviewHandler(deps),
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/data", MetricsMiddleware(s.dataHandler.HandleData, "data"))
	mux.HandleFunc("/api/hulls", MetricsMiddleware(s.dataHandler.HandleHulls, "hulls"))
	mux.HandleFunc("/api/workout_descriptions", MetricsMiddleware(s.dataHandler.HandleWorkouts, "workout_descriptions"))
	mux.HandleFunc("/api/preview", MetricsMiddleware(s.previewHandler.HandlePreview, "preview"))
}

// Handler wraps the mux with request ids and CORS.
func (s *Server) Handler(next http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(next, s.corsOrigins))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a dependency failure to a response.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrDataShape) {
		writeError(w, http.StatusInternalServerError, "data_shape", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
