package api

import (
	"net/http"
)

// DataHandler serves the geometry payloads.
type DataHandler struct {
	deps Dependencies
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps Dependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

// HandleData handles GET /api/data requests.
func (h *DataHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.Data(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHulls handles GET /api/hulls requests.
func (h *DataHandler) HandleHulls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	hulls, err := h.deps.Hulls(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hulls)
}

// HandleWorkouts handles GET /api/workout_descriptions requests.
func (h *DataHandler) HandleWorkouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ws, err := h.deps.WorkoutDescriptions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}
