package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marketsift/sift/internal/store"
	"github.com/marketsift/sift/pkg/logger"
)

// RunStore is the slice of the run repository the handlers read from.
type RunStore interface {
	LatestRun(ctx context.Context, model string) (*store.Run, error)
	GetRun(ctx context.Context, id int64) (*store.Run, error)
}

// RunsHandler serves stored screening runs.
type RunsHandler struct {
	runs   RunStore
	logger *logger.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runs RunStore, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		runs:   runs,
		logger: log,
	}
}

// GetLatest returns the most recent run for a model
// GET /api/runs/latest?model=factor
func (h *RunsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	model := r.URL.Query().Get("model")
	if model == "" {
		respondError(w, http.StatusBadRequest, "model query parameter is required")
		return
	}

	run, err := h.runs.LatestRun(ctx, model)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no runs stored for model "+model)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// GetByID returns a stored run
// GET /api/runs/{id}
func (h *RunsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "run id must be an integer")
		return
	}

	run, err := h.runs.GetRun(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
