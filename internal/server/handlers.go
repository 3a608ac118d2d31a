package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/state"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/watermark"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

const defaultRunLimit = 20

// Handlers provides HTTP handlers for the status API.
type Handlers struct {
	status Status
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(status Status, logger *slog.Logger) *Handlers {
	return &Handlers{status: status, logger: logger}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Destination string `json:"destination"`
}

// RunsResponse is the body of GET /api/runs.
type RunsResponse struct {
	Runs  []*core.Run `json:"runs"`
	Count int         `json:"count"`
}

// CoverageResponse is the body of GET /api/coverage.
type CoverageResponse struct {
	Upstream    string            `json:"upstream"`
	Destination string            `json:"destination"`
	Coverage    calendar.Coverage `json:"coverage"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness without touching the warehouse.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Environment: h.status.Environment(),
		Destination: h.status.Destination(),
	})
}

// ListRuns returns recent runs, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.status.Runs(limit)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	if runs == nil {
		runs = []*core.Run{}
	}
	h.writeJSON(w, http.StatusOK, RunsResponse{Runs: runs, Count: len(runs)})
}

// LatestRun returns the latest run of the ?env= environment (default: the
// server's environment).
func (h *Handlers) LatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.status.LatestRun(r.URL.Query().Get("env"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// GetRun returns one run by ID.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.status.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// Coverage reads the upstream watermark and reports planned coverage.
func (h *Handlers) Coverage(w http.ResponseWriter, r *http.Request) {
	cov, err := h.status.Coverage(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CoverageResponse{
		Upstream:    h.status.Upstream(),
		Destination: h.status.Destination(),
		Coverage:    cov,
	})
}

func (h *Handlers) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrRunNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, watermark.ErrUpstreamUnavailable):
		h.writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("status request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}
