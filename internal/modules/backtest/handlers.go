package backtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
)

// Handlers contains HTTP handlers for the backtest API.
type Handlers struct {
	log            zerolog.Logger
	validator      *Validator
	results        *Repository
	defaultHorizon int
	topN           int
}

// NewHandlers creates backtest API handlers.
func NewHandlers(validator *Validator, results *Repository, defaultHorizonMonths, topN int, log zerolog.Logger) *Handlers {
	return &Handlers{
		log:            log.With().Str("component", "backtest_handlers").Logger(),
		validator:      validator,
		results:        results,
		defaultHorizon: defaultHorizonMonths,
		topN:           topN,
	}
}

// HandleValidate validates one snapshot. Re-validation is idempotent and
// returns the stored result.
// POST /api/backtest/validate/{id}?horizon_months=6
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	horizon := h.defaultHorizon
	if raw := r.URL.Query().Get("horizon_months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "horizon_months must be a positive integer")
			return
		}
		horizon = parsed
	}

	result, err := h.validator.Validate(r.Context(), id, horizon, h.topN)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "snapshot not found")
		case errors.Is(err, domain.ErrNotEligible):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.log.Error().Err(err).Str("snapshot_id", id).Msg("Validation failed")
			h.writeError(w, http.StatusInternalServerError, "validation failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleResults lists stored validation results, newest first.
// GET /api/backtest/results
func (h *Handlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list results")
		h.writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// HandleReport aggregates stored results into a performance report.
// GET /api/backtest/report
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load results for report")
		h.writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	h.writeJSON(w, http.StatusOK, BuildReport(results))
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
