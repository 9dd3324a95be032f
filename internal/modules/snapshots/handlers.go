package snapshots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
)

// Handlers contains HTTP handlers for the snapshot API.
type Handlers struct {
	log            zerolog.Logger
	repo           *Repository
	defaultHorizon int
}

// NewHandlers creates snapshot API handlers.
func NewHandlers(repo *Repository, defaultHorizonMonths int, log zerolog.Logger) *Handlers {
	return &Handlers{
		log:            log.With().Str("component", "snapshot_handlers").Logger(),
		repo:           repo,
		defaultHorizon: defaultHorizonMonths,
	}
}

// HandleList lists stored snapshots, newest first.
// GET /api/snapshots
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	metas, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list snapshots")
		h.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": metas,
		"count":     len(metas),
	})
}

// HandleGet returns the raw persisted snapshot document.
// GET /api/snapshots/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.repo.GetDocument(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		h.log.Error().Err(err).Str("snapshot_id", id).Msg("Failed to load snapshot")
		h.writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// HandleEligible lists snapshots old enough to validate.
// GET /api/snapshots/eligible?horizon_months=6
func (h *Handlers) HandleEligible(w http.ResponseWriter, r *http.Request) {
	horizon := h.defaultHorizon
	if raw := r.URL.Query().Get("horizon_months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "horizon_months must be a positive integer")
			return
		}
		horizon = parsed
	}

	metas, err := h.repo.ListEligibleForValidation(time.Now(), horizon)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list eligible snapshots")
		h.writeError(w, http.StatusInternalServerError, "failed to list eligible snapshots")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"horizon_months": horizon,
		"snapshots":      metas,
		"count":          len(metas),
	})
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
