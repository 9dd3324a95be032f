package ranking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
)

// SnapshotPersister stores a finished snapshot.
type SnapshotPersister interface {
	Persist(snapshot *RankingSnapshot) (string, error)
}

// Handlers contains HTTP handlers for the ranking API.
type Handlers struct {
	log      zerolog.Logger
	pipeline *Pipeline
	store    SnapshotPersister
}

// NewHandlers creates ranking API handlers.
func NewHandlers(pipeline *Pipeline, store SnapshotPersister, log zerolog.Logger) *Handlers {
	return &Handlers{
		log:      log.With().Str("component", "ranking_handlers").Logger(),
		pipeline: pipeline,
		store:    store,
	}
}

// AnalyzeRequest is the body of POST /api/ranking/analyze.
// Custom weights override the named philosophy when present.
type AnalyzeRequest struct {
	Philosophy string                       `json:"philosophy"`
	Weights    map[domain.MetricKey]float64 `json:"weights,omitempty"`
	Records    []domain.FundamentalRecord   `json:"records"`
}

// HandleAnalyze runs the full pipeline over the posted records and
// persists the resulting snapshot.
// POST /api/ranking/analyze
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Records) == 0 {
		h.writeError(w, http.StatusBadRequest, "no records provided")
		return
	}

	profile, err := h.resolveProfile(&req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.pipeline.Rank(req.Records, profile, time.Now())
	if err != nil {
		if domain.IsConfigError(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Ranking failed")
		h.writeError(w, http.StatusInternalServerError, "ranking failed")
		return
	}

	if _, err := h.store.Persist(snapshot); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to persist snapshot")
		h.writeError(w, http.StatusInternalServerError, "failed to persist snapshot")
		return
	}

	h.log.Info().
		Str("snapshot_id", snapshot.SnapshotID).
		Str("philosophy", profile.Name).
		Int("ranked", len(snapshot.Entries)).
		Int("excluded", len(snapshot.Excluded)).
		Msg("Analysis complete")
	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandlePhilosophies lists the built-in weight profiles.
// GET /api/ranking/philosophies
func (h *Handlers) HandlePhilosophies(w http.ResponseWriter, r *http.Request) {
	profiles := make([]*PhilosophyProfile, 0)
	for _, name := range ProfileNames() {
		profiles = append(profiles, builtinProfiles[name])
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"philosophies": profiles,
	})
}

func (h *Handlers) resolveProfile(req *AnalyzeRequest) (*PhilosophyProfile, error) {
	if len(req.Weights) > 0 {
		name := req.Philosophy
		if name == "" {
			name = "custom"
		}
		return NewPhilosophyProfile(name, req.Weights)
	}
	if req.Philosophy == "" {
		return nil, domain.NewConfigError("philosophy", "philosophy or custom weights required")
	}
	return GetProfile(req.Philosophy)
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
