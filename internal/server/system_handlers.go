package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stockpulse/ranker/internal/database"
)

// SystemHandlers serves operational monitoring endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	startedAt time.Time
}

// NewSystemHandlers creates system monitoring handlers.
func NewSystemHandlers(db *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		db:        db,
		startedAt: time.Now(),
	}
}

// HandleHealth reports database, CPU and memory health.
// GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := h.db.Conn().Ping(); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		dbStatus = "error"
	}

	cpuPct, memPct := h.systemStats()

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(h.log, w, status, map[string]interface{}{
		"status":         dbStatus,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
	})
}

// systemStats samples CPU and RAM usage. A short interval keeps the
// endpoint responsive for pollers.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return firstOrZero(cpuPercent), 0
	}
	return firstOrZero(cpuPercent), memStat.UsedPercent
}

func firstOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[0]
}

func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
