package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/salescast/internal/database"
	"github.com/aristath/salescast/internal/modules/runs"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves system monitoring endpoints
type SystemHandlers struct {
	db        *database.DB
	store     *runs.Store
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(db *database.DB, store *runs.Store, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:        db,
		store:     store,
		startTime: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// SystemStatus is the response of the status endpoint.
type SystemStatus struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	CPUPercent    float64        `json:"cpu_percent"`
	RAMPercent    float64        `json:"ram_percent"`
	Goroutines    int            `json:"goroutines"`
	RunsStored    int64          `json:"runs_stored"`
	Database      DatabaseStatus `json:"database"`
}

// DatabaseStatus summarizes the run database file.
type DatabaseStatus struct {
	SizeBytes    int64 `json:"size_bytes"`
	WALSizeBytes int64 `json:"wal_size_bytes"`
	PageCount    int64 `json:"page_count"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	status := SystemStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
	}

	if count, err := h.store.Count(r.Context()); err == nil {
		status.RunsStored = count
	} else {
		h.log.Warn().Err(err).Msg("Failed to count stored runs")
	}

	if stats, err := h.db.GetStats(); err == nil {
		status.Database = DatabaseStatus{
			SizeBytes:    stats.SizeBytes,
			WALSizeBytes: stats.WALSizeBytes,
			PageCount:    stats.PageCount,
		}
	} else {
		h.log.Warn().Err(err).Msg("Failed to read database stats")
	}

	h.writeJSON(w, status)
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a short interval (100ms) so the endpoint stays responsive while
// still providing a meaningful CPU reading.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
