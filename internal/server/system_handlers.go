package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/swapjoy/matchd/internal/database"
)

// SystemHandlers serves process and host level status.
type SystemHandlers struct {
	log           zerolog.Logger
	marketplaceDB *database.DB
	cacheDB       *database.DB
	startedAt     time.Time
}

// NewSystemHandlers creates system status handlers.
func NewSystemHandlers(log zerolog.Logger, marketplaceDB, cacheDB *database.DB, startedAt time.Time) *SystemHandlers {
	return &SystemHandlers{
		log:           log.With().Str("component", "system").Logger(),
		marketplaceDB: marketplaceDB,
		cacheDB:       cacheDB,
		startedAt:     startedAt,
	}
}

// HandleSystemStatus returns CPU, memory and database statistics.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.getSystemStats()

	databases := map[string]interface{}{}
	for name, db := range map[string]*database.DB{
		"marketplace": h.marketplaceDB,
		"cache":       h.cacheDB,
	} {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("db", name).Msg("Failed to collect database stats")
			databases[name] = map[string]string{"error": err.Error()}
			continue
		}
		databases[name] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
		"uptime_s":       int64(time.Since(h.startedAt).Seconds()),
		"databases":      databases,
	})
}

// getSystemStats calculates CPU and RAM usage percentages.
// The 100ms CPU sampling interval keeps the endpoint fast enough for
// dashboard polling.
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

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
