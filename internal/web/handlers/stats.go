package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/emoji-mirror/internal/database"
	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

// StatsHandler tracks per-category classification counters and serves the
// stats endpoint.
type StatsHandler struct {
	mu       sync.RWMutex
	counts   map[expression.Category]int64
	frames   int64
	started  time.Time
	baseline *expression.BaselineStore
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(baseline *expression.BaselineStore) *StatsHandler {
	return &StatsHandler{
		counts:   make(map[expression.Category]int64),
		started:  time.Now(),
		baseline: baseline,
	}
}

// RecordClassification bumps the counter for a classified category.
func (h *StatsHandler) RecordClassification(category expression.Category) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[category]++
	h.frames++
}

// StatsResponse represents the statistics response
type StatsResponse struct {
	FramesClassified int64                         `json:"frames_classified"`
	Categories       map[expression.Category]int64 `json:"categories"`
	Calibrated       bool                          `json:"calibrated"`
	UptimeSeconds    int64                         `json:"uptime_seconds"`
	StorageBackend   string                        `json:"storage_backend,omitempty"`
	StoredProfiles   int                           `json:"stored_profiles"`
	HNSWIndexed      int                           `json:"hnsw_indexed"`
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	counts := make(map[expression.Category]int64, len(h.counts))
	for k, v := range h.counts {
		counts[k] = v
	}
	frames := h.frames
	h.mu.RUnlock()

	resp := StatsResponse{
		FramesClassified: frames,
		Categories:       counts,
		Calibrated:       h.baseline.Calibrated(),
		UptimeSeconds:    int64(time.Since(h.started).Seconds()),
	}

	if database.IsInitialized() {
		resp.StorageBackend = database.BackendName()
		if reader, err := database.GetProfileReader(r.Context()); err == nil {
			if count, err := reader.Count(r.Context()); err == nil {
				resp.StoredProfiles = count
			} else {
				log.Printf("Failed to count profiles: %v", err)
			}
		}
		if rebuilder := database.GetProfileHNSWRebuilder(); rebuilder != nil {
			resp.HNSWIndexed = rebuilder.HNSWCount()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
