package api

import (
	"net/http"
	"time"
)

const healthVersion = "1.0.0"

// HealthCheck reports server liveness and whether a dataset snapshot has
// been loaded.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	loadedAt := h.service.LoadedAt()
	status := "healthy"
	if loadedAt.IsZero() {
		status = "degraded"
	}

	body := map[string]interface{}{
		"status":  status,
		"version": healthVersion,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	}
	if !loadedAt.IsZero() {
		body["snapshot_loaded_at"] = loadedAt
	}
	respondJSON(w, http.StatusOK, body)
}
