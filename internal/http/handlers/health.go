package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	env     string
	started time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{env: env, started: time.Now()}
}

// HandleHealth processes GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"env":            h.env,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// HandleRoot serves the service banner at GET /.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "Bookwise Scheduling Assistant",
		"status":  "running",
	})
}
