package http

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bordereau/pkg/contracts"
)

// HubStats exposes the WebSocket hub counters to the health endpoint.
type HubStats interface {
	Stats() map[string]interface{}
}

// HealthHandler answers health and version probes.
type HealthHandler struct {
	logger  *slog.Logger
	hub     HubStats
	started time.Time
}

// NewHealthHandler creates the health handler. hub may be nil when the
// WebSocket hub is not running.
func NewHealthHandler(hub HubStats, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		logger:  logger.With(slog.String("handler", "health")),
		hub:     hub,
		started: time.Now(),
	}
}

// Routes returns the chi router for /api/health.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	return r
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":     "healthy",
		"version":    contracts.Version,
		"uptime":     time.Since(h.started).String(),
		"goroutines": runtime.NumGoroutine(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if h.hub != nil {
		body["websocket"] = h.hub.Stats()
	}
	render.JSON(w, r, body)
}

// ReadinessCheck handles GET /api/health/ready.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ready"})
}

// LivenessCheck handles GET /api/health/live.
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"version":     contracts.Version,
		"api_version": contracts.APIVersion,
		"build_time":  contracts.BuildTime,
		"git_commit":  contracts.GitCommit,
		"info":        contracts.VersionInfo(),
	})
}
