package handler

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	ready  func() bool
	checks map[string]CheckFunc
}

// NewHealthHandler creates a new HealthHandler. ready reports whether the
// ledger has been loaded; checks are run on every readiness request.
func NewHealthHandler(ready func() bool, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		ready:  ready,
		checks: checks,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.ready != nil && !h.ready() {
		writeError(w, http.StatusServiceUnavailable, "ledger not loaded", "")
		return
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{"status": "ready", "ledger": "ok"}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, name+" unhealthy", err.Error())
			return
		}
		status[name] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
