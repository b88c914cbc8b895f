package handler

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const readinessTimeout = 5 * time.Second

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Check names one readiness dependency.
type Check struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler creates a HealthHandler; readiness requires every check to pass.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every dependency and reports each one by name. Any
// failure turns the whole probe into a 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	report := map[string]string{"status": "ready"}
	var failed []error
	for _, c := range h.checks {
		if err := c.Pinger.Ping(ctx); err != nil {
			report[c.Name] = err.Error()
			failed = append(failed, err)
			continue
		}
		report[c.Name] = "ok"
	}

	if err := errors.Join(failed...); err != nil {
		report["status"] = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
