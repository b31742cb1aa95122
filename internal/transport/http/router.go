// Package httptransport assembles the public HTTP surface: module routes,
// health probes, and the Prometheus endpoint. Module handlers carry their own
// middleware chains; this router only composes them.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar mounts a module's routes onto the shared router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether one dependency still answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFunc adapts a bare function to HealthChecker.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error { return f(ctx) }

// checkTimeout bounds each dependency probe so a hung dependency cannot hang
// the readiness endpoint.
const checkTimeout = 2 * time.Second

// Router composes the full route tree.
type Router struct {
	logger   *slog.Logger
	checks   map[string]HealthChecker
	handlers []Registrar
}

// New builds the router. checks maps dependency names onto their probes;
// handlers are the module route registrars.
func New(logger *slog.Logger, checks map[string]HealthChecker, handlers ...Registrar) http.Handler {
	rt := &Router{logger: logger, checks: checks, handlers: handlers}

	r := chi.NewRouter()
	for _, h := range rt.handlers {
		h.Register(r)
	}

	r.Get("/healthz", rt.handleLiveness)
	r.Get("/readyz", rt.handleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleLiveness answers 200 whenever the process is serving. Dependencies
// are not consulted; that is readiness.
func (rt *Router) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness probes every registered dependency and reports 503 when
// any of them fails.
func (rt *Router) handleReadiness(w http.ResponseWriter, r *http.Request) {
	type result struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	status := http.StatusOK
	results := make(map[string]result, len(rt.checks))
	for name, check := range rt.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := check.Health(ctx)
		cancel()

		if err != nil {
			status = http.StatusServiceUnavailable
			results[name] = result{Status: "failing", Error: err.Error()}
			rt.logger.WarnContext(r.Context(), "readiness check failed", "dependency", name, "error", err)
			continue
		}
		results[name] = result{Status: "ok"}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeHealth(w, status, map[string]any{
		"status": overall,
		"checks": results,
	})
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
