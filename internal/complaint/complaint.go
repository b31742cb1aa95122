// Package complaint implements the complaint lifecycle: intake with
// geographic routing and deadline assignment, public tracking, status and
// deadline updates by the handling institution, and forwarding to district
// departments.
package complaint

import (
	"log/slog"

	"cityline/internal/complaint/handler"
	"cityline/internal/complaint/metrics"
	"cityline/internal/complaint/service"
	"cityline/internal/platform/middleware"
)

// Service coordinates complaint operations across stores, the institution
// directory, and the notification dispatcher.
type Service = service.Service

// Handler wires the complaint HTTP endpoints to the service.
type Handler = handler.Handler

// Metrics holds the complaint Prometheus instruments.
type Metrics = metrics.Metrics

// NewService constructs the complaint service with required stores and the
// directory dependency.
func NewService(complaints service.ComplaintStore, forwardings service.ForwardingStore, directory service.Directory, opts ...service.Option) *Service {
	return service.New(complaints, forwardings, directory, opts...)
}

// NewHandler constructs an HTTP handler for the complaint routes.
func NewHandler(s *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return handler.New(s, logger, jwtValidator)
}

// NewMetrics registers and returns the complaint metrics.
func NewMetrics() *Metrics {
	return metrics.New()
}
