// Package directory manages the registry of institutions and district
// departments and resolves which institution owns a newly filed complaint.
package directory

import (
	"log/slog"

	"cityline/internal/directory/handler"
	"cityline/internal/directory/metrics"
	"cityline/internal/directory/service"
	"cityline/internal/platform/middleware"
)

// Service exposes institution and department management plus geographic
// assignment resolution.
type Service = service.Service

// Handler wires the admin HTTP endpoints to the directory service.
type Handler = handler.Handler

// Metrics holds the directory Prometheus instruments.
type Metrics = metrics.Metrics

// NewService constructs the directory service with required stores.
func NewService(institutions service.InstitutionStore, departments service.DepartmentStore, opts ...service.Option) *Service {
	return service.New(institutions, departments, opts...)
}

// NewHandler constructs an HTTP handler for the admin-facing directory routes.
func NewHandler(s *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return handler.New(s, logger, jwtValidator)
}

// NewMetrics registers and returns the directory metrics.
func NewMetrics() *Metrics {
	return metrics.New()
}
