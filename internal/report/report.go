// Package report aggregates complaint handling performance per institution
// and serves the ranked result to authenticated readers.
package report

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cityline/internal/platform/middleware"
	"cityline/internal/report/cache"
	"cityline/internal/report/handler"
	"cityline/internal/report/metrics"
	"cityline/internal/report/service"
)

// Service builds performance reports from a counting source.
type Service = service.Service

// Handler wires the report HTTP endpoint to the service.
type Handler = handler.Handler

// Metrics holds the report Prometheus instruments.
type Metrics = metrics.Metrics

// NewService constructs the report service over the given source.
func NewService(source service.Source, opts ...service.Option) *Service {
	return service.New(source, opts...)
}

// NewHandler constructs an HTTP handler for the report routes.
func NewHandler(s *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return handler.New(s, logger, jwtValidator)
}

// NewMetrics registers and returns the report metrics.
func NewMetrics() *Metrics {
	return metrics.New()
}

// NewRedisCache constructs the TTL cache used in front of aggregation.
func NewRedisCache(client *redis.Client, ttl time.Duration) service.Cache {
	return cache.NewRedis(client, ttl)
}
