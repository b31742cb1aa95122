// Package service aggregates institution performance into ranked reports.
// Aggregation reads from a counting source (SQL or in-memory) and hides
// behind a short-lived cache; all rate arithmetic lives in the models
// package.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cityline/internal/report/metrics"
	"cityline/internal/report/models"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/requestcontext"
)

var tracer = otel.Tracer("cityline/report")

// Source produces raw per-institution counts for a submission window. A zero
// since means all-time.
type Source interface {
	InstitutionCounts(ctx context.Context, since time.Time) ([]models.InstitutionCounts, error)
}

// Cache stores finished reports keyed by timeframe. Get reports a miss with
// sentinel.ErrNotFound.
type Cache interface {
	Get(ctx context.Context, tf models.Timeframe) (*models.Report, error)
	Set(ctx context.Context, report *models.Report) error
}

// Service builds performance reports on demand.
type Service struct {
	source  Source
	cache   Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache puts a report cache in front of aggregation. Without one every
// request counts from the source.
func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service over the given counting source.
func New(source Source, opts ...Option) *Service {
	s := &Service{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate returns the performance report for the timeframe, serving from
// cache when a fresh enough copy exists. Cache failures degrade to a
// recount, never to an error.
func (s *Service) Aggregate(ctx context.Context, tf models.Timeframe) (*models.Report, error) {
	ctx, span := tracer.Start(ctx, "report.Aggregate", trace.WithAttributes(
		attribute.String("timeframe", string(tf)),
	))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tf)
		switch {
		case err == nil:
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			s.logWarn(ctx, "report cache read failed", "error", err)
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
	}

	now := requestcontext.Now(ctx)
	start := time.Now()
	counts, err := s.source.InstitutionCounts(ctx, tf.CutoffFrom(now))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate performance")
	}
	report := models.BuildReport(tf, now, counts)

	if s.metrics != nil {
		s.metrics.ObserveAggregate(start)
		s.metrics.ReportsGenerated.Inc()
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.logWarn(ctx, "report cache write failed", "error", err)
		}
	}
	return report, nil
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.WarnContext(ctx, msg, args...)
}
