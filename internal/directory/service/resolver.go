package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cityline/internal/directory/models"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/sentinel"
)

var tracer = otel.Tracer("cityline/directory")

// Resolve picks the institution responsible for a location: an institution
// registered for the exact (province, district) wins, otherwise any
// institution in the province takes the complaint. With no match at all
// intake must fail; a complaint is never left unassigned.
//
// The complaint category is deliberately not part of the match. Routing is
// purely geographic; category-aware routing needs a coverage model the
// registry does not have yet.
func (s *Service) Resolve(ctx context.Context, province, district string) (*models.Institution, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "directory.Resolve", trace.WithAttributes(
		attribute.String("province", province),
		attribute.String("district", district),
	))
	defer span.End()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveResolve(start)
		}
	}()

	province = strings.TrimSpace(province)
	district = strings.TrimSpace(district)
	if province == "" || district == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "province and district are required")
	}

	inst, err := s.institutions.FindFirstInDistrict(ctx, province, district)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve institution")
	}

	inst, err = s.institutions.FindFirstInProvince(ctx, province)
	if err == nil {
		span.SetAttributes(attribute.Bool("province_fallback", true))
		if s.metrics != nil {
			s.metrics.ResolveFallbacks.Inc()
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "assignment fell back to province match",
				"province", province,
				"district", district,
				"institution_id", inst.ID.String(),
			)
		}
		return inst, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve institution")
	}

	return nil, dErrors.New(dErrors.CodeConflict, "no institution available for the given location")
}
