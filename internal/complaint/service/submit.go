package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cityline/internal/audit"
	"cityline/internal/complaint/deadline"
	"cityline/internal/complaint/models"
	"cityline/internal/notify"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/requestcontext"
)

var tracer = otel.Tracer("cityline/complaint")

// trackingAttempts bounds the retries when a freshly generated tracking
// number collides with an existing row. With a 36^6 suffix space collisions
// are vanishingly rare; three attempts is already generous.
const trackingAttempts = 3

type SubmitParams struct {
	Title        string
	Description  string
	Category     string
	Province     string
	District     string
	ContactEmail string
	ContactPhone string
}

// SubmitResult carries the stored complaint plus the routing outcome the
// citizen sees in the confirmation.
type SubmitResult struct {
	Complaint       *models.Complaint
	InstitutionName string
	Notification    NotificationStatus
}

// Submit files a new complaint: it routes the location to an institution,
// derives the resolution deadline from the category, and persists the
// complaint under a fresh tracking number. Routing failure aborts the
// submission; a complaint is never stored unassigned.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, params SubmitParams) (*SubmitResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "complaint.Submit", trace.WithAttributes(
		attribute.String("category", params.Category),
		attribute.String("district", params.District),
	))
	defer span.End()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSubmit(start)
		}
	}()

	citizenID, ok := actor.AsCitizen()
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "only citizens can submit complaints")
	}

	category, err := models.ParseCategory(params.Category)
	if err != nil {
		return nil, err
	}

	inst, err := s.directory.Resolve(ctx, params.Province, params.District)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	resolveBy := deadline.Compute(category, now)

	var c *models.Complaint
	for attempt := 0; attempt < trackingAttempts; attempt++ {
		trackingNumber, err := models.NewTrackingNumber(now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate tracking number")
		}

		candidate, err := models.NewComplaint(models.NewComplaintParams{
			ID:             domain.NewComplaintID(),
			TrackingNumber: trackingNumber,
			Title:          params.Title,
			Description:    params.Description,
			Category:       category,
			Province:       params.Province,
			District:       params.District,
			CitizenID:      citizenID,
			ContactEmail:   params.ContactEmail,
			ContactPhone:   params.ContactPhone,
			AssignedTo:     inst.ID,
			SubmittedAt:    now,
			Deadline:       resolveBy,
		})
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil, err
		}

		err = s.complaints.Create(ctx, candidate)
		if err == nil {
			c = candidate
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store complaint")
		}
		// Tracking number collision: regenerate and try again.
	}
	if c == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to allocate a unique tracking number")
	}

	span.SetAttributes(attribute.String("tracking_number", c.TrackingNumber))
	s.logAudit(ctx, string(audit.EventComplaintSubmitted),
		"complaint_id", c.ID.String(),
		"tracking_number", c.TrackingNumber,
		"institution_id", inst.ID.String(),
		"category", string(c.Category),
		"district", c.District,
	)
	if s.metrics != nil {
		s.metrics.ComplaintsSubmitted.Inc()
	}

	notification := s.dispatch(ctx, notify.Notification{
		Kind:      notify.KindSubmitted,
		Recipient: notify.Recipient{Email: c.ContactEmail, Phone: c.ContactPhone},
		Subject:   c.TrackingNumber,
		Payload: map[string]string{
			"title":       c.Title,
			"institution": inst.Name,
			"deadline":    c.Deadline.Format(time.RFC3339),
		},
	})

	return &SubmitResult{
		Complaint:       c,
		InstitutionName: inst.Name,
		Notification:    notification,
	}, nil
}
