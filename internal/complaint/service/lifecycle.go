package service

import (
	"context"
	"errors"
	"time"

	"cityline/internal/audit"
	"cityline/internal/complaint/models"
	"cityline/internal/notify"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/requestcontext"
)

// UpdateResult carries the updated complaint and the enqueue outcome of any
// notification the transition produced.
type UpdateResult struct {
	Complaint    *models.Complaint
	Notification NotificationStatus
}

// UpdateStatus moves a complaint to the given status on behalf of the
// handling institution. Entering RESOLVED stamps the resolution time exactly
// once; re-resolving keeps the original instant but still notifies the
// citizen. Leaving RESOLVED clears it. A new deadline may ride along with
// the status change and must lie in the future.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id domain.ComplaintID, next models.Status, newDeadline *time.Time) (*UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "complaint.UpdateStatus")
	defer span.End()

	instID, ok := actor.AsInstitution()
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the handling institution can update a complaint")
	}

	c, err := s.loadOwned(ctx, id, instID)
	if err != nil {
		return nil, err
	}

	if err := c.CanUpdateStatus(next); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	now := requestcontext.Now(ctx)
	if newDeadline != nil {
		if err := c.CanSetDeadline(*newDeadline, now); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
	}

	previous := c.Status
	c.ApplyStatus(next, now)
	if newDeadline != nil {
		c.ApplyDeadline(*newDeadline)
	}

	if err := s.saveComplaint(ctx, c); err != nil {
		return nil, err
	}

	s.logAudit(ctx, statusEvent(previous, next),
		"complaint_id", c.ID.String(),
		"tracking_number", c.TrackingNumber,
		"from", previous.String(),
		"to", next.String(),
	)
	if s.metrics != nil {
		s.metrics.StatusUpdates.Inc()
		if next == models.StatusResolved && previous != models.StatusResolved {
			s.metrics.ComplaintsResolved.Inc()
		}
	}

	notification := NotificationSkipped
	if next == models.StatusResolved {
		notification = s.dispatch(ctx, notify.Notification{
			Kind:      notify.KindResolved,
			Recipient: notify.Recipient{Email: c.ContactEmail, Phone: c.ContactPhone},
			Subject:   c.TrackingNumber,
			Payload: map[string]string{
				"title": c.Title,
			},
		})
	}

	return &UpdateResult{Complaint: c, Notification: notification}, nil
}

// UpdateDeadline replaces the resolution deadline on behalf of the handling
// institution. The new deadline must lie strictly in the future; the citizen
// is notified of the change.
func (s *Service) UpdateDeadline(ctx context.Context, actor domain.Actor, id domain.ComplaintID, newDeadline time.Time) (*UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "complaint.UpdateDeadline")
	defer span.End()

	instID, ok := actor.AsInstitution()
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the handling institution can update a complaint")
	}

	c, err := s.loadOwned(ctx, id, instID)
	if err != nil {
		return nil, err
	}

	if err := c.CanSetDeadline(newDeadline, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	c.ApplyDeadline(newDeadline)

	if err := s.saveComplaint(ctx, c); err != nil {
		return nil, err
	}

	s.logAudit(ctx, string(audit.EventDeadlineUpdated),
		"complaint_id", c.ID.String(),
		"tracking_number", c.TrackingNumber,
		"deadline", newDeadline.Format(time.RFC3339),
	)

	notification := s.dispatch(ctx, notify.Notification{
		Kind:      notify.KindDeadlineSet,
		Recipient: notify.Recipient{Email: c.ContactEmail, Phone: c.ContactPhone},
		Subject:   c.TrackingNumber,
		Payload: map[string]string{
			"title":    c.Title,
			"deadline": c.Deadline.Format(time.RFC3339),
		},
	})

	return &UpdateResult{Complaint: c, Notification: notification}, nil
}

// loadOwned fetches a complaint and verifies the institution handles it. A
// complaint handled by another institution reads exactly like a missing one
// so existence never leaks across institutions.
func (s *Service) loadOwned(ctx context.Context, id domain.ComplaintID, instID domain.InstitutionID) (*models.Complaint, error) {
	c, err := s.findComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(instID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "complaint not found")
	}
	return c, nil
}

// saveComplaint persists an updated complaint, translating store sentinels
// into domain error codes.
func (s *Service) saveComplaint(ctx context.Context, c *models.Complaint) error {
	err := s.complaints.Update(ctx, c)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "complaint was modified concurrently")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "complaint not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update complaint")
	}
}

func statusEvent(previous, next models.Status) string {
	switch {
	case next == models.StatusResolved:
		return string(audit.EventComplaintResolved)
	case previous == models.StatusResolved:
		return string(audit.EventComplaintReopened)
	default:
		return string(audit.EventComplaintStatusChanged)
	}
}
