package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"cityline/internal/audit"
	"cityline/internal/complaint/models"
	dirmodels "cityline/internal/directory/models"
	"cityline/internal/notify"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/tx"
	"cityline/pkg/requestcontext"
)

type ForwardParams struct {
	DepartmentID domain.DepartmentID
	Note         string
}

// ForwardResult carries the recorded hand-off and the complaint as it stands
// after it.
type ForwardResult struct {
	Record       *models.ForwardingRecord
	Complaint    *models.Complaint
	Notification NotificationStatus
}

// Forward hands a complaint to a district department. The forwarding record,
// the department assignment, and the move to IN_PROGRESS are written in one
// transaction; either all three land or none does. Forwarding a resolved
// complaint reopens it.
//
// The target department must serve the complaint's district. Cross-district
// hand-offs are rejected before anything is written.
func (s *Service) Forward(ctx context.Context, actor domain.Actor, id domain.ComplaintID, params ForwardParams) (*ForwardResult, error) {
	ctx, span := tracer.Start(ctx, "complaint.Forward")
	defer span.End()

	instID, ok := actor.AsInstitution()
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the handling institution can forward a complaint")
	}

	var (
		c      *models.Complaint
		record *models.ForwardingRecord
		dept   *dirmodels.DistrictDepartment
	)
	err := tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		c, err = s.loadOwned(ctx, id, instID)
		if err != nil {
			return err
		}

		dept, err = s.directory.GetDepartment(ctx, params.DepartmentID)
		if err != nil {
			return err
		}
		if !dept.SameDistrict(c.District) {
			return dErrors.New(dErrors.CodeValidation, "department does not serve the complaint's district")
		}

		record, err = models.NewForwardingRecord(
			domain.NewForwardingID(),
			c.ID,
			instID,
			dept.ID,
			params.Note,
			requestcontext.Now(ctx),
		)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}

		if err := s.forwardings.Append(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record forwarding")
		}
		c.ApplyForward(dept.ID)
		return s.saveComplaint(ctx, c)
	})
	if err != nil {
		s.auditForwardRejected(ctx, id, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("department_id", dept.ID.String()))
	s.logAudit(ctx, string(audit.EventComplaintForwarded),
		"complaint_id", c.ID.String(),
		"tracking_number", c.TrackingNumber,
		"department_id", dept.ID.String(),
		"reason", record.Note,
	)
	if s.metrics != nil {
		s.metrics.ComplaintsForwarded.Inc()
	}

	notification := s.dispatch(ctx, notify.Notification{
		Kind:      notify.KindForwarded,
		Recipient: notify.Recipient{Email: dept.ContactEmail, Phone: dept.ContactPhone},
		Subject:   c.TrackingNumber,
		Payload: map[string]string{
			"title":      c.Title,
			"department": dept.Name,
			"note":       record.Note,
		},
	})

	return &ForwardResult{
		Record:       record,
		Complaint:    c,
		Notification: notification,
	}, nil
}

// ListForwardings returns a complaint's forwarding history, newest hand-off
// first. Only the handling institution and the citizen who filed the
// complaint may read it; anyone else learns nothing, not even that the
// complaint exists.
func (s *Service) ListForwardings(ctx context.Context, actor domain.Actor, id domain.ComplaintID) ([]*models.ForwardingRecord, error) {
	c, err := s.findComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewForwardings(c, actor) {
		return nil, dErrors.New(dErrors.CodeNotFound, "complaint not found")
	}

	records, err := s.forwardings.ListByComplaint(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list forwardings")
	}
	return records, nil
}

func canViewForwardings(c *models.Complaint, actor domain.Actor) bool {
	if instID, ok := actor.AsInstitution(); ok {
		return c.IsOwnedBy(instID)
	}
	if citizenID, ok := actor.AsCitizen(); ok {
		return c.CitizenID == citizenID
	}
	return false
}

// auditForwardRejected records denied hand-off attempts as security events.
// Only domain rejections are recorded; infrastructure failures stay out of
// the audit trail.
func (s *Service) auditForwardRejected(ctx context.Context, id domain.ComplaintID, err error) {
	code := dErrors.CodeOf(err)
	if code != dErrors.CodeNotFound && code != dErrors.CodeValidation {
		return
	}
	s.logAudit(ctx, string(audit.EventForwardRejected),
		"complaint_id", id.String(),
		"reason", dErrors.MessageOf(err),
	)
	if s.metrics != nil {
		s.metrics.ForwardsRejected.Inc()
	}
}
