package service

import (
	"context"
	"errors"
	"strings"

	"cityline/internal/complaint/models"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/email"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/requestcontext"
)

// TrackedComplaint is the public view of a complaint looked up by tracking
// number: the complaint itself plus display names resolved from the
// directory and the urgency derived at read time.
type TrackedComplaint struct {
	Complaint       *models.Complaint
	CitizenName     string
	InstitutionName string
	DepartmentName  string
	Urgency         *models.Urgency
}

// TrackByNumber looks a complaint up by its public tracking number. No
// authentication is required; the tracking number itself is the capability.
func (s *Service) TrackByNumber(ctx context.Context, trackingNumber string) (*TrackedComplaint, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tracking number is required")
	}

	c, err := s.complaints.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "complaint not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
	}

	tracked := &TrackedComplaint{
		Complaint: c,
		Urgency:   c.UrgencyAt(requestcontext.Now(ctx)),
	}
	if c.ContactEmail != "" {
		tracked.CitizenName = email.DisplayName(c.ContactEmail)
	}

	inst, err := s.directory.GetInstitution(ctx, c.AssignedTo)
	if err != nil {
		return nil, err
	}
	tracked.InstitutionName = inst.Name

	if c.AssignedDepartment != nil {
		dept, err := s.directory.GetDepartment(ctx, *c.AssignedDepartment)
		if err != nil {
			return nil, err
		}
		tracked.DepartmentName = dept.Name
	}

	return tracked, nil
}

func (s *Service) findComplaint(ctx context.Context, id domain.ComplaintID) (*models.Complaint, error) {
	c, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "complaint not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
	}
	return c, nil
}
