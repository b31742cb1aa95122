package performance

import (
	"context"
	"time"

	complaintmodels "cityline/internal/complaint/models"
	dirmodels "cityline/internal/directory/models"
	"cityline/internal/report/models"
	"cityline/pkg/domain"
)

// InstitutionLister is the slice of the directory store the in-memory source
// needs. The directory module's stores satisfy it.
type InstitutionLister interface {
	List(ctx context.Context) ([]*dirmodels.Institution, error)
}

// ComplaintLister is the slice of the complaint store the in-memory source
// needs. The complaint module's in-memory store satisfies it.
type ComplaintLister interface {
	ListSubmittedSince(ctx context.Context, since time.Time) ([]*complaintmodels.Complaint, error)
}

// InMemory recounts performance from the same stores the complaint lifecycle
// writes, so memory deployments report without a second data path.
type InMemory struct {
	institutions InstitutionLister
	complaints   ComplaintLister
}

func NewInMemory(institutions InstitutionLister, complaints ComplaintLister) *InMemory {
	return &InMemory{institutions: institutions, complaints: complaints}
}

// InstitutionCounts tallies complaints submitted at or after since per
// institution. Every registered institution appears even with no complaints
// in the window.
func (s *InMemory) InstitutionCounts(ctx context.Context, since time.Time) ([]models.InstitutionCounts, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListSubmittedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	byInstitution := make(map[domain.InstitutionID]*models.InstitutionCounts, len(institutions))
	counts := make([]models.InstitutionCounts, len(institutions))
	for i, inst := range institutions {
		counts[i] = models.InstitutionCounts{
			InstitutionID:   inst.ID,
			InstitutionName: inst.Name,
		}
		byInstitution[inst.ID] = &counts[i]
	}

	for _, c := range complaints {
		row, ok := byInstitution[c.AssignedTo]
		if !ok {
			// Assignment to an unregistered institution cannot happen through
			// intake; skip rather than fabricate a row.
			continue
		}
		row.Total++
		if c.Status != complaintmodels.StatusResolved || c.ResolvedAt == nil {
			continue
		}
		row.Resolved++
		if c.ResolvedOnTime() {
			row.OnTime++
		}
		row.ResolutionDays += c.ResolvedAt.Sub(c.SubmittedAt).Hours() / 24
	}
	return counts, nil
}
