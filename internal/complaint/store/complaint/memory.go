// Package complaint persists complaints: an in-memory implementation for
// tests and dependency-free runs, and a postgres implementation for
// production.
package complaint

import (
	"context"
	"sort"
	"sync"
	"time"

	"cityline/internal/complaint/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
)

// InMemory keeps complaints in mutex-guarded maps. Tracking number uniqueness
// and optimistic version checks behave exactly like the postgres store.
type InMemory struct {
	mu         sync.RWMutex
	complaints map[domain.ComplaintID]*models.Complaint
	byTracking map[string]domain.ComplaintID
}

func NewInMemory() *InMemory {
	return &InMemory{
		complaints: make(map[domain.ComplaintID]*models.Complaint),
		byTracking: make(map[string]domain.ComplaintID),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.complaints[c.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, taken := s.byTracking[c.TrackingNumber]; taken {
		return sentinel.ErrConflict
	}

	s.complaints[c.ID] = clone(c)
	s.byTracking[c.TrackingNumber] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ComplaintID) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.complaints[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemory) FindByTrackingNumber(_ context.Context, trackingNumber string) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTracking[trackingNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.complaints[id]), nil
}

// Update persists the complaint when its version matches the stored one and
// bumps the version on both the stored copy and the caller's struct. A stale
// version is a conflict: the caller read, someone else wrote.
func (s *InMemory) Update(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.complaints[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Version != c.Version {
		return sentinel.ErrConflict
	}

	next := clone(c)
	next.Version++
	s.complaints[c.ID] = next
	c.Version = next.Version
	return nil
}

// ListSubmittedSince returns complaints with SubmittedAt at or after since,
// oldest first. A zero since returns everything. The report memory source
// reads through this.
func (s *InMemory) ListSubmittedSince(_ context.Context, since time.Time) ([]*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Complaint
	for _, c := range s.complaints {
		if !since.IsZero() && c.SubmittedAt.Before(since) {
			continue
		}
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// clone deep-copies a complaint so callers never share pointers with the
// store.
func clone(c *models.Complaint) *models.Complaint {
	out := *c
	if c.AssignedDepartment != nil {
		d := *c.AssignedDepartment
		out.AssignedDepartment = &d
	}
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		out.ResolvedAt = &t
	}
	return &out
}
