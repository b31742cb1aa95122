// Package forwarding persists the append-only escalation records of a
// complaint.
package forwarding

import (
	"context"
	"sync"

	"cityline/internal/complaint/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
)

// InMemory keeps forwarding records per complaint in append order. Records are
// never mutated or deleted once written.
type InMemory struct {
	mu      sync.RWMutex
	records map[domain.ComplaintID][]*models.ForwardingRecord
	byID    map[domain.ForwardingID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[domain.ComplaintID][]*models.ForwardingRecord),
		byID:    make(map[domain.ForwardingID]struct{}),
	}
}

func (s *InMemory) Append(_ context.Context, rec *models.ForwardingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *rec
	s.records[rec.ComplaintID] = append(s.records[rec.ComplaintID], &cp)
	s.byID[rec.ID] = struct{}{}
	return nil
}

// ListByComplaint returns the complaint's records newest first. Appends are
// chronological, so newest-first is the reverse of insertion order.
func (s *InMemory) ListByComplaint(_ context.Context, complaintID domain.ComplaintID) ([]*models.ForwardingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[complaintID]
	out := make([]*models.ForwardingRecord, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		out = append(out, &cp)
	}
	return out, nil
}
