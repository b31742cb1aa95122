package institution

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cityline/internal/directory/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
)

// InMemory is a map-backed institution store for tests and dependency-free
// runs. Lookup semantics mirror the postgres store: names are unique
// case-insensitively, geographic matches are case-insensitive, and "first"
// means oldest registration.
type InMemory struct {
	mu           sync.RWMutex
	institutions map[domain.InstitutionID]*models.Institution
}

func NewInMemory() *InMemory {
	return &InMemory{institutions: make(map[domain.InstitutionID]*models.Institution)}
}

func (s *InMemory) Create(ctx context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.institutions {
		if strings.EqualFold(existing.Name, inst.Name) {
			return sentinel.ErrConflict
		}
	}

	cp := *inst
	s.institutions[inst.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.InstitutionID) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.institutions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *inst
	return &cp, nil
}

// List returns all institutions ordered by name.
func (s *InMemory) List(ctx context.Context) ([]*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Institution, 0, len(s.institutions))
	for _, inst := range s.institutions {
		cp := *inst
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// FindFirstInDistrict returns the oldest-registered institution matching both
// province and district.
func (s *InMemory) FindFirstInDistrict(ctx context.Context, province, district string) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.firstMatch(func(inst *models.Institution) bool {
		return strings.EqualFold(inst.Province, province) && strings.EqualFold(inst.District, district)
	})
}

// FindFirstInProvince returns the oldest-registered institution in the
// province regardless of district.
func (s *InMemory) FindFirstInProvince(ctx context.Context, province string) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.firstMatch(func(inst *models.Institution) bool {
		return strings.EqualFold(inst.Province, province)
	})
}

// firstMatch picks the oldest CreatedAt, name as tie-break, so routing is
// deterministic across store implementations. Callers hold the lock.
func (s *InMemory) firstMatch(match func(*models.Institution) bool) (*models.Institution, error) {
	var best *models.Institution
	for _, inst := range s.institutions {
		if !match(inst) {
			continue
		}
		if best == nil ||
			inst.CreatedAt.Before(best.CreatedAt) ||
			(inst.CreatedAt.Equal(best.CreatedAt) && inst.Name < best.Name) {
			best = inst
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *best
	return &cp, nil
}
