package department

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cityline/internal/directory/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
)

// InMemory is a map-backed department store. Department names are unique
// within a district, case-insensitively, mirroring the postgres index.
type InMemory struct {
	mu          sync.RWMutex
	departments map[domain.DepartmentID]*models.DistrictDepartment
}

func NewInMemory() *InMemory {
	return &InMemory{departments: make(map[domain.DepartmentID]*models.DistrictDepartment)}
}

func (s *InMemory) Create(ctx context.Context, dept *models.DistrictDepartment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.departments {
		if strings.EqualFold(existing.District, dept.District) && strings.EqualFold(existing.Name, dept.Name) {
			return sentinel.ErrConflict
		}
	}

	cp := *dept
	s.departments[dept.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.DepartmentID) (*models.DistrictDepartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dept, ok := s.departments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *dept
	return &cp, nil
}

// List returns all departments ordered by district then name.
func (s *InMemory) List(ctx context.Context) ([]*models.DistrictDepartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.DistrictDepartment, 0, len(s.departments))
	for _, dept := range s.departments {
		cp := *dept
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := strings.ToLower(out[i].District), strings.ToLower(out[j].District)
		if di != dj {
			return di < dj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
