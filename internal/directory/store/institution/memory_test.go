package institution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cityline/internal/directory/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
)

type InstitutionStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InstitutionStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInstitutionStoreSuite(t *testing.T) {
	suite.Run(t, new(InstitutionStoreSuite))
}

func (s *InstitutionStoreSuite) newInstitution(name, province, district string, createdAt time.Time) *models.Institution {
	return &models.Institution{
		ID:        domain.NewInstitutionID(),
		Name:      name,
		Province:  province,
		District:  district,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// TestCreationAndLookups verifies the store correctly creates and retrieves
// institutions.
func (s *InstitutionStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by ID", func() {
		inst := s.newInstitution("Water Authority", "Western", "Colombo", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, inst))

		found, err := s.store.FindByID(s.ctx, inst.ID)
		s.Require().NoError(err)
		s.Equal(inst.Name, found.Name)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewInstitutionID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists ordered by name", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Sanitation Board", "Western", "Gampaha", time.Now())))

		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal("Sanitation Board", all[0].Name)
		s.Equal("Water Authority", all[1].Name)
	})
}

// TestNameUniqueness verifies case-insensitive name uniqueness enforcement.
func (s *InstitutionStoreSuite) TestNameUniqueness() {
	s.Run("rejects duplicate name", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Duplicate", "Western", "Colombo", time.Now())))

		err := s.store.Create(s.ctx, s.newInstitution("Duplicate", "Central", "Kandy", time.Now()))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("enforces case-insensitive uniqueness", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Roads Agency", "Western", "Colombo", time.Now())))

		err := s.store.Create(s.ctx, s.newInstitution("ROADS AGENCY", "Central", "Kandy", time.Now()))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

// TestGeographicLookups verifies the routing lookups used by assignment.
func (s *InstitutionStoreSuite) TestGeographicLookups() {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Colombo Water", "Western", "Colombo", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Gampaha Roads", "Western", "Gampaha", base.Add(time.Hour))))
	s.Require().NoError(s.store.Create(s.ctx, s.newInstitution("Kandy Power", "Central", "Kandy", base.Add(2*time.Hour))))

	s.Run("exact district match", func() {
		inst, err := s.store.FindFirstInDistrict(s.ctx, "Western", "Gampaha")
		s.Require().NoError(err)
		s.Equal("Gampaha Roads", inst.Name)
	})

	s.Run("district match is case-insensitive", func() {
		inst, err := s.store.FindFirstInDistrict(s.ctx, "western", "COLOMBO")
		s.Require().NoError(err)
		s.Equal("Colombo Water", inst.Name)
	})

	s.Run("no district match", func() {
		_, err := s.store.FindFirstInDistrict(s.ctx, "Western", "Kalutara")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("province fallback picks oldest registration", func() {
		inst, err := s.store.FindFirstInProvince(s.ctx, "Western")
		s.Require().NoError(err)
		s.Equal("Colombo Water", inst.Name)
	})

	s.Run("no province match", func() {
		_, err := s.store.FindFirstInProvince(s.ctx, "Southern")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestCopySemantics verifies mutations on returned values do not leak into
// the store.
func (s *InstitutionStoreSuite) TestCopySemantics() {
	inst := s.newInstitution("Immutable Institution", "Western", "Colombo", time.Now())
	s.Require().NoError(s.store.Create(s.ctx, inst))

	found, err := s.store.FindByID(s.ctx, inst.ID)
	s.Require().NoError(err)
	found.Name = "Mutated"

	again, err := s.store.FindByID(s.ctx, inst.ID)
	s.Require().NoError(err)
	s.Equal("Immutable Institution", again.Name)
}
