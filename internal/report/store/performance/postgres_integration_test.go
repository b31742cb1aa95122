//go:build integration

package performance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	complaintmodels "cityline/internal/complaint/models"
	complaintstore "cityline/internal/complaint/store/complaint"
	dirmodels "cityline/internal/directory/models"
	institutionstore "cityline/internal/directory/store/institution"
	"cityline/internal/report/models"
	"cityline/internal/report/store/performance"
	"cityline/pkg/domain"
	"cityline/pkg/testutil/containers"
)

type PostgresSourceSuite struct {
	suite.Suite
	postgres     *containers.PostgresContainer
	source       *performance.Postgres
	complaints   *complaintstore.Postgres
	institutions *institutionstore.Postgres
}

func TestPostgresSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSourceSuite))
}

func (s *PostgresSourceSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.complaints = complaintstore.NewPostgres(s.postgres.DB)
	s.institutions = institutionstore.NewPostgres(s.postgres.DB)

	pool, err := performance.NewPool(context.Background(), s.postgres.DSN)
	s.Require().NoError(err)
	s.T().Cleanup(pool.Close)
	s.source = performance.NewPostgres(pool)
}

func (s *PostgresSourceSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "forwarding_records", "complaints", "district_departments", "institutions")
	s.Require().NoError(err)
}

func (s *PostgresSourceSuite) addInstitution(name string) domain.InstitutionID {
	now := time.Now().UTC()
	inst := &dirmodels.Institution{
		ID:        domain.NewInstitutionID(),
		Name:      name,
		Province:  "Western",
		District:  "Colombo",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.institutions.Create(context.Background(), inst))
	return inst.ID
}

func (s *PostgresSourceSuite) addComplaint(inst domain.InstitutionID, submittedAt, resolvedAt time.Time) {
	c, err := complaintmodels.NewComplaint(complaintmodels.NewComplaintParams{
		ID:             domain.NewComplaintID(),
		TrackingNumber: "CL-20250610-" + uuid.NewString()[:6],
		Title:          "Garbage not collected",
		Description:    "Bins on the lane have not been emptied this week.",
		Category:       complaintmodels.CategorySanitation,
		Province:       "Western",
		District:       "Colombo",
		CitizenID:      domain.NewCitizenID(),
		ContactEmail:   "citizen@example.com",
		AssignedTo:     inst,
		SubmittedAt:    submittedAt,
		Deadline:       submittedAt.AddDate(0, 0, 7),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.complaints.Create(context.Background(), c))

	if !resolvedAt.IsZero() {
		c.ApplyStatus(complaintmodels.StatusResolved, resolvedAt)
		s.Require().NoError(s.complaints.Update(context.Background(), c))
	}
}

// TestCountsMatchStoredComplaints verifies the SQL aggregation agrees with
// what the lifecycle wrote, including the institution with nothing assigned.
func (s *PostgresSourceSuite) TestCountsMatchStoredComplaints() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	colombo := s.addInstitution("Colombo Municipal Council")
	s.addInstitution("Kandy Municipal Council")

	s.addComplaint(colombo, now.AddDate(0, 0, -10), now.AddDate(0, 0, -6)) // resolved in 4 days, on time
	s.addComplaint(colombo, now.AddDate(0, 0, -10), now.AddDate(0, 0, -1)) // resolved in 9 days, late
	s.addComplaint(colombo, now.AddDate(0, 0, -10), time.Time{})           // still open

	counts, err := s.source.InstitutionCounts(ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(counts, 2)

	byName := map[string]models.InstitutionCounts{}
	for _, c := range counts {
		byName[c.InstitutionName] = c
	}

	got := byName["Colombo Municipal Council"]
	s.Equal(3, got.Total)
	s.Equal(2, got.Resolved)
	s.Equal(1, got.OnTime)
	s.InDelta(13.0, got.ResolutionDays, 0.01)

	idle := byName["Kandy Municipal Council"]
	s.Zero(idle.Total)
	s.Zero(idle.Resolved)
	s.Zero(idle.ResolutionDays)
}

// TestWindowLowerBound verifies the cutoff drops older submissions without
// touching resolution timestamps.
func (s *PostgresSourceSuite) TestWindowLowerBound() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	colombo := s.addInstitution("Colombo Municipal Council")
	s.addComplaint(colombo, now.AddDate(0, 0, -40), now.AddDate(0, 0, -39)) // outside a 7-day window
	s.addComplaint(colombo, now.AddDate(0, 0, -2), time.Time{})

	counts, err := s.source.InstitutionCounts(ctx, now.AddDate(0, 0, -7))
	s.Require().NoError(err)
	s.Require().Len(counts, 1)
	s.Equal(1, counts[0].Total)
	s.Zero(counts[0].Resolved)
}
