//go:build integration

package complaint_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cityline/internal/complaint/models"
	complaintstore "cityline/internal/complaint/store/complaint"
	forwardingstore "cityline/internal/complaint/store/forwarding"
	dirmodels "cityline/internal/directory/models"
	departmentstore "cityline/internal/directory/store/department"
	institutionstore "cityline/internal/directory/store/institution"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/platform/tx"
	"cityline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres     *containers.PostgresContainer
	store        *complaintstore.Postgres
	forwardings  *forwardingstore.Postgres
	institutions *institutionstore.Postgres
	departments  *departmentstore.Postgres
	institution  *dirmodels.Institution
	department   *dirmodels.DistrictDepartment
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = complaintstore.NewPostgres(s.postgres.DB)
	s.forwardings = forwardingstore.NewPostgres(s.postgres.DB)
	s.institutions = institutionstore.NewPostgres(s.postgres.DB)
	s.departments = departmentstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "forwarding_records", "complaints", "district_departments", "institutions")
	s.Require().NoError(err)

	now := time.Now().UTC()
	s.institution = &dirmodels.Institution{
		ID:        domain.NewInstitutionID(),
		Name:      "Institution " + uuid.NewString(),
		Province:  "Western",
		District:  "Colombo",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.institutions.Create(ctx, s.institution))

	s.department = &dirmodels.DistrictDepartment{
		ID:        domain.NewDepartmentID(),
		Name:      "Department " + uuid.NewString(),
		District:  "Colombo",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.departments.Create(ctx, s.department))
}

func (s *PostgresStoreSuite) newComplaint(trackingNumber string) *models.Complaint {
	now := time.Now().UTC().Truncate(time.Microsecond)
	c, err := models.NewComplaint(models.NewComplaintParams{
		ID:             domain.NewComplaintID(),
		TrackingNumber: trackingNumber,
		Title:          "Broken water main",
		Description:    "Water flooding the street.",
		Category:       models.CategoryWater,
		Province:       "Western",
		District:       "Colombo",
		CitizenID:      domain.NewCitizenID(),
		ContactEmail:   "citizen@example.com",
		AssignedTo:     s.institution.ID,
		SubmittedAt:    now,
		Deadline:       now.AddDate(0, 0, 3),
	})
	s.Require().NoError(err)
	return c
}

// TestRoundTrip verifies every column survives a write and read, including
// the nullable ones in both states.
func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := s.newComplaint("CL-20250610-" + uuid.NewString()[:6])
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.TrackingNumber, found.TrackingNumber)
	s.Equal(c.Category, found.Category)
	s.Equal(models.StatusPending, found.Status)
	s.Nil(found.AssignedDepartment)
	s.Nil(found.ResolvedAt)
	s.Equal(1, found.Version)
	s.WithinDuration(c.SubmittedAt, found.SubmittedAt, time.Millisecond)
	s.WithinDuration(c.Deadline, found.Deadline, time.Millisecond)

	byNumber, err := s.store.FindByTrackingNumber(ctx, c.TrackingNumber)
	s.Require().NoError(err)
	s.Equal(c.ID, byNumber.ID)

	dept := s.department.ID
	found.ApplyForward(dept)
	s.Require().NoError(s.store.Update(ctx, found))

	again, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(again.AssignedDepartment)
	s.Equal(dept, *again.AssignedDepartment)
	s.Equal(models.StatusInProgress, again.Status)
	s.Equal(2, again.Version)
}

// TestConcurrentUpdates verifies the version check lets exactly one writer
// through per version.
func (s *PostgresStoreSuite) TestConcurrentUpdates() {
	ctx := context.Background()
	c := s.newComplaint("CL-20250610-" + uuid.NewString()[:6])
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			own := *c
			own.ApplyStatus(models.StatusInProgress, time.Now().UTC())
			err := s.store.Update(ctx, &own)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one writer should win version 1")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

// TestUpdateErrors distinguishes stale versions from missing rows.
func (s *PostgresStoreSuite) TestUpdateErrors() {
	ctx := context.Background()
	c := s.newComplaint("CL-20250610-" + uuid.NewString()[:6])
	s.Require().NoError(s.store.Create(ctx, c))
	s.Require().NoError(s.store.Update(ctx, c))

	stale := *c
	stale.Version = 1
	s.ErrorIs(s.store.Update(ctx, &stale), sentinel.ErrConflict)

	ghost := s.newComplaint("CL-20250610-" + uuid.NewString()[:6])
	s.ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
}

// TestDuplicateTrackingNumber verifies the unique index maps onto a conflict.
func (s *PostgresStoreSuite) TestDuplicateTrackingNumber() {
	ctx := context.Background()
	number := "CL-20250610-" + uuid.NewString()[:6]

	s.Require().NoError(s.store.Create(ctx, s.newComplaint(number)))
	s.ErrorIs(s.store.Create(ctx, s.newComplaint(number)), sentinel.ErrConflict)
}

// TestForwardingTransaction verifies the record append and complaint update
// commit or roll back together through the shared transaction context.
func (s *PostgresStoreSuite) TestForwardingTransaction() {
	ctx := context.Background()
	c := s.newComplaint("CL-20250610-" + uuid.NewString()[:6])
	s.Require().NoError(s.store.Create(ctx, c))
	dept := s.department.ID

	s.Run("rollback leaves nothing behind", func() {
		err := tx.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
			rec, err := models.NewForwardingRecord(domain.NewForwardingID(), c.ID, s.institution.ID, dept, "note", time.Now().UTC())
			s.Require().NoError(err)
			if err := s.forwardings.Append(ctx, rec); err != nil {
				return err
			}
			return errors.New("forced rollback")
		})
		s.Require().Error(err)

		records, err := s.forwardings.ListByComplaint(ctx, c.ID)
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("commit persists record and complaint together", func() {
		err := tx.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
			rec, err := models.NewForwardingRecord(domain.NewForwardingID(), c.ID, s.institution.ID, dept, "note", time.Now().UTC())
			s.Require().NoError(err)
			if err := s.forwardings.Append(ctx, rec); err != nil {
				return err
			}
			c.ApplyForward(dept)
			return s.store.Update(ctx, c)
		})
		s.Require().NoError(err)

		records, err := s.forwardings.ListByComplaint(ctx, c.ID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)

		updated, err := s.store.FindByID(ctx, c.ID)
		s.Require().NoError(err)
		s.Require().NotNil(updated.AssignedDepartment)
		s.Equal(dept, *updated.AssignedDepartment)
	})
}
