package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityline/internal/audit"
	"cityline/internal/directory/store/department"
	"cityline/internal/directory/store/institution"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

type capturePublisher struct {
	events []audit.Event
}

func (c *capturePublisher) Emit(_ context.Context, event audit.Event) error {
	c.events = append(c.events, event)
	return nil
}

func newTestService() (*Service, *capturePublisher) {
	publisher := &capturePublisher{}
	svc := New(institution.NewInMemory(), department.NewInMemory(),
		WithAuditPublisher(publisher))
	return svc, publisher
}

func TestCreateInstitution(t *testing.T) {
	t.Run("creates with trimmed fields and emits audit", func(t *testing.T) {
		svc, publisher := newTestService()

		inst, err := svc.CreateInstitution(context.Background(), CreateInstitutionParams{
			Name:     "  Water Authority  ",
			Province: "Western",
			District: "Colombo",
		})
		require.NoError(t, err)
		assert.Equal(t, "Water Authority", inst.Name)
		assert.False(t, inst.ID.IsNil())

		require.Len(t, publisher.events, 1)
		assert.Equal(t, string(audit.EventInstitutionCreated), publisher.events[0].Action)
		assert.Equal(t, inst.ID.String(), publisher.events[0].Subject)
	})

	t.Run("rejects invalid input as validation error", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateInstitution(context.Background(), CreateInstitutionParams{
			Name:     "",
			Province: "Western",
			District: "Colombo",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects duplicate name as conflict", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateInstitution(context.Background(), CreateInstitutionParams{
			Name: "Roads Agency", Province: "Western", District: "Colombo",
		})
		require.NoError(t, err)

		_, err = svc.CreateInstitution(context.Background(), CreateInstitutionParams{
			Name: "roads agency", Province: "Central", District: "Kandy",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestCreateDepartment(t *testing.T) {
	t.Run("creates and emits audit", func(t *testing.T) {
		svc, publisher := newTestService()

		dept, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Name:     "Road Maintenance Unit",
			District: "Colombo",
		})
		require.NoError(t, err)
		assert.Equal(t, "Colombo", dept.District)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, string(audit.EventDepartmentCreated), publisher.events[0].Action)
	})

	t.Run("rejects duplicate within district as conflict", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Name: "Sanitation Crew", District: "Colombo",
		})
		require.NoError(t, err)

		_, err = svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Name: "SANITATION CREW", District: "colombo",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("rejects missing district as validation error", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
			Name: "Sanitation Crew",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestGetLookups(t *testing.T) {
	svc, _ := newTestService()

	inst, err := svc.CreateInstitution(context.Background(), CreateInstitutionParams{
		Name: "Water Authority", Province: "Western", District: "Colombo",
	})
	require.NoError(t, err)
	dept, err := svc.CreateDepartment(context.Background(), CreateDepartmentParams{
		Name: "Water Crew", District: "Colombo",
	})
	require.NoError(t, err)

	t.Run("finds existing records", func(t *testing.T) {
		got, err := svc.GetInstitution(context.Background(), inst.ID)
		require.NoError(t, err)
		assert.Equal(t, inst.Name, got.Name)

		gotDept, err := svc.GetDepartment(context.Background(), dept.ID)
		require.NoError(t, err)
		assert.Equal(t, dept.Name, gotDept.Name)
	})

	t.Run("maps unknown IDs to not_found", func(t *testing.T) {
		_, err := svc.GetInstitution(context.Background(), domain.NewInstitutionID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = svc.GetDepartment(context.Background(), domain.NewDepartmentID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("lists everything registered", func(t *testing.T) {
		institutions, err := svc.ListInstitutions(context.Background())
		require.NoError(t, err)
		assert.Len(t, institutions, 1)

		departments, err := svc.ListDepartments(context.Background())
		require.NoError(t, err)
		assert.Len(t, departments, 1)
	})
}
