package complaint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cityline/internal/complaint/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
	txcontext "cityline/pkg/platform/tx"
)

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// Postgres persists complaints. Tracking number uniqueness is a unique index;
// lost updates surface as conflicts through the version column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const complaintColumns = `id, tracking_number, title, description, category, province, district,
	citizen_id, contact_email, contact_phone, assigned_to, assigned_department, status,
	submitted_at, deadline, resolved_at, version`

func (s *Postgres) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.TrackingNumber,
		c.Title,
		c.Description,
		string(c.Category),
		c.Province,
		c.District,
		uuid.UUID(c.CitizenID),
		c.ContactEmail,
		c.ContactPhone,
		uuid.UUID(c.AssignedTo),
		departmentValue(c.AssignedDepartment),
		string(c.Status),
		c.SubmittedAt,
		c.Deadline,
		c.ResolvedAt,
		c.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ComplaintID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return scanOne(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *Postgres) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE tracking_number = $1`
	return scanOne(s.execer(ctx).QueryRowContext(ctx, query, trackingNumber))
}

// Update writes the mutable complaint fields guarded by the version column.
// Identity and intake fields never change after creation, so they are not in
// the SET list. The caller's struct gets the bumped version on success.
func (s *Postgres) Update(ctx context.Context, c *models.Complaint) error {
	query := `
		UPDATE complaints
		SET status = $3, deadline = $4, resolved_at = $5, assigned_department = $6,
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(c.ID),
		c.Version,
		string(c.Status),
		c.Deadline,
		c.ResolvedAt,
		departmentValue(c.AssignedDepartment),
	).Scan(&c.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update complaint: %w", err)
	}

	// No row matched: the id is gone or the version is stale.
	var exists bool
	check := `SELECT EXISTS (SELECT 1 FROM complaints WHERE id = $1)`
	if err := s.execer(ctx).QueryRowContext(ctx, check, uuid.UUID(c.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check complaint existence: %w", err)
	}
	if exists {
		return sentinel.ErrConflict
	}
	return sentinel.ErrNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Complaint, error) {
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var (
		c          models.Complaint
		id         uuid.UUID
		citizenID  uuid.UUID
		assignedTo uuid.UUID
		department uuid.NullUUID
		category   string
		status     string
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&id,
		&c.TrackingNumber,
		&c.Title,
		&c.Description,
		&category,
		&c.Province,
		&c.District,
		&citizenID,
		&c.ContactEmail,
		&c.ContactPhone,
		&assignedTo,
		&department,
		&status,
		&c.SubmittedAt,
		&c.Deadline,
		&resolvedAt,
		&c.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan complaint: %w", err)
	}

	c.ID = domain.ComplaintID(id)
	c.CitizenID = domain.CitizenID(citizenID)
	c.AssignedTo = domain.InstitutionID(assignedTo)
	c.Category = models.Category(category)
	c.Status = models.Status(status)
	if department.Valid {
		d := domain.DepartmentID(department.UUID)
		c.AssignedDepartment = &d
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		c.ResolvedAt = &t
	}
	return &c, nil
}

func departmentValue(id *domain.DepartmentID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
