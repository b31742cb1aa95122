package department

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cityline/internal/directory/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
	txcontext "cityline/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Postgres persists district departments. A unique index on
// (LOWER(district), LOWER(name)) keeps names unique per district.
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

const departmentColumns = `id, name, district, contact_email, contact_phone, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, dept *models.DistrictDepartment) error {
	query := `
		INSERT INTO district_departments (` + departmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(dept.ID),
		dept.Name,
		dept.District,
		dept.ContactEmail,
		dept.ContactPhone,
		dept.CreatedAt,
		dept.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.DepartmentID) (*models.DistrictDepartment, error) {
	query := `SELECT ` + departmentColumns + ` FROM district_departments WHERE id = $1`

	dept, err := scanDepartment(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return dept, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.DistrictDepartment, error) {
	query := `SELECT ` + departmentColumns + ` FROM district_departments ORDER BY LOWER(district), LOWER(name)`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var out []*models.DistrictDepartment
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDepartment(row rowScanner) (*models.DistrictDepartment, error) {
	var (
		dept models.DistrictDepartment
		id   uuid.UUID
	)
	err := row.Scan(
		&id,
		&dept.Name,
		&dept.District,
		&dept.ContactEmail,
		&dept.ContactPhone,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan department: %w", err)
	}
	dept.ID = domain.DepartmentID(id)
	return &dept, nil
}
