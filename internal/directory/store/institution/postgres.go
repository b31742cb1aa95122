package institution

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

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// Postgres persists institutions. Name uniqueness is enforced by a unique
// index on LOWER(name); geographic lookups compare through LOWER() so routing
// matches are case-insensitive.
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

const institutionColumns = `id, name, province, district, contact_email, contact_phone, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, inst *models.Institution) error {
	query := `
		INSERT INTO institutions (` + institutionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(inst.ID),
		inst.Name,
		inst.Province,
		inst.District,
		inst.ContactEmail,
		inst.ContactPhone,
		inst.CreatedAt,
		inst.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.InstitutionID) (*models.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions WHERE id = $1`
	return scanOne(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions ORDER BY LOWER(name)`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query institutions: %w", err)
	}
	defer rows.Close()

	var out []*models.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	return out, nil
}

func (s *Postgres) FindFirstInDistrict(ctx context.Context, province, district string) (*models.Institution, error) {
	query := `
		SELECT ` + institutionColumns + `
		FROM institutions
		WHERE LOWER(province) = LOWER($1) AND LOWER(district) = LOWER($2)
		ORDER BY created_at, name
		LIMIT 1
	`
	return scanOne(s.execer(ctx).QueryRowContext(ctx, query, province, district))
}

func (s *Postgres) FindFirstInProvince(ctx context.Context, province string) (*models.Institution, error) {
	query := `
		SELECT ` + institutionColumns + `
		FROM institutions
		WHERE LOWER(province) = LOWER($1)
		ORDER BY created_at, name
		LIMIT 1
	`
	return scanOne(s.execer(ctx).QueryRowContext(ctx, query, province))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Institution, error) {
	inst, err := scanInstitution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return inst, nil
}

func scanInstitution(row rowScanner) (*models.Institution, error) {
	var (
		inst models.Institution
		id   uuid.UUID
	)
	err := row.Scan(
		&id,
		&inst.Name,
		&inst.Province,
		&inst.District,
		&inst.ContactEmail,
		&inst.ContactPhone,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan institution: %w", err)
	}
	inst.ID = domain.InstitutionID(id)
	return &inst, nil
}
