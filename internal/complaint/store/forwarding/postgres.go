package forwarding

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

const uniqueViolation = "23505"

// Postgres persists forwarding records. The table is insert-only; there is no
// update or delete path.
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

func (s *Postgres) Append(ctx context.Context, rec *models.ForwardingRecord) error {
	query := `
		INSERT INTO forwarding_records (id, complaint_id, from_institution, to_department, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rec.ID),
		uuid.UUID(rec.ComplaintID),
		uuid.UUID(rec.FromInstitution),
		uuid.UUID(rec.ToDepartment),
		rec.Note,
		rec.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert forwarding record: %w", err)
	}
	return nil
}

func (s *Postgres) ListByComplaint(ctx context.Context, complaintID domain.ComplaintID) ([]*models.ForwardingRecord, error) {
	query := `
		SELECT id, complaint_id, from_institution, to_department, note, created_at
		FROM forwarding_records
		WHERE complaint_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(complaintID))
	if err != nil {
		return nil, fmt.Errorf("query forwarding records: %w", err)
	}
	defer rows.Close()

	var out []*models.ForwardingRecord
	for rows.Next() {
		var (
			rec         models.ForwardingRecord
			id          uuid.UUID
			complaint   uuid.UUID
			institution uuid.UUID
			department  uuid.UUID
		)
		if err := rows.Scan(&id, &complaint, &institution, &department, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan forwarding record: %w", err)
		}
		rec.ID = domain.ForwardingID(id)
		rec.ComplaintID = domain.ComplaintID(complaint)
		rec.FromInstitution = domain.InstitutionID(institution)
		rec.ToDepartment = domain.DepartmentID(department)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forwarding records: %w", err)
	}
	return out, nil
}
