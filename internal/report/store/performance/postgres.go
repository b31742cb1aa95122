// Package performance provides the read-side sources behind performance
// reports. The postgres source runs the aggregation in SQL over a pgx pool
// kept separate from the transactional write path; the in-memory source
// recounts through the same stores the lifecycle writes for single-process
// deployments.
package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	complaintmodels "cityline/internal/complaint/models"
	"cityline/internal/report/models"
	"cityline/pkg/domain"
)

// Postgres counts complaints per institution directly in the database. The
// LEFT JOIN keeps institutions with no complaints in the window so the
// ranking always covers the full registry.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// NewPool opens a pgx pool for the report read path and verifies
// connectivity before handing it out.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open report pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping report pool: %w", err)
	}
	return pool, nil
}

// InstitutionCounts tallies complaints submitted at or after since, grouped
// by assigned institution. A zero since is the all-time window; every real
// submission postdates it.
func (s *Postgres) InstitutionCounts(ctx context.Context, since time.Time) ([]models.InstitutionCounts, error) {
	query := `
		SELECT i.id, i.name,
		       COUNT(c.id),
		       COUNT(c.id) FILTER (WHERE c.status = $2),
		       COUNT(c.id) FILTER (WHERE c.status = $2 AND c.resolved_at <= c.deadline),
		       COALESCE(SUM(EXTRACT(EPOCH FROM (c.resolved_at - c.submitted_at)) / 86400.0)
		                FILTER (WHERE c.status = $2), 0)::double precision
		FROM institutions i
		LEFT JOIN complaints c ON c.assigned_to = i.id AND c.submitted_at >= $1
		GROUP BY i.id, i.name
		ORDER BY i.name
	`
	rows, err := s.pool.Query(ctx, query, since, string(complaintmodels.StatusResolved))
	if err != nil {
		return nil, fmt.Errorf("count institution performance: %w", err)
	}
	defer rows.Close()

	var counts []models.InstitutionCounts
	for rows.Next() {
		var (
			id                      uuid.UUID
			row                     models.InstitutionCounts
			total, resolved, onTime int64
		)
		if err := rows.Scan(&id, &row.InstitutionName, &total, &resolved, &onTime, &row.ResolutionDays); err != nil {
			return nil, fmt.Errorf("scan institution counts: %w", err)
		}
		row.InstitutionID = domain.InstitutionID(id)
		row.Total = int(total)
		row.Resolved = int(resolved)
		row.OnTime = int(onTime)
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institution counts: %w", err)
	}
	return counts, nil
}
