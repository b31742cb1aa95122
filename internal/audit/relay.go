package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// EventProducer publishes one serialized audit event. Satisfied by the
// platform Kafka producer.
type EventProducer interface {
	Produce(ctx context.Context, key string, value []byte) error
}

// OutboxRelay moves committed outbox rows to Kafka. Rows are claimed with
// FOR UPDATE SKIP LOCKED so multiple replicas can relay concurrently, and
// marked published only after the broker acknowledges.
type OutboxRelay struct {
	db       *sql.DB
	producer EventProducer
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

func NewOutboxRelay(db *sql.DB, producer EventProducer, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		db:       db,
		producer: producer,
		logger:   logger,
		interval: 2 * time.Second,
		batch:    100,
	}
}

// Run polls until the context is cancelled. Relay failures back off to the
// next tick; rows stay unpublished until delivery succeeds.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.Error("outbox relay pass failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin relay tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batch)
	if err != nil {
		return fmt.Errorf("select outbox rows: %w", err)
	}

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	rows.Close()

	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, row := range pending {
		if err := r.producer.Produce(ctx, row.aggregateID, row.payload); err != nil {
			return fmt.Errorf("publish outbox row %s: %w", row.id, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE outbox SET published_at = $1 WHERE id = $2`, now, row.id); err != nil {
			return fmt.Errorf("mark outbox row %s published: %w", row.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit relay tx: %w", err)
	}

	r.logger.Debug("relayed audit events", "count", len(pending))
	return nil
}
