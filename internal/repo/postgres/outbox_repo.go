package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

type OutboxRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// InsertTx writes an event row inside the caller's transaction so the event
// commits or rolls back together with the state change that produced it.
func (r *OutboxRepo) InsertTx(ctx context.Context, tx pgx.Tx, event model.DomainEvent) error {
	if event.ID == uuid.Nil || event.EventType == "" || len(event.Payload) == 0 {
		return fmt.Errorf("invalid outbox event payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO outbox_events (
	id,
	event_type,
	payload,
	occurred_at,
	status,
	attempts,
	next_attempt_at
) VALUES ($1, $2, $3::jsonb, $4, $5, 0, $4)
`, event.ID, event.EventType, string(event.Payload), occurredAt, string(model.EventStatusPending)); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return nil
}

// ListDue returns pending events whose retry backoff has elapsed, oldest first.
func (r *OutboxRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.DomainEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.DomainEvent{}, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, event_type, payload, occurred_at, status, attempts, next_attempt_at, COALESCE(last_error, ''), delivered_at
FROM outbox_events
WHERE status = $1 AND next_attempt_at <= $2
ORDER BY occurred_at ASC, id ASC
LIMIT $3
`, string(model.EventStatusPending), now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due outbox events: %w", err)
	}
	defer rows.Close()

	items := make([]model.DomainEvent, 0, limit)
	for rows.Next() {
		var rec model.DomainEvent
		if err := rows.Scan(
			&rec.ID,
			&rec.EventType,
			&rec.Payload,
			&rec.OccurredAt,
			&rec.Status,
			&rec.Attempts,
			&rec.NextAttemptAt,
			&rec.LastError,
			&rec.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", rows.Err())
	}

	return items, nil
}

func (r *OutboxRepo) MarkDelivered(ctx context.Context, eventID uuid.UUID, now time.Time) error {
	if eventID == uuid.Nil {
		return fmt.Errorf("invalid event id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE outbox_events
SET status = $2, delivered_at = $3, last_error = NULL
WHERE id = $1
`, eventID, string(model.EventStatusDelivered), now.UTC()); err != nil {
		return fmt.Errorf("mark outbox event delivered: %w", err)
	}

	return nil
}

// MarkAttemptFailed bumps the attempt counter and either schedules the next
// retry or parks the event as failed once the attempt budget is spent. Failed
// events are terminal and wait for operator intervention; they are never deleted.
func (r *OutboxRepo) MarkAttemptFailed(ctx context.Context, eventID uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string, terminal bool) error {
	if eventID == uuid.Nil || attempts <= 0 {
		return fmt.Errorf("invalid failure payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	status := model.EventStatusPending
	if terminal {
		status = model.EventStatusFailed
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE outbox_events
SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5
WHERE id = $1
`, eventID, string(status), attempts, nextAttemptAt.UTC(), lastError); err != nil {
		return fmt.Errorf("mark outbox attempt failed: %w", err)
	}

	return nil
}
