package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/enums"
	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert records a swipe decision. A re-swipe on the same target overwrites the
// prior direction instead of adding a second row, so the store keeps exactly one
// decision per (actor, target) pair.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection, now time.Time) (model.Swipe, error) {
	if actorUserID <= 0 || targetUserID <= 0 || direction == "" {
		return model.Swipe{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return model.Swipe{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.Swipe
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	direction,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	created_at = EXCLUDED.created_at
RETURNING id, actor_user_id, target_user_id, direction, created_at
`, actorUserID, targetUserID, string(direction), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		return model.Swipe{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

// ReverseDirection reads the single reverse-direction swipe (target → actor).
// It is a point lookup, never a scan.
func (r *SwipeRepo) ReverseDirection(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (enums.SwipeDirection, bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return "", false, fmt.Errorf("invalid reverse lookup payload")
	}
	if tx == nil {
		return "", false, fmt.Errorf("transaction is required")
	}

	var direction string
	err := tx.QueryRow(ctx, `
SELECT direction
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
`, targetUserID, actorUserID).Scan(&direction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup reverse swipe: %w", err)
	}

	return enums.SwipeDirection(direction), true, nil
}

func (r *SwipeRepo) ListByActor(ctx context.Context, actorUserID int64, limit int) ([]model.Swipe, error) {
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Swipe{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, actor_user_id, target_user_id, direction, created_at
FROM swipes
WHERE actor_user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, actorUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list swipes by actor: %w", err)
	}
	defer rows.Close()

	items := make([]model.Swipe, 0, limit)
	for rows.Next() {
		var rec model.Swipe
		if err := rows.Scan(
			&rec.ID,
			&rec.ActorUserID,
			&rec.TargetUserID,
			&rec.Direction,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan swipe: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swipes: %w", rows.Err())
	}

	return items, nil
}
