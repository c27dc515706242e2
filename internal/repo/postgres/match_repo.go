package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// AcquirePairLock serializes the two reciprocal-swipe transactions of one pair
// for the rest of the current transaction. Without it both sides could read the
// reverse swipe before either commit and miss the match.
func (r *MatchRepo) AcquirePairLock(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid pair lock payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	userA, userB := model.CanonicalPair(userID, targetID)
	key := fmt.Sprintf("match_pair:%d:%d", userA, userB)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("acquire pair lock: %w", err)
	}

	return nil
}

// CreateIfAbsent inserts an active match for the canonical pair. The partial
// unique index over active rows is the single source of truth: a lost race
// surfaces as a skipped insert, which is reported as created=false together
// with the winning row's identity, never as an error.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (model.Match, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := model.CanonicalPair(userID, targetID)

	var rec model.Match
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	active,
	matched_at
) VALUES ($1, $2, TRUE, $3)
ON CONFLICT (user_a_id, user_b_id) WHERE active DO NOTHING
RETURNING id, user_a_id, user_b_id, active, matched_at
`, userA, userB, now.UTC()).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Active,
		&rec.MatchedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.getActiveByPair(ctx, tx, userA, userB)
	if err != nil {
		return model.Match{}, false, err
	}

	return existing, false, nil
}

func (r *MatchRepo) getActiveByPair(ctx context.Context, tx pgx.Tx, userA, userB int64) (model.Match, error) {
	var rec model.Match
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, matched_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2 AND active
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Active,
		&rec.MatchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("lookup active match by pair: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return model.Match{}, fmt.Errorf("transaction is required")
	}

	var rec model.Match
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, matched_at, unmatched_at, unmatched_by
FROM matches
WHERE id = $1
FOR UPDATE
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Active,
		&rec.MatchedAt,
		&rec.UnmatchedAt,
		&rec.UnmatchedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match for update: %w", err)
	}

	return rec, nil
}

// Retire flips an active match to inactive. The row stays for history so the
// pair can match again later.
func (r *MatchRepo) Retire(ctx context.Context, tx pgx.Tx, matchID, byUserID int64, now time.Time) error {
	if matchID <= 0 || byUserID <= 0 {
		return fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET active = FALSE, unmatched_at = $2, unmatched_by = $3
WHERE id = $1 AND active
`, matchID, now.UTC(), byUserID)
	if err != nil {
		return fmt.Errorf("retire match: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}

	return nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]model.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_id, user_b_id, active, matched_at
FROM matches
WHERE (user_a_id = $1 OR user_b_id = $1) AND active
ORDER BY matched_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		var rec model.Match
		if err := rows.Scan(
			&rec.ID,
			&rec.UserAID,
			&rec.UserBID,
			&rec.Active,
			&rec.MatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}
