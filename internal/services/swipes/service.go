package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/enums"
	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
	"github.com/zus-pop/rizz-backend-sub002/internal/domain/rules"
	pgrepo "github.com/zus-pop/rizz-backend-sub002/internal/repo/postgres"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedDirection = errors.New("unsupported swipe direction")
)

// TooFastError reports a throttled like-direction swipe.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many swipes, retry in %ds", e.RetryAfterSec)
}

func IsTooFast(err error) (TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return tf, true
	}
	return TooFastError{}, false
}

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection, now time.Time) (model.Swipe, error)
	ReverseDirection(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (enums.SwipeDirection, bool, error)
	ListByActor(ctx context.Context, actorUserID int64, limit int) ([]model.Swipe, error)
}

type PairLocker interface {
	AcquirePairLock(ctx context.Context, tx pgx.Tx, userID, targetID int64) error
}

type MatchLifecycle interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, bool, error)
}

type EventPublisher interface {
	Enqueue(ctx context.Context, tx pgx.Tx, eventType string, payload any) error
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type Result struct {
	Swipe        model.Swipe
	MatchCreated bool
	MatchID      int64
}

type Service struct {
	pool        *pgxpool.Pool
	swipeStore  SwipeStore
	pairLocks   PairLocker
	lifecycle   MatchLifecycle
	events      EventPublisher
	rateLimiter RateLimiter
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	PairLocks   PairLocker
	Lifecycle   MatchLifecycle
	Events      EventPublisher
	RateLimiter RateLimiter
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:        deps.Pool,
		swipeStore:  deps.SwipeStore,
		pairLocks:   deps.PairLocks,
		lifecycle:   deps.Lifecycle,
		events:      deps.Events,
		rateLimiter: deps.RateLimiter,
		now:         time.Now,
	}
}

// Swipe validates and persists one swipe decision, emits swipe.performed, and
// creates a match when the decision makes the pair mutual. The whole write
// path runs in one transaction: a cancelled call leaves no partial effect.
func (s *Service) Swipe(ctx context.Context, actorUserID, targetUserID int64, direction string) (Result, error) {
	if actorUserID <= 0 || targetUserID <= 0 || actorUserID == targetUserID {
		return Result{}, ErrValidation
	}

	parsed, ok := enums.ParseSwipeDirection(direction)
	if !ok {
		return Result{}, ErrUnsupportedDirection
	}

	if parsed.IsLike() && s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actorUserID)
		if err != nil {
			return Result{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	if s.pool == nil || s.swipeStore == nil || s.pairLocks == nil || s.lifecycle == nil || s.events == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	var result Result
	if err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var err error
		result, err = s.swipeInTx(txCtx, tx, actorUserID, targetUserID, parsed)
		return err
	}); err != nil {
		return Result{}, err
	}

	return result, nil
}

func (s *Service) swipeInTx(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection) (Result, error) {
	// The pair lock serializes reciprocal swipes so the later committer always
	// sees the earlier swipe. Passes never create matches and skip it.
	if direction.IsLike() {
		if err := s.pairLocks.AcquirePairLock(ctx, tx, actorUserID, targetUserID); err != nil {
			return Result{}, err
		}
	}

	now := s.now().UTC()
	swipe, err := s.swipeStore.Upsert(ctx, tx, actorUserID, targetUserID, direction, now)
	if err != nil {
		return Result{}, err
	}

	// swipe.performed goes out for every decision, Pass included, so audit and
	// analytics consumers see the full stream.
	if err := s.events.Enqueue(ctx, tx, model.EventSwipePerformed, model.SwipePerformedPayload{
		SwipeID:      swipe.ID,
		ActorUserID:  swipe.ActorUserID,
		TargetUserID: swipe.TargetUserID,
		Direction:    string(swipe.Direction),
		OccurredAt:   swipe.CreatedAt,
	}); err != nil {
		return Result{}, err
	}

	result := Result{Swipe: swipe}
	if !direction.IsLike() {
		// A Pass after a formed match does not retire the match.
		return result, nil
	}

	reverse, found, err := s.swipeStore.ReverseDirection(ctx, tx, actorUserID, targetUserID)
	if err != nil {
		return Result{}, err
	}
	if !found || rules.DecideMutual(direction, reverse) != rules.DecisionMutual {
		return result, nil
	}

	match, created, err := s.lifecycle.CreateIfAbsent(ctx, tx, actorUserID, targetUserID)
	if err != nil {
		return Result{}, err
	}

	result.MatchCreated = created
	result.MatchID = match.ID

	return result, nil
}

func (s *Service) ListByActor(ctx context.Context, actorUserID int64, limit int) ([]model.Swipe, error) {
	if actorUserID <= 0 {
		return nil, ErrValidation
	}
	if s.swipeStore == nil {
		return nil, fmt.Errorf("swipe dependencies are not configured")
	}

	return s.swipeStore.ListByActor(ctx, actorUserID, limit)
}
