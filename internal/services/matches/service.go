package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
	pgrepo "github.com/zus-pop/rizz-backend-sub002/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("match not found")
	ErrForbidden  = errors.New("user is not a participant of the match")
)

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (model.Match, bool, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (model.Match, error)
	Retire(ctx context.Context, tx pgx.Tx, matchID, byUserID int64, now time.Time) error
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]model.Match, error)
}

type EventPublisher interface {
	Enqueue(ctx context.Context, tx pgx.Tx, eventType string, payload any) error
}

// Service owns the match lifecycle: it is the only writer of match rows and
// the only producer of match.created / match.unmatched events.
type Service struct {
	pool       *pgxpool.Pool
	matchStore MatchStore
	events     EventPublisher
	now        func() time.Time
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	MatchStore MatchStore
	Events     EventPublisher
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:       deps.Pool,
		matchStore: deps.MatchStore,
		events:     deps.Events,
		now:        time.Now,
	}
}

// CreateIfAbsent runs inside the ingestion transaction. Repeated calls for the
// same unordered pair return the existing active match with created=false and
// emit no second match.created event; a lost insert race is absorbed the same
// way and never surfaces as an error.
func (s *Service) CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return model.Match{}, false, ErrValidation
	}
	if s.matchStore == nil || s.events == nil {
		return model.Match{}, false, fmt.Errorf("match dependencies are not configured")
	}

	now := s.now().UTC()
	match, created, err := s.matchStore.CreateIfAbsent(ctx, tx, userID, targetID, now)
	if err != nil {
		return model.Match{}, false, err
	}

	if created {
		if err := s.events.Enqueue(ctx, tx, model.EventMatchCreated, model.MatchCreatedPayload{
			MatchID:   match.ID,
			UserAID:   match.UserAID,
			UserBID:   match.UserBID,
			MatchedAt: match.MatchedAt,
		}); err != nil {
			return model.Match{}, false, err
		}
	}

	return match, created, nil
}

func (s *Service) Unmatch(ctx context.Context, matchID, byUserID int64) (model.Match, error) {
	if matchID <= 0 || byUserID <= 0 {
		return model.Match{}, ErrValidation
	}
	if s.pool == nil || s.matchStore == nil || s.events == nil {
		return model.Match{}, fmt.Errorf("match dependencies are not configured")
	}

	var retired model.Match
	if err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var err error
		retired, err = s.unmatchInTx(txCtx, tx, matchID, byUserID)
		return err
	}); err != nil {
		return model.Match{}, err
	}

	return retired, nil
}

func (s *Service) unmatchInTx(ctx context.Context, tx pgx.Tx, matchID, byUserID int64) (model.Match, error) {
	match, err := s.matchStore.GetByIDForUpdate(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, err
	}
	if !match.Active {
		return model.Match{}, ErrNotFound
	}
	if byUserID != match.UserAID && byUserID != match.UserBID {
		return model.Match{}, ErrForbidden
	}

	now := s.now().UTC()
	if err := s.matchStore.Retire(ctx, tx, matchID, byUserID, now); err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, err
	}

	if err := s.events.Enqueue(ctx, tx, model.EventMatchUnmatched, model.MatchUnmatchedPayload{
		MatchID:     match.ID,
		UserAID:     match.UserAID,
		UserBID:     match.UserBID,
		UnmatchedAt: now,
		UnmatchedBy: byUserID,
	}); err != nil {
		return model.Match{}, err
	}

	match.Active = false
	match.UnmatchedAt = &now
	match.UnmatchedBy = &byUserID

	return match, nil
}

func (s *Service) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]model.Match, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match dependencies are not configured")
	}

	return s.matchStore.ListActiveForUser(ctx, userID, limit)
}
