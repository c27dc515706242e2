package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

// Store is the durable outbox. The dispatcher is the only writer of delivery
// state; producers only ever insert through Enqueue.
type Store interface {
	InsertTx(ctx context.Context, tx pgx.Tx, event model.DomainEvent) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.DomainEvent, error)
	MarkDelivered(ctx context.Context, eventID uuid.UUID, now time.Time) error
	MarkAttemptFailed(ctx context.Context, eventID uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string, terminal bool) error
}

// Sink delivers one event to the downstream consumers. Delivery is
// at-least-once; consumers de-duplicate on the event id.
type Sink interface {
	Deliver(ctx context.Context, event model.DomainEvent) error
}

type Config struct {
	BatchSize      int
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	AttemptTimeout time.Duration
}

type Stats struct {
	Delivered int
	Retried   int
	Failed    int
}

type Service struct {
	store  Store
	sink   Sink
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, sink Sink, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Minute
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue records an event in the caller's transaction. The event becomes
// visible to the delivery loop only once that transaction commits, so a
// consumer can never observe an event before the state change it describes.
func (s *Service) Enqueue(ctx context.Context, tx pgx.Tx, eventType string, payload any) error {
	if s.store == nil {
		return fmt.Errorf("outbox store is nil")
	}
	if eventType == "" || payload == nil {
		return ErrValidation
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	event := model.DomainEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    body,
		OccurredAt: s.now().UTC(),
		Status:     model.EventStatusPending,
	}

	if err := s.store.InsertTx(ctx, tx, event); err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}

	return nil
}

// DeliverPending drains one batch of due events. Each attempt either marks the
// event delivered or pushes it further into backoff; after the attempt budget
// is spent the event is parked as failed and surfaced in the logs, never dropped.
func (s *Service) DeliverPending(ctx context.Context) (Stats, error) {
	if s.store == nil || s.sink == nil {
		return Stats{}, fmt.Errorf("outbox dependencies are not configured")
	}

	now := s.now().UTC()
	events, err := s.store.ListDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return Stats{}, fmt.Errorf("list due events: %w", err)
	}

	var stats Stats
	for _, event := range events {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		if err := s.deliverOne(ctx, event); err != nil {
			attempts := event.Attempts + 1
			terminal := attempts >= s.cfg.MaxAttempts
			nextAttemptAt := s.now().UTC().Add(s.backoff(attempts))

			if markErr := s.store.MarkAttemptFailed(ctx, event.ID, attempts, nextAttemptAt, err.Error(), terminal); markErr != nil {
				return stats, fmt.Errorf("record failed attempt: %w", markErr)
			}

			if terminal {
				stats.Failed++
				s.logger.Error("outbox event moved to failed state",
					zap.String("event_id", event.ID.String()),
					zap.String("event_type", event.EventType),
					zap.Int("attempts", attempts),
					zap.Error(err),
				)
			} else {
				stats.Retried++
				s.logger.Warn("outbox delivery attempt failed",
					zap.String("event_id", event.ID.String()),
					zap.String("event_type", event.EventType),
					zap.Int("attempts", attempts),
					zap.Time("next_attempt_at", nextAttemptAt),
					zap.Error(err),
				)
			}
			continue
		}

		if err := s.store.MarkDelivered(ctx, event.ID, s.now().UTC()); err != nil {
			return stats, fmt.Errorf("mark event delivered: %w", err)
		}
		stats.Delivered++
	}

	return stats, nil
}

func (s *Service) deliverOne(ctx context.Context, event model.DomainEvent) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	defer cancel()

	return s.sink.Deliver(attemptCtx, event)
}

func (s *Service) backoff(attempts int) time.Duration {
	backoff := s.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff >= s.cfg.MaxBackoff {
			return s.cfg.MaxBackoff
		}
	}
	if backoff > s.cfg.MaxBackoff {
		return s.cfg.MaxBackoff
	}
	return backoff
}
