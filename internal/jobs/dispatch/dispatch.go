package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	outboxsvc "github.com/zus-pop/rizz-backend-sub002/internal/services/outbox"
)

type Deliverer interface {
	DeliverPending(ctx context.Context) (outboxsvc.Stats, error)
}

// Job runs one delivery pass over the outbox. The dispatcher app drives it on
// a ticker; a pass that finds nothing due is silent.
type Job struct {
	deliverer Deliverer
	logger    *zap.Logger
}

func New(deliverer Deliverer, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		deliverer: deliverer,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.deliverer == nil {
		return nil
	}

	stats, err := j.deliverer.DeliverPending(ctx)
	if err != nil {
		return fmt.Errorf("deliver pending events: %w", err)
	}

	if stats.Delivered > 0 || stats.Retried > 0 || stats.Failed > 0 {
		j.logger.Info("outbox delivery pass completed",
			zap.Int("delivered", stats.Delivered),
			zap.Int("retried", stats.Retried),
			zap.Int("failed", stats.Failed),
		)
	}

	return nil
}
