package dispatcherapp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zus-pop/rizz-backend-sub002/internal/config"
	"github.com/zus-pop/rizz-backend-sub002/internal/infra/httpclient"
	"github.com/zus-pop/rizz-backend-sub002/internal/jobs/dispatch"
	pgrepo "github.com/zus-pop/rizz-backend-sub002/internal/repo/postgres"
	outboxsvc "github.com/zus-pop/rizz-backend-sub002/internal/services/outbox"
)

// App is the outbox delivery worker. It polls for due events and pushes them
// to the configured consumer endpoints; the API process never delivers.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	postgres    *pgxpool.Pool
	dispatchJob *dispatch.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for dispatcher app: %w", err)
	}

	endpoints := make([]outboxsvc.Endpoint, 0, len(cfg.Outbox.Consumers))
	for _, consumer := range cfg.Outbox.Consumers {
		endpoints = append(endpoints, outboxsvc.Endpoint{
			Name: consumer.Name,
			URL:  consumer.URL,
		})
	}
	if len(endpoints) == 0 {
		logger.Warn("no outbox consumers configured, every delivery attempt will fail")
	}

	outboxRepo := pgrepo.NewOutboxRepo(pool)
	sink := outboxsvc.NewWebhookSink(httpclient.New(cfg.Outbox.AttemptTimeout), endpoints)
	outboxService := outboxsvc.NewService(outboxRepo, sink, outboxsvc.Config{
		BatchSize:      cfg.Outbox.BatchSize,
		MaxAttempts:    cfg.Outbox.MaxAttempts,
		BaseBackoff:    cfg.Outbox.BaseBackoff,
		MaxBackoff:     cfg.Outbox.MaxBackoff,
		AttemptTimeout: cfg.Outbox.AttemptTimeout,
	}, logger)

	return &App{
		cfg:         cfg,
		logger:      logger,
		postgres:    pool,
		dispatchJob: dispatch.New(outboxService, logger),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("dispatcher app started")

	interval := a.cfg.Outbox.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	a.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("dispatcher app stopped")
			return nil
		case <-ticker.C:
			a.runOnce(ctx)
		}
	}
}

// runOnce logs and swallows pass errors: a flaky database or consumer must not
// bring the worker down, the next tick retries.
func (a *App) runOnce(ctx context.Context) {
	if err := a.dispatchJob.Run(ctx); err != nil && ctx.Err() == nil {
		a.logger.Error("outbox delivery pass failed", zap.Error(err))
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}
