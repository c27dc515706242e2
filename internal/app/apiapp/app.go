package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zus-pop/rizz-backend-sub002/internal/config"
	pgrepo "github.com/zus-pop/rizz-backend-sub002/internal/repo/postgres"
	redrepo "github.com/zus-pop/rizz-backend-sub002/internal/repo/redis"
	matchessvc "github.com/zus-pop/rizz-backend-sub002/internal/services/matches"
	outboxsvc "github.com/zus-pop/rizz-backend-sub002/internal/services/outbox"
	ratesvc "github.com/zus-pop/rizz-backend-sub002/internal/services/rate"
	swipesvc "github.com/zus-pop/rizz-backend-sub002/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	outboxRepo := pgrepo.NewOutboxRepo(pool)

	// The API process only enqueues events; delivery lives in the dispatcher.
	eventPublisher := outboxsvc.NewService(outboxRepo, nil, outboxsvc.Config{}, log)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.SwipesPerMinute, cfg.Limits.SwipesPer10Sec)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:       pool,
		MatchStore: matchRepo,
		Events:     eventPublisher,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		PairLocks:   matchRepo,
		Lifecycle:   matchesService,
		Events:      eventPublisher,
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		SwipeService: swipeService,
		MatchService: matchesService,
		Logger:       log,
		Config:       cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
