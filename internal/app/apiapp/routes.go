package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zus-pop/rizz-backend-sub002/internal/config"
	matchessvc "github.com/zus-pop/rizz-backend-sub002/internal/services/matches"
	swipesvc "github.com/zus-pop/rizz-backend-sub002/internal/services/swipes"
	"github.com/zus-pop/rizz-backend-sub002/internal/transport/http/handlers"
)

type Dependencies struct {
	SwipeService *swipesvc.Service
	MatchService *matchessvc.Service
	Logger       *zap.Logger
	Config       config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)

	r.Get("/healthz", healthHandler.Get)
	r.Get("/health", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/swipes", swipeHandler.Handle)
		r.Post("/matches/unmatch", matchesHandler.Unmatch)
		r.Get("/users/{userID}/swipes", swipeHandler.ListByUser)
		r.Get("/users/{userID}/matches", matchesHandler.ListByUser)
	})
}
