// Package app assembles repositories, services and the HTTP router.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpump/platform/internal/auth"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/handler"
	adminhandler "github.com/xpump/platform/internal/handler/admin"
	"github.com/xpump/platform/internal/infra"
	"github.com/xpump/platform/internal/infra/metrics"
	"github.com/xpump/platform/internal/ledger"
	"github.com/xpump/platform/internal/ranking"
	"github.com/xpump/platform/internal/repository"
	"github.com/xpump/platform/internal/scoring"
	"github.com/xpump/platform/internal/service"
	"github.com/xpump/platform/internal/settings"
)

// Services holds every service the API and the admin CLI share.
type Services struct {
	Settings    *settings.Provider
	SeasonBonus *scoring.SeasonBonus

	Activity      *service.ActivityService
	Streaks       *service.StreakService
	Progress      *service.ProgressService
	Ranking       *service.RankingService
	Audit         *service.AuditService
	SettingsAdmin *service.SettingsService
}

// NewServices wires repositories and services against pool. The settings
// provider starts empty; callers Reload it before serving traffic.
func NewServices(pool *pgxpool.Pool, cfg *infra.Config, logger *slog.Logger) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Repositories
	settingsRepo := repository.NewSettingsRepository()
	scoreRepo := repository.NewScoreRepository()
	streakRepo := repository.NewStreakRepository()
	seasonRepo := repository.NewSeasonRepository()
	groupRepo := repository.NewGroupRepository()
	profileRepo := repository.NewProfileRepository()
	workoutRepo := repository.NewWorkoutRepository()
	mealRepo := repository.NewMealRepository()
	mealConfigRepo := repository.NewMealConfigRepository()
	entryRepo := repository.NewXPEntryRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Engine
	provider := settings.NewProvider(settingsRepo, pool, logger)
	engine := ledger.NewEngine(scoreRepo, entryRepo, outboxRepo)
	groupRanking := ranking.NewService(groupRepo, scoreRepo)

	seasonBonus, err := scoring.NewSeasonBonus(profileRepo, seasonRepo, groupRepo, groupRanking, cfg.SeasonCacheSize, cfg.SeasonCacheTTL, loc, logger)
	if err != nil {
		return nil, fmt.Errorf("season bonus: %w", err)
	}
	provider.OnReload(func(*domain.Settings) { seasonBonus.Purge() })

	activity := service.NewActivityService(pool, provider, engine,
		scoring.NewWorkoutScorer(seasonBonus, cfg.WorkoutStreakMultiplierEnabled),
		scoring.NewMealScorer(seasonBonus),
		service.ActivityRepos{
			Workouts:    workoutRepo,
			Meals:       mealRepo,
			MealConfigs: mealConfigRepo,
			Streaks:     streakRepo,
			Outbox:      outboxRepo,
		},
		loc, cfg.DefaultWorkoutFrequency, logger)

	return &Services{
		Settings:      provider,
		SeasonBonus:   seasonBonus,
		Activity:      activity,
		Streaks:       service.NewStreakService(pool, engine, streakRepo, workoutRepo, outboxRepo, loc, cfg.DefaultWorkoutFrequency, logger),
		Progress:      service.NewProgressService(pool, provider, scoreRepo, streakRepo),
		Ranking:       service.NewRankingService(pool, groupRanking),
		Audit:         service.NewAuditService(pool, provider, scoreRepo, entryRepo),
		SettingsAdmin: service.NewSettingsService(pool, provider, settingsRepo, outboxRepo, logger),
	}, nil
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool        *pgxpool.Pool
	Services    *Services
	JWTMgr      *auth.JWTManager
	Logger      *slog.Logger
	CORSOrigins string

	// CheckinLimiter throttles POST /workouts and /meals; nil disables it.
	CheckinLimiter handler.CheckinLimiter
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	svc := deps.Services
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Handlers
	activityHandler := handler.NewActivityHandler(svc.Activity)
	progressHandler := handler.NewProgressHandler(svc.Progress, svc.Streaks, svc.Audit)
	rankingHandler := handler.NewRankingHandler(svc.Ranking)

	// Admin handlers
	settingsAdmin := adminhandler.NewSettingsAdminHandler(svc.SettingsAdmin)
	ledgerAdmin := adminhandler.NewLedgerAdminHandler(svc.Audit)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))

	// Unauthenticated
	r.Get("/health", handler.JSONContentType(handler.HealthHandler(deps.Pool, svc.Settings)).ServeHTTP)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Group(func(r chi.Router) {
			if deps.CheckinLimiter != nil {
				r.Use(handler.RateLimitCheckins(deps.CheckinLimiter))
			}
			r.Post("/workouts", activityHandler.LogWorkout)
			r.Post("/meals", activityHandler.LogMeal)
		})
		r.Delete("/workouts/{id}", activityHandler.DeleteWorkout)
		r.Delete("/meals/{id}", activityHandler.DeleteMeal)

		r.Route("/me", func(r chi.Router) {
			r.Get("/progress", progressHandler.GetMine)
			r.Get("/xp-entries", progressHandler.GetHistory)
			r.Put("/streaks/workout/frequency", progressHandler.SetWorkoutFrequency)
		})

		r.Route("/groups/{id}/ranking", func(r chi.Router) {
			r.Get("/", rankingHandler.Leaderboard)
			r.Get("/me", rankingHandler.MyStanding)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(handler.JSONContentType)
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Get("/settings", settingsAdmin.Get)
		r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/settings/reload", settingsAdmin.Reload)
		r.Get("/users/{id}/ledger/verify", ledgerAdmin.Verify)
	})

	return r
}
