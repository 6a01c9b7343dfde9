package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mediboard/mediboard/internal/activity"
	activityhttp "github.com/mediboard/mediboard/internal/activity/http"
	"github.com/mediboard/mediboard/internal/app"
	"github.com/mediboard/mediboard/internal/auth"
	"github.com/mediboard/mediboard/internal/commissions"
	"github.com/mediboard/mediboard/internal/dashboard"
	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/observability"
	"github.com/mediboard/mediboard/internal/platform/cache"
	"github.com/mediboard/mediboard/internal/remote"
	"github.com/mediboard/mediboard/internal/roles"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/users"
	"github.com/mediboard/mediboard/internal/view"
	"github.com/mediboard/mediboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "mediboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	apiClient := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger,
		remote.WithServiceToken(cfg.APIServiceToken),
		remote.WithEnrichLimit(cfg.EnrichConcurrency),
	)

	guardMW := guard.Middleware{Logger: logger}

	authService := auth.NewService(apiClient, sessionManager, logger)
	authHandler := auth.NewHandler(authService, templates, csrfManager, logger)

	activityCache := activity.NewCache(redisClient, cfg.SnapshotTTL)
	activityService := activity.NewService(apiClient, activityCache, logger)
	activityHandler := activityhttp.NewHandler(activityService, templates, csrfManager, logger)

	usersService := users.NewService(apiClient)
	usersHandler := users.NewHandler(usersService, templates, csrfManager, logger)

	rolesService := roles.NewService(apiClient, apiClient)
	rolesHandler := roles.NewHandler(rolesService, templates, csrfManager, logger)

	commissionsService := commissions.NewService(apiClient)

	dashboardHandler := dashboard.NewHandler(
		activityService,
		usersService,
		rolesService,
		commissionsService,
		templates,
		csrfManager,
		guardMW,
		logger,
	)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		ActivityHandler:  activityHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		JobHandler:       jobHandler,
		Guard:            guardMW,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
