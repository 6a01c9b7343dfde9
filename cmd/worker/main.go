package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/app"
	"github.com/mediboard/mediboard/internal/platform/cache"
	"github.com/mediboard/mediboard/internal/remote"
	"github.com/mediboard/mediboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	if cfg.APIServiceToken == "" {
		logger.Warn("no api service token configured, snapshot refresh will fail until one is set")
	}

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

	apiClient := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger,
		remote.WithServiceToken(cfg.APIServiceToken),
		remote.WithEnrichLimit(cfg.EnrichConcurrency),
	)

	activityCache := activity.NewCache(redisClient, cfg.SnapshotTTL)
	activityService := activity.NewService(apiClient, activityCache, logger)

	refreshJob := jobs.NewSnapshotRefreshJob(activityService, logger, nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskActivitySnapshotRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: jobs.NewActivitySnapshotRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
