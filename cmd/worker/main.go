package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gudangku/gudangku/internal/app"
	"github.com/gudangku/gudangku/internal/observability"
	"github.com/gudangku/gudangku/internal/platform/cache"
	"github.com/gudangku/gudangku/internal/platform/db"
	"github.com/gudangku/gudangku/internal/purchase"
	"github.com/gudangku/gudangku/internal/purchase/hub"
	"github.com/gudangku/gudangku/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	statsCache := cache.NewCache(redisClient, cfg.StatsCacheTTL)

	purchaseRepo := purchase.NewRepository(pool)
	hubClient := hub.NewClient(cfg.HubBaseURL, cfg.HubSecretKey)
	purchaseService := purchase.NewService(purchaseRepo, hubClient, statsCache)

	metrics := observability.NewMetrics()

	warmupTask, err := jobs.NewStatsWarmupTask(time.Now())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	staleTask, err := jobs.NewStaleScanTask(time.Now())
	if err != nil {
		logger.Error("build stale scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatsWarmup, Handler: jobs.HandleStatsWarmup(purchaseService, metrics, logger)},
			{Type: jobs.TaskStaleScan, Handler: jobs.HandleStaleScan(purchaseRepo, cfg.StalePendingAge, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: staleTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
