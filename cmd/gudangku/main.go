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

	"github.com/gudangku/gudangku/internal/app"
	"github.com/gudangku/gudangku/internal/observability"
	"github.com/gudangku/gudangku/internal/platform/cache"
	"github.com/gudangku/gudangku/internal/platform/db"
	"github.com/gudangku/gudangku/internal/product"
	"github.com/gudangku/gudangku/internal/purchase"
	"github.com/gudangku/gudangku/internal/purchase/hub"
	"github.com/gudangku/gudangku/internal/stock"
	"github.com/gudangku/gudangku/internal/webhook"
	"github.com/gudangku/gudangku/jobs"
	"github.com/gudangku/gudangku/migrations"
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

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, cfg.PGDSN, migrations.FS); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stats cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	statsCache := cache.NewCache(redisClient, cfg.StatsCacheTTL)

	productRepo := product.NewRepository(pool)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(logger, productService)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo)
	stockHandler := stock.NewHandler(logger, stockService)

	hubClient := hub.NewClient(cfg.HubBaseURL, cfg.HubSecretKey)

	purchaseRepo := purchase.NewRepository(pool)
	purchaseService := purchase.NewService(purchaseRepo, hubClient, statsCache)
	purchaseHandler := purchase.NewHandler(logger, purchaseService)

	webhookRepo := webhook.NewRepository(pool)
	webhookService := webhook.NewService(webhookRepo, statsCache)
	webhookHandler := webhook.NewHandler(logger, webhookService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ProductHandler:  productHandler,
		StockHandler:    stockHandler,
		PurchaseHandler: purchaseHandler,
		WebhookHandler:  webhookHandler,
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
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
