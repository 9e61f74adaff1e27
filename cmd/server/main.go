package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_portfolio/internal/app/di"
	"stock_portfolio/internal/app/router"
	holdingadapters "stock_portfolio/internal/feature/holdings/adapters"
	"stock_portfolio/internal/feature/holdings/scheduler"
	holdinghandler "stock_portfolio/internal/feature/holdings/transport/handler"
	"stock_portfolio/internal/feature/holdings/usecase"
	infradb "stock_portfolio/internal/platform/db"
	"stock_portfolio/internal/platform/http/handler"
	"stock_portfolio/internal/platform/logger"
	"stock_portfolio/internal/platform/metrics"
	infraredis "stock_portfolio/internal/platform/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not loaded, using process environment", "error", err)
	}

	logCloser, err := logger.Init(logger.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis
	var rdb *redisv9.Client
	if rcfg := infraredis.LoadConfig(); rcfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, rcfg); err != nil {
			slog.Warn("Redis unavailable. Keeping sync status in memory.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics := metrics.NewSyncMetrics(reg)

	// Repository / external
	holdingRepo := holdingadapters.NewHoldingRepository(db)
	quotes := di.NewQuoteClient()
	recorder := di.NewSyncRecorder(rdb, syncMetrics)
	limiter, err := di.NewSyncRateLimiter()
	if err != nil {
		return err
	}

	// Usecase
	holdingUC := usecase.NewHoldingUsecase(holdingRepo, quotes)
	syncUC := usecase.NewPriceSyncUsecase(holdingRepo, quotes, recorder, limiter)

	// Scheduler
	schedCfg, err := scheduler.LoadConfig()
	if err != nil {
		return err
	}
	sched := scheduler.NewPriceSyncScheduler(syncUC, schedCfg)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Start(ctx)
	}()

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Holdings: holdinghandler.NewHoldingHandler(holdingUC),
		Sync:     holdinghandler.NewSyncHandler(syncUC),
		Health:   handler.NewHealthHandler(sqlDB),
		Metrics:  metrics.Handler(reg),
	}, router.AllowedOriginsFromEnv())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			stop()
			<-schedDone
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	// 実行中の同期処理が完了するまで待つ
	<-schedDone
	slog.Info("server stopped")
	return nil
}
