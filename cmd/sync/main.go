// Command sync は保有銘柄の価格同期を1回だけ実行して終了します。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_portfolio/internal/app/di"
	holdingadapters "stock_portfolio/internal/feature/holdings/adapters"
	"stock_portfolio/internal/feature/holdings/usecase"
	infradb "stock_portfolio/internal/platform/db"
	"stock_portfolio/internal/platform/logger"
	"stock_portfolio/internal/platform/metrics"
	infraredis "stock_portfolio/internal/platform/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not loaded, using process environment", "error", err)
	}

	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run は1回分の同期を実行します。os.Exitはrunの外でのみ呼び、deferによるクローズを必ず実行させます。
func run() (err error) {
	logCloser, err := logger.Init(logger.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		return err
	}
	defer func() { _ = logCloser.Close() }()
	defer func() {
		if err != nil {
			slog.Error("price sync failed", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis
	var rdb *redisv9.Client
	if rcfg := infraredis.LoadConfig(); rcfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, rcfg); err != nil {
			slog.Warn("Redis unavailable. Sync status will not be persisted.", "error", err)
		} else {
			rdb = tmp
			defer func() { _ = rdb.Close() }()
		}
	}

	limiter, err := di.NewSyncRateLimiter()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	recorder := di.NewSyncRecorder(rdb, metrics.NewSyncMetrics(prometheus.NewRegistry()))
	uc := usecase.NewPriceSyncUsecase(holdingadapters.NewHoldingRepository(db), di.NewQuoteClient(), recorder, limiter)

	report, err := uc.SyncAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("sync ok", "updated", report.Updated, "failed", report.Failed())
	return nil
}
