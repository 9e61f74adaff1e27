package di

import (
	"github.com/redis/go-redis/v9"

	"stock_portfolio/internal/feature/holdings/usecase"
	"stock_portfolio/internal/platform/metrics"
	"stock_portfolio/internal/platform/syncstatus"
)

// NewSyncRecorder creates a SyncRecorder implementation instrumented with m.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewSyncRecorder(rdb *redis.Client, m *metrics.SyncMetrics) usecase.SyncRecorder {
	var inner usecase.SyncRecorder
	if rdb != nil {
		inner = syncstatus.NewRedisRecorder(rdb, 0, "sync")
	} else {
		inner = syncstatus.NewMemoryRecorder()
	}
	return metrics.NewInstrumentedRecorder(inner, m)
}
