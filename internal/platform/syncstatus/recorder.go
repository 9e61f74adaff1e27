// Package syncstatus stores the outcome of price sync runs.
package syncstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/usecase"
)

var (
	_ usecase.SyncRecorder = (*RedisRecorder)(nil)
	_ usecase.SyncRecorder = (*MemoryRecorder)(nil)
)

// RedisRecorder keeps the last sync report in Redis so that every server
// instance reports the same status.
type RedisRecorder struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedisRecorder creates a recorder backed by rdb.
// A ttl of 0 keeps the report until it is overwritten. If namespace is empty, it uses "sync".
func NewRedisRecorder(rdb *redis.Client, ttl time.Duration, namespace string) *RedisRecorder {
	if namespace == "" {
		namespace = "sync"
	}
	return &RedisRecorder{rdb: rdb, ttl: ttl, namespace: namespace}
}

// lastRunKey returns the Redis key holding the last report.
func (r *RedisRecorder) lastRunKey() string {
	return safe(r.namespace) + ":last_run"
}

// RecordRun overwrites the stored report with report.
func (r *RedisRecorder) RecordRun(ctx context.Context, report entity.SyncReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sync report: %w", err)
	}
	return r.rdb.Set(ctx, r.lastRunKey(), b, r.ttl).Err()
}

// LastRun returns the stored report, or nil if no run has been recorded.
// A corrupted entry is deleted and treated as missing.
func (r *RedisRecorder) LastRun(ctx context.Context) (*entity.SyncReport, error) {
	b, err := r.rdb.Get(ctx, r.lastRunKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var report entity.SyncReport
	if err := json.Unmarshal(b, &report); err != nil {
		_ = r.rdb.Del(ctx, r.lastRunKey()).Err()
		return nil, nil
	}
	return &report, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// MemoryRecorder keeps the last report in process memory.
// Used when Redis is not configured.
type MemoryRecorder struct {
	mu   sync.RWMutex
	last *entity.SyncReport
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) RecordRun(_ context.Context, report entity.SyncReport) error {
	report.Failures = append([]entity.SyncFailure(nil), report.Failures...)
	m.mu.Lock()
	m.last = &report
	m.mu.Unlock()
	return nil
}

func (m *MemoryRecorder) LastRun(_ context.Context) (*entity.SyncReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil, nil
	}
	out := *m.last
	return &out, nil
}
