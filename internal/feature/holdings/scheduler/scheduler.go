// Package scheduler は保有銘柄の価格同期を一定間隔で起動します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"stock_portfolio/internal/feature/holdings/domain/entity"
)

// DefaultInterval は同期処理の起動間隔のデフォルト値です。
const DefaultInterval = 10 * time.Minute

// Syncer は1回分の価格同期を実行します。
type Syncer interface {
	SyncAll(ctx context.Context) (entity.SyncReport, error)
}

// Config はスケジューラーの設定です。
type Config struct {
	Interval time.Duration
	// SingleFlight が true の場合、実行中の同期がある間のティックはスキップされます。
	SingleFlight bool
}

// LoadConfig は SYNC_INTERVAL と SYNC_SINGLE_FLIGHT からConfigを読み込みます。
func LoadConfig() (Config, error) {
	cfg := Config{Interval: DefaultInterval}

	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", d)
		}
		cfg.Interval = d
	}

	if v := os.Getenv("SYNC_SINGLE_FLIGHT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SYNC_SINGLE_FLIGHT %q: %w", v, err)
		}
		cfg.SingleFlight = b
	}
	return cfg, nil
}

// PriceSyncScheduler は固定レートで Syncer を起動します。
// 各ティックは独立したゴルーチンで実行されるため、前回の同期が終わっていなくても次の同期が開始されます。
type PriceSyncScheduler struct {
	syncer Syncer
	cfg    Config

	wg      sync.WaitGroup
	running atomic.Int32
}

// NewPriceSyncScheduler は新しいスケジューラーを生成します。
func NewPriceSyncScheduler(syncer Syncer, cfg Config) *PriceSyncScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &PriceSyncScheduler{syncer: syncer, cfg: cfg}
}

// Start は起動直後に1回同期を実行し、その後 Interval ごとに同期を起動します。
// ctx がキャンセルされると新しいティックを止め、実行中の同期の完了を待ってから戻ります。
// 実行中の同期はキャンセルされません。
func (s *PriceSyncScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("price sync scheduler started", "interval", s.cfg.Interval, "single_flight", s.cfg.SingleFlight)

	runCtx := context.WithoutCancel(ctx)
	s.launch(runCtx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("price sync scheduler stopping, waiting for in-flight runs", "running", s.Running())
			s.wg.Wait()
			slog.Info("price sync scheduler stopped")
			return
		case <-ticker.C:
			s.launch(runCtx)
		}
	}
}

// Running は実行中の同期の数を返します。
func (s *PriceSyncScheduler) Running() int {
	return int(s.running.Load())
}

func (s *PriceSyncScheduler) launch(ctx context.Context) {
	if s.cfg.SingleFlight {
		if !s.running.CompareAndSwap(0, 1) {
			slog.Warn("price sync still running, skipping tick")
			return
		}
	} else {
		s.running.Add(1)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Add(-1)

		if _, err := s.syncer.SyncAll(ctx); err != nil {
			slog.Error("price sync run failed", "error", err)
		}
	}()
}
