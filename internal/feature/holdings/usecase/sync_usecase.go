package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/shared/ratelimiter"
)

// PriceSyncUsecase は保存済みの全保有銘柄の現在価格をプロバイダーから再取得します。
type PriceSyncUsecase struct {
	holdings    HoldingRepository
	quotes      QuoteClient
	recorder    SyncRecorder
	rateLimiter ratelimiter.RateLimiterInterface
	now         func() time.Time
}

// NewPriceSyncUsecase は新しい PriceSyncUsecase を作成します。
func NewPriceSyncUsecase(holdings HoldingRepository, quotes QuoteClient, recorder SyncRecorder, rateLimiter ratelimiter.RateLimiterInterface) *PriceSyncUsecase {
	return &PriceSyncUsecase{
		holdings:    holdings,
		quotes:      quotes,
		recorder:    recorder,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// syncOne は1銘柄のクォートを取得し、現在価格の列だけを更新します。
func (su *PriceSyncUsecase) syncOne(ctx context.Context, h entity.Holding) (float64, error) {
	q, err := su.quotes.FetchQuote(ctx, h.Ticker)
	if err != nil {
		return 0, err
	}
	if err := su.holdings.UpdateCurrentPrice(ctx, h.ID, q.Close); err != nil {
		return 0, fmt.Errorf("update current price: %w", err)
	}
	return q.Close, nil
}

// failureReason はエラーを固定の失敗理由に分類します。
func failureReason(err error) string {
	var pe *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrInvalidSymbol):
		return entity.ReasonInvalidSymbol
	case errors.As(err, &pe):
		return entity.ReasonProviderError
	case errors.Is(err, domain.ErrProviderUnavailable):
		return entity.ReasonUnavailable
	default:
		return entity.ReasonStore
	}
}

// SyncAll は保有銘柄を一覧の順に処理します。
// 1銘柄の失敗で処理を止めず、失敗した銘柄の価格はそのまま残してレポートに記録します。
// 一覧の取得に失敗した場合のみエラーを返します。
func (su *PriceSyncUsecase) SyncAll(ctx context.Context) (entity.SyncReport, error) {
	report := entity.SyncReport{StartedAt: su.now(), Failures: []entity.SyncFailure{}}

	hs, err := su.holdings.FindAll(ctx)
	if err != nil {
		slog.Error("failed to list holdings for price sync", "error", err)
		return report, fmt.Errorf("list holdings: %w", err)
	}
	report.Total = len(hs)

	for _, h := range hs {
		su.rateLimiter.WaitIfNeeded()
		price, err := su.syncOne(ctx, h)
		if err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の銘柄へ進む
			slog.Error("failed to refresh price", "holding_id", h.ID, "ticker", h.Ticker, "error", err)
			report.Failures = append(report.Failures, entity.SyncFailure{
				HoldingID: h.ID,
				Ticker:    h.Ticker,
				Reason:    failureReason(err),
				Error:     err.Error(),
			})
			continue
		}
		slog.Debug("refreshed price", "holding_id", h.ID, "ticker", h.Ticker, "price", price)
		report.Updated++
	}
	report.FinishedAt = su.now()

	if err := su.recorder.RecordRun(ctx, report); err != nil {
		slog.Warn("failed to record sync run", "error", err)
	}
	slog.Info("price sync finished",
		"total", report.Total,
		"updated", report.Updated,
		"failed", report.Failed(),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

// LastRun は直近の同期結果を返します。
func (su *PriceSyncUsecase) LastRun(ctx context.Context) (*entity.SyncReport, error) {
	return su.recorder.LastRun(ctx)
}
