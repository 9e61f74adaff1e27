// Package usecase は保有銘柄の操作と株価同期のビジネスロジックを実装します。
package usecase

import (
	"context"

	"stock_portfolio/internal/feature/holdings/domain/entity"
)

// QuoteClient は外部の株価プロバイダーへのアクセスを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteClient interface {
	// FetchQuote は正規化済みシンボルの最新クォートを取得します。
	FetchQuote(ctx context.Context, symbol string) (entity.Quote, error)
	// FetchHistoricalSeries はintervalとoutputsizeをそのまま渡して時系列の終値を取得します。
	FetchHistoricalSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.PricePoint, error)
}

// HoldingRepository は保有銘柄の永続化レイヤーを抽象化します。
type HoldingRepository interface {
	// Save は保有銘柄を保存し、IDが割り当てられた保存後のレコードを返します。
	Save(ctx context.Context, h entity.Holding) (entity.Holding, error)
	// FindByID は存在しない場合 domain.ErrNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Holding, error)
	// FindAll はストアの順序（ID昇順）で全件を返します。
	FindAll(ctx context.Context) ([]entity.Holding, error)
	// DeleteByID は存在しない場合 domain.ErrNotFound を返します。
	DeleteByID(ctx context.Context, id uint) error
	// UpdateCurrentPrice は現在価格の列のみを更新します。
	UpdateCurrentPrice(ctx context.Context, id uint, price float64) error
}

// SyncRecorder は同期処理の結果を記録します。
type SyncRecorder interface {
	// RecordRun は完了した同期処理のレポートを保存します。
	RecordRun(ctx context.Context, report entity.SyncReport) error
	// LastRun は直近のレポートを返します。まだ記録がない場合は nil を返します。
	LastRun(ctx context.Context) (*entity.SyncReport, error)
}
