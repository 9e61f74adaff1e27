package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/domain/entity"
)

const (
	// HistoricalInterval は時系列取得時の足の間隔です。
	HistoricalInterval = "1h"
	// HistoricalOutputSize は時系列取得時の件数です。
	HistoricalOutputSize = 100
	// DefaultQuantity は作成・更新時に設定される株数です。
	DefaultQuantity int64 = 1
)

// HoldingUsecase は保有銘柄のCRUDと株価情報の取得を提供します。
type HoldingUsecase struct {
	holdings HoldingRepository
	quotes   QuoteClient
}

// NewHoldingUsecase はHoldingUsecaseの新しいインスタンスを生成します。
func NewHoldingUsecase(holdings HoldingRepository, quotes QuoteClient) *HoldingUsecase {
	return &HoldingUsecase{holdings: holdings, quotes: quotes}
}

// NormalizeTicker は前後の空白を除去し大文字に変換します。
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// resolve はティッカーを正規化し、プロバイダーで銘柄名と終値を解決します。
func (u *HoldingUsecase) resolve(ctx context.Context, ticker string) (string, entity.Quote, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return "", entity.Quote{}, fmt.Errorf("%w: empty ticker", domain.ErrInvalidSymbol)
	}

	q, err := u.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		return "", entity.Quote{}, err
	}
	// 通信が成功しても銘柄名が空なら解決できなかったものとして扱う
	if q.Name == "" {
		return "", entity.Quote{}, fmt.Errorf("%w: %s", domain.ErrResourceInvalid, symbol)
	}
	return symbol, q, nil
}

// Create はティッカーから新しい保有銘柄を作成します。
// 購入価格と現在価格には取得した終値を設定し、株数は1に固定します。
func (u *HoldingUsecase) Create(ctx context.Context, ticker string) (entity.Holding, error) {
	symbol, q, err := u.resolve(ctx, ticker)
	if err != nil {
		return entity.Holding{}, err
	}

	return u.holdings.Save(ctx, entity.Holding{
		Ticker:       symbol,
		CompanyName:  q.Name,
		Quantity:     DefaultQuantity,
		BuyPrice:     q.Close,
		CurrentPrice: q.Close,
	})
}

// GetByID は指定IDの保有銘柄を返します。
func (u *HoldingUsecase) GetByID(ctx context.Context, id uint) (entity.Holding, error) {
	h, err := u.holdings.FindByID(ctx, id)
	if err != nil {
		return entity.Holding{}, err
	}
	return *h, nil
}

// ListAll は全ての保有銘柄をストアの順序で返します。
func (u *HoldingUsecase) ListAll(ctx context.Context) ([]entity.Holding, error) {
	return u.holdings.FindAll(ctx)
}

// Update は保有銘柄を新しいティッカーで再解決し、銘柄名・価格を上書きします。
// IDは変更せず、株数は1に戻します。
func (u *HoldingUsecase) Update(ctx context.Context, id uint, ticker string) (entity.Holding, error) {
	existing, err := u.holdings.FindByID(ctx, id)
	if err != nil {
		return entity.Holding{}, err
	}

	symbol, q, err := u.resolve(ctx, ticker)
	if err != nil {
		return entity.Holding{}, err
	}

	existing.Ticker = symbol
	existing.CompanyName = q.Name
	existing.BuyPrice = q.Close
	existing.CurrentPrice = q.Close
	existing.Quantity = DefaultQuantity

	return u.holdings.Save(ctx, *existing)
}

// Delete は指定IDの保有銘柄を削除します。
func (u *HoldingUsecase) Delete(ctx context.Context, id uint) error {
	return u.holdings.DeleteByID(ctx, id)
}

// GetHistoricalData は直近100本の1時間足の（日時, 終値）をプロバイダーの順序で返します。
func (u *HoldingUsecase) GetHistoricalData(ctx context.Context, ticker string) ([]entity.PricePoint, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", domain.ErrInvalidSymbol)
	}
	return u.quotes.FetchHistoricalSeries(ctx, symbol, HistoricalInterval, HistoricalOutputSize)
}

// GetTickerInfo は銘柄のクォート情報をそのまま返します。
func (u *HoldingUsecase) GetTickerInfo(ctx context.Context, ticker string) (entity.Quote, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return entity.Quote{}, fmt.Errorf("%w: empty ticker", domain.ErrInvalidSymbol)
	}
	return u.quotes.FetchQuote(ctx, symbol)
}

// Summary はポートフォリオ全体の評価額と平均リターンを計算します。
// 平均リターンは購入価格が0の銘柄を除いた単純平均（%）で、小数第2位に丸めます。
func (u *HoldingUsecase) Summary(ctx context.Context) (entity.PortfolioSummary, error) {
	hs, err := u.holdings.FindAll(ctx)
	if err != nil {
		return entity.PortfolioSummary{}, err
	}

	hundred := decimal.NewFromInt(100)
	totalValue := decimal.Zero
	totalCost := decimal.Zero
	returns := decimal.Zero
	counted := 0
	for _, h := range hs {
		qty := decimal.NewFromInt(h.Quantity)
		buy := decimal.NewFromFloat(h.BuyPrice)
		cur := decimal.NewFromFloat(h.CurrentPrice)

		totalValue = totalValue.Add(qty.Mul(cur))
		totalCost = totalCost.Add(qty.Mul(buy))
		if buy.IsZero() {
			continue
		}
		returns = returns.Add(cur.Sub(buy).Div(buy).Mul(hundred))
		counted++
	}

	avg := decimal.Zero
	if counted > 0 {
		avg = returns.Div(decimal.NewFromInt(int64(counted)))
	}

	return entity.PortfolioSummary{
		TotalHoldings: len(hs),
		TotalValue:    totalValue.Round(2).InexactFloat64(),
		TotalCost:     totalCost.Round(2).InexactFloat64(),
		AverageReturn: avg.Round(2).InexactFloat64(),
	}, nil
}
