// Package handler はholdingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/transport/http/dto"
)

// HoldingUsecase は保有銘柄操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HoldingUsecase interface {
	Create(ctx context.Context, ticker string) (entity.Holding, error)
	GetByID(ctx context.Context, id uint) (entity.Holding, error)
	ListAll(ctx context.Context) ([]entity.Holding, error)
	Update(ctx context.Context, id uint, ticker string) (entity.Holding, error)
	Delete(ctx context.Context, id uint) error
	GetHistoricalData(ctx context.Context, ticker string) ([]entity.PricePoint, error)
	GetTickerInfo(ctx context.Context, ticker string) (entity.Quote, error)
	Summary(ctx context.Context) (entity.PortfolioSummary, error)
}

// HoldingHandler は /api/stocks 配下のHTTPリクエストを処理します。
type HoldingHandler struct {
	uc HoldingUsecase
}

// NewHoldingHandler はHoldingHandlerの新しいインスタンスを生成します。
func NewHoldingHandler(uc HoldingUsecase) *HoldingHandler {
	return &HoldingHandler{uc: uc}
}

func toResponse(h entity.Holding) dto.HoldingResponse {
	return dto.HoldingResponse{
		ID:           h.ID,
		StockName:    h.CompanyName,
		Ticker:       h.Ticker,
		Quantity:     h.Quantity,
		BuyPrice:     h.BuyPrice,
		CurrentPrice: h.CurrentPrice,
	}
}

// parseID はパスパラメータ :id を正の整数として解釈します。
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// Create は新しい保有銘柄を登録します。
//
// POST /api/stocks {"ticker": "TSLA"}
func (h *HoldingHandler) Create(c *gin.Context) {
	var req dto.TickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	holding, err := h.uc.Create(c.Request.Context(), req.Ticker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(holding))
}

// Get は指定IDの保有銘柄を返します。
//
// GET /api/stocks/:id
func (h *HoldingHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	holding, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(holding))
}

// List は全ての保有銘柄を返します。
//
// GET /api/stocks
func (h *HoldingHandler) List(c *gin.Context) {
	hs, err := h.uc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.HoldingResponse, 0, len(hs))
	for _, x := range hs {
		out = append(out, toResponse(x))
	}
	c.JSON(http.StatusOK, out)
}

// Update は保有銘柄を新しいティッカーで更新します。
//
// PUT /api/stocks/:id {"ticker": "AAPL"}
func (h *HoldingHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	holding, err := h.uc.Update(c.Request.Context(), id, req.Ticker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(holding))
}

// Delete は保有銘柄を削除します。
//
// DELETE /api/stocks/:id
func (h *HoldingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Stock with id %d has been deleted", id)})
}

// HistoricalData は銘柄の直近の1時間足終値を返します。
// ルーティングの都合上、ティッカーは :id パラメータで受け取ります。
//
// GET /api/stocks/:id/data
func (h *HoldingHandler) HistoricalData(c *gin.Context) {
	points, err := h.uc.GetHistoricalData(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := dto.HistoricalResponse{Values: make([]dto.PricePointResponse, 0, len(points))}
	for _, p := range points {
		out.Values = append(out.Values, dto.PricePointResponse{
			Datetime: pointDatetime(p),
			Close:    p.Close,
		})
	}
	c.JSON(http.StatusOK, out)
}

// pointDatetime はプロバイダーが返した日時文字列をそのまま返します。
// 文字列を持たない場合のみTimeから整形します。
func pointDatetime(p entity.PricePoint) string {
	if p.Datetime != "" {
		return p.Datetime
	}
	return p.Time.Format(time.DateTime)
}

// TickerInfo は銘柄のクォート情報を返します。
//
// GET /api/stocks/:id/info
func (h *HoldingHandler) TickerInfo(c *gin.Context) {
	q, err := h.uc.GetTickerInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TickerInfoResponse{
		Name:     q.Name,
		Symbol:   q.Symbol,
		Price:    q.Close,
		Currency: q.Currency,
		Exchange: q.Exchange,
		Country:  q.Country,
	})
}

// Summary はポートフォリオ全体の評価額と平均リターンを返します。
//
// GET /api/stocks/summary
func (h *HoldingHandler) Summary(c *gin.Context) {
	s, err := h.uc.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{
		TotalHoldings: s.TotalHoldings,
		TotalValue:    s.TotalValue,
		TotalCost:     s.TotalCost,
		AverageReturn: s.AverageReturn,
	})
}
