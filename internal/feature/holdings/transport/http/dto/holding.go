// Package dto はholdingsフィーチャーのリクエスト/レスポンスDTOを定義します。
package dto

// TickerRequest は作成・更新リクエストのボディです。
type TickerRequest struct {
	Ticker string `json:"ticker" binding:"required"`
}

// HoldingResponse は保有銘柄のレスポンスDTOです。
type HoldingResponse struct {
	ID           uint    `json:"id"`
	StockName    string  `json:"stockName"`    // 銘柄名
	Ticker       string  `json:"ticker"`       // ティッカー
	Quantity     int64   `json:"quantity"`     // 株数
	BuyPrice     float64 `json:"buyPrice"`     // 購入価格
	CurrentPrice float64 `json:"currentPrice"` // 現在価格
}

// PricePointResponse は時系列の1点です。
type PricePointResponse struct {
	Datetime string  `json:"datetime"`
	Close    float64 `json:"close"`
}

// HistoricalResponse は時系列データのレスポンスDTOです。
type HistoricalResponse struct {
	Values []PricePointResponse `json:"values"`
}

// TickerInfoResponse は銘柄情報のレスポンスDTOです。
type TickerInfoResponse struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Exchange string  `json:"exchange"`
	Country  string  `json:"country"`
}

// SummaryResponse はポートフォリオ全体の集計です。
type SummaryResponse struct {
	TotalHoldings int     `json:"totalHoldings"`
	TotalValue    float64 `json:"totalValue"`
	TotalCost     float64 `json:"totalCost"`
	AverageReturn float64 `json:"averageReturn"` // %
}

// MessageResponse は削除などの結果メッセージです。
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
