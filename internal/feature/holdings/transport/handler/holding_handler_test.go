package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/transport/handler"
)

// mockHoldingUsecase はHoldingUsecaseインターフェースのモック実装です。
type mockHoldingUsecase struct {
	CreateFunc            func(ctx context.Context, ticker string) (entity.Holding, error)
	GetByIDFunc           func(ctx context.Context, id uint) (entity.Holding, error)
	ListAllFunc           func(ctx context.Context) ([]entity.Holding, error)
	UpdateFunc            func(ctx context.Context, id uint, ticker string) (entity.Holding, error)
	DeleteFunc            func(ctx context.Context, id uint) error
	GetHistoricalDataFunc func(ctx context.Context, ticker string) ([]entity.PricePoint, error)
	GetTickerInfoFunc     func(ctx context.Context, ticker string) (entity.Quote, error)
	SummaryFunc           func(ctx context.Context) (entity.PortfolioSummary, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockHoldingUsecase) Create(ctx context.Context, ticker string) (entity.Holding, error) {
	if m.CreateFunc == nil {
		return entity.Holding{}, errNotImplemented
	}
	return m.CreateFunc(ctx, ticker)
}

func (m *mockHoldingUsecase) GetByID(ctx context.Context, id uint) (entity.Holding, error) {
	if m.GetByIDFunc == nil {
		return entity.Holding{}, errNotImplemented
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockHoldingUsecase) ListAll(ctx context.Context) ([]entity.Holding, error) {
	if m.ListAllFunc == nil {
		return nil, errNotImplemented
	}
	return m.ListAllFunc(ctx)
}

func (m *mockHoldingUsecase) Update(ctx context.Context, id uint, ticker string) (entity.Holding, error) {
	if m.UpdateFunc == nil {
		return entity.Holding{}, errNotImplemented
	}
	return m.UpdateFunc(ctx, id, ticker)
}

func (m *mockHoldingUsecase) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc == nil {
		return errNotImplemented
	}
	return m.DeleteFunc(ctx, id)
}

func (m *mockHoldingUsecase) GetHistoricalData(ctx context.Context, ticker string) ([]entity.PricePoint, error) {
	if m.GetHistoricalDataFunc == nil {
		return nil, errNotImplemented
	}
	return m.GetHistoricalDataFunc(ctx, ticker)
}

func (m *mockHoldingUsecase) GetTickerInfo(ctx context.Context, ticker string) (entity.Quote, error) {
	if m.GetTickerInfoFunc == nil {
		return entity.Quote{}, errNotImplemented
	}
	return m.GetTickerInfoFunc(ctx, ticker)
}

func (m *mockHoldingUsecase) Summary(ctx context.Context) (entity.PortfolioSummary, error) {
	if m.SummaryFunc == nil {
		return entity.PortfolioSummary{}, errNotImplemented
	}
	return m.SummaryFunc(ctx)
}

func setupRouter(uc handler.HoldingUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewHoldingHandler(uc)
	g := r.Group("/api/stocks")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/summary", h.Summary)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/data", h.HistoricalData)
	g.GET("/:id/info", h.TickerInfo)
	return r
}

func doRequest(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var tesla = entity.Holding{ID: 1, Ticker: "TSLA", CompanyName: "Tesla Inc", Quantity: 1, BuyPrice: 250.5, CurrentPrice: 250.5}

const teslaJSON = `{"id":1,"stockName":"Tesla Inc","ticker":"TSLA","quantity":1,"buyPrice":250.5,"currentPrice":250.5}`

func TestHoldingHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockCreate     func(ctx context.Context, ticker string) (entity.Holding, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"ticker":" tsla "}`,
			mockCreate: func(ctx context.Context, ticker string) (entity.Holding, error) {
				assert.Equal(t, " tsla ", ticker, "normalization is the usecase's job")
				return tesla, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   teslaJSON,
		},
		{
			name:           "error: missing ticker",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"statusCode":400,"message":"invalid request"}`,
		},
		{
			name:           "error: malformed json",
			body:           `{"ticker":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"statusCode":400,"message":"invalid request"}`,
		},
		{
			name: "error: unresolvable company",
			body: `{"ticker":"XXXX"}`,
			mockCreate: func(ctx context.Context, ticker string) (entity.Holding, error) {
				return entity.Holding{}, fmt.Errorf("%w: XXXX", domain.ErrResourceInvalid)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"statusCode":400,"message":"ticker could not be resolved: XXXX"}`,
		},
		{
			name: "error: provider unavailable",
			body: `{"ticker":"TSLA"}`,
			mockCreate: func(ctx context.Context, ticker string) (entity.Holding, error) {
				return entity.Holding{}, fmt.Errorf("%w: TSLA: timeout", domain.ErrProviderUnavailable)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"statusCode":500,"message":"quote provider unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockHoldingUsecase{CreateFunc: tt.mockCreate})
			w := doRequest(r, http.MethodPost, "/api/stocks", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHoldingHandler_Get(t *testing.T) {
	uc := &mockHoldingUsecase{
		GetByIDFunc: func(ctx context.Context, id uint) (entity.Holding, error) {
			if id == 1 {
				return tesla, nil
			}
			return entity.Holding{}, domain.ErrNotFound
		},
	}
	r := setupRouter(uc)

	w := doRequest(r, http.MethodGet, "/api/stocks/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, teslaJSON, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/stocks/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"statusCode":404,"message":"holding not found"}`, w.Body.String())

	for _, bad := range []string{"abc", "0", "-1"} {
		w = doRequest(r, http.MethodGet, "/api/stocks/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestHoldingHandler_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := setupRouter(&mockHoldingUsecase{
			ListAllFunc: func(ctx context.Context) ([]entity.Holding, error) {
				return []entity.Holding{tesla}, nil
			},
		})
		w := doRequest(r, http.MethodGet, "/api/stocks", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "["+teslaJSON+"]", w.Body.String())
	})

	t.Run("empty list is an array", func(t *testing.T) {
		r := setupRouter(&mockHoldingUsecase{
			ListAllFunc: func(ctx context.Context) ([]entity.Holding, error) { return nil, nil },
		})
		w := doRequest(r, http.MethodGet, "/api/stocks", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("repository error hides details", func(t *testing.T) {
		r := setupRouter(&mockHoldingUsecase{
			ListAllFunc: func(ctx context.Context) ([]entity.Holding, error) {
				return nil, errors.New("dial tcp 10.0.0.1:3306: connection refused")
			},
		})
		w := doRequest(r, http.MethodGet, "/api/stocks", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"statusCode":500,"message":"internal server error"}`, w.Body.String())
	})
}

func TestHoldingHandler_Update(t *testing.T) {
	var gotID uint
	var gotTicker string
	r := setupRouter(&mockHoldingUsecase{
		UpdateFunc: func(ctx context.Context, id uint, ticker string) (entity.Holding, error) {
			gotID, gotTicker = id, ticker
			if id == 9 {
				return entity.Holding{}, domain.ErrNotFound
			}
			return entity.Holding{ID: id, Ticker: "AAPL", CompanyName: "Apple Inc", Quantity: 1, BuyPrice: 190, CurrentPrice: 190}, nil
		},
	})

	w := doRequest(r, http.MethodPut, "/api/stocks/3", `{"ticker":"aapl"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(3), gotID)
	assert.Equal(t, "aapl", gotTicker)
	assert.JSONEq(t, `{"id":3,"stockName":"Apple Inc","ticker":"AAPL","quantity":1,"buyPrice":190,"currentPrice":190}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/api/stocks/9", `{"ticker":"aapl"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPut, "/api/stocks/3", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHoldingHandler_Delete(t *testing.T) {
	r := setupRouter(&mockHoldingUsecase{
		DeleteFunc: func(ctx context.Context, id uint) error {
			if id == 5 {
				return nil
			}
			return domain.ErrNotFound
		},
	})

	w := doRequest(r, http.MethodDelete, "/api/stocks/5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Stock with id 5 has been deleted"}`, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/api/stocks/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHoldingHandler_HistoricalData(t *testing.T) {
	base := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	r := setupRouter(&mockHoldingUsecase{
		GetHistoricalDataFunc: func(ctx context.Context, ticker string) ([]entity.PricePoint, error) {
			switch ticker {
			case "TSLA":
				return []entity.PricePoint{
					{Time: base, Close: 201.5},
					{Time: base.Add(-time.Hour), Close: 200},
				}, nil
			case "MSFT":
				return []entity.PricePoint{
					{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Datetime: "2024-03-01", Close: 410},
					{Time: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Datetime: "2024-02-29", Close: 405.5},
				}, nil
			default:
				return nil, &domain.ProviderError{Symbol: ticker, Code: 404, Message: "symbol not found"}
			}
		},
	})

	w := doRequest(r, http.MethodGet, "/api/stocks/TSLA/data", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"values":[{"datetime":"2024-03-01 15:30:00","close":201.5},{"datetime":"2024-03-01 14:30:00","close":200}]}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/stocks/MSFT/data", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"values":[{"datetime":"2024-03-01","close":410},{"datetime":"2024-02-29","close":405.5}]}`, w.Body.String(),
		"daily timestamps are returned as the provider sent them")

	w = doRequest(r, http.MethodGet, "/api/stocks/NOPE/data", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "provider 404 is an invalid symbol")
}

func TestHoldingHandler_TickerInfo(t *testing.T) {
	tests := []struct {
		name           string
		ticker         string
		err            error
		expectedStatus int
	}{
		{name: "success", ticker: "AAPL", expectedStatus: http.StatusOK},
		{name: "provider rate limit", ticker: "AAPL", err: &domain.ProviderError{Symbol: "AAPL", Code: 429, Message: "limit"}, expectedStatus: http.StatusTooManyRequests},
		{name: "provider auth error", ticker: "AAPL", err: &domain.ProviderError{Symbol: "AAPL", Code: 401, Message: "bad key"}, expectedStatus: http.StatusUnauthorized},
		{name: "provider code out of range", ticker: "AAPL", err: &domain.ProviderError{Symbol: "AAPL", Code: 0, Message: "boom"}, expectedStatus: http.StatusInternalServerError},
		{name: "invalid symbol", ticker: "AAPL", err: fmt.Errorf("%w: twelvedata http 403", domain.ErrInvalidSymbol), expectedStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockHoldingUsecase{
				GetTickerInfoFunc: func(ctx context.Context, ticker string) (entity.Quote, error) {
					if tt.err != nil {
						return entity.Quote{}, tt.err
					}
					return entity.Quote{Symbol: "AAPL", Name: "Apple Inc", Close: 190.25, Currency: "USD", Exchange: "NASDAQ", Country: "United States"}, nil
				},
			})
			w := doRequest(r, http.MethodGet, "/api/stocks/"+tt.ticker+"/info", "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.err == nil {
				assert.JSONEq(t, `{"name":"Apple Inc","symbol":"AAPL","price":190.25,"currency":"USD","exchange":"NASDAQ","country":"United States"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), fmt.Sprintf(`"statusCode":%d`, tt.expectedStatus))
			}
		})
	}
}

func TestHoldingHandler_Summary(t *testing.T) {
	r := setupRouter(&mockHoldingUsecase{
		SummaryFunc: func(ctx context.Context) (entity.PortfolioSummary, error) {
			return entity.PortfolioSummary{TotalHoldings: 2, TotalValue: 290, TotalCost: 300, AverageReturn: -3.33}, nil
		},
		GetByIDFunc: func(ctx context.Context, id uint) (entity.Holding, error) {
			t.Fatal("summary must not be routed to GetByID")
			return entity.Holding{}, nil
		},
	})

	w := doRequest(r, http.MethodGet, "/api/stocks/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalHoldings":2,"totalValue":290,"totalCost":300,"averageReturn":-3.33}`, w.Body.String())
}
