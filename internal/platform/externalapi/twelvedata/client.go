package twelvedata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/usecase"
	"stock_portfolio/internal/platform/externalapi/twelvedata/dto"
)

// datetimeLayouts are the formats Twelve Data uses for intraday and daily bars.
var datetimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// TwelveDataClient はTwelve Data外部APIから株価とその時系列を取得するQuoteClient実装です。
type TwelveDataClient struct {
	cfg    Config
	client *http.Client
}

// TwelveDataClientがQuoteClientを実装していることをコンパイル時に検証します。
var _ usecase.QuoteClient = (*TwelveDataClient)(nil)

// NewTwelveDataClient は指定された設定とHTTPクライアントでTwelveDataClientの新しいインスタンスを生成します。
func NewTwelveDataClient(cfg Config, client *http.Client) *TwelveDataClient {
	return &TwelveDataClient{cfg: cfg, client: client}
}

// FetchQuote は/quoteエンドポイントから銘柄の最新クォートを取得します。
func (t *TwelveDataClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.QuoteResponse
	if err := t.get(ctx, "quote", q, symbol, &body); err != nil {
		return entity.Quote{}, err
	}

	closePrice, err := parsePrice(body.Close)
	if err != nil {
		return entity.Quote{}, unavailable(symbol, fmt.Errorf("parse close %q: %w", body.Close, err))
	}

	return entity.Quote{
		Symbol:   body.Symbol,
		Name:     body.Name,
		Close:    closePrice,
		Currency: body.Currency,
		Exchange: body.Exchange,
		Country:  body.Country,
	}, nil
}

// FetchHistoricalSeries は/time_seriesエンドポイントから時系列の終値を取得します。
// intervalとoutputsizeは解釈せずにそのままAPIへ渡し、返却順を保持します。
func (t *TwelveDataClient) FetchHistoricalSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, symbol, &body); err != nil {
		return nil, err
	}

	points := make([]entity.PricePoint, 0, len(body.Values))
	for _, v := range body.Values {
		tm, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, unavailable(symbol, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, unavailable(symbol, fmt.Errorf("parse close %q: %w", v.Close, err))
		}
		points = append(points, entity.PricePoint{Time: tm, Datetime: v.Datetime, Close: c})
	}
	return points, nil
}

// get はAPIキーを付与してGETリクエストを送信し、レスポンスの判定をinspectResponseに委ねます。
func (t *TwelveDataClient) get(ctx context.Context, path string, q url.Values, symbol string, out any) error {
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return unavailable(symbol, err)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return unavailable(symbol, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	return inspectResponse(res, symbol, out)
}

// errMissingPrice is returned when a quote carries no close price.
var errMissingPrice = errors.New("missing close price")

// parsePrice parses a provider price. A missing price is an error, never 0.
func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, errMissingPrice
	}
	return strconv.ParseFloat(s, 64)
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q", s)
}
