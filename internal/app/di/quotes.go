// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"stock_portfolio/internal/platform/externalapi/twelvedata"
	infrahttp "stock_portfolio/internal/platform/http"
	"stock_portfolio/internal/shared/ratelimiter"
)

// NewQuoteClient creates a fully configured TwelveDataClient with HTTP client.
func NewQuoteClient() *twelvedata.TwelveDataClient {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataClient(cfg, httpClient)
}

// NewSyncRateLimiter paces provider calls made by the price sync.
// SYNC_RATE_LIMIT is the number of calls allowed per minute; 0 or unset disables pacing.
func NewSyncRateLimiter() (*ratelimiter.RateLimiter, error) {
	limit := 0
	if v := os.Getenv("SYNC_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid SYNC_RATE_LIMIT %q", v)
		}
		limit = n
	}
	return ratelimiter.NewRateLimiter(limit, time.Minute), nil
}
