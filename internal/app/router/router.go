// Package router はアプリケーションのルーティングを構築します。
package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	holdinghandler "stock_portfolio/internal/feature/holdings/transport/handler"
	"stock_portfolio/internal/platform/http/handler"
)

// DefaultAllowedOrigins はフロントエンドの本番URLとローカル開発サーバーです。
var DefaultAllowedOrigins = []string{"https://portfoliostock.netlify.app", "http://localhost:5173"}

// AllowedOriginsFromEnv は CORS_ALLOWED_ORIGINS（カンマ区切り）を読み込みます。
func AllowedOriginsFromEnv() []string {
	v := os.Getenv("CORS_ALLOWED_ORIGINS")
	if strings.TrimSpace(v) == "" {
		return DefaultAllowedOrigins
	}
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Handlers はルーターに登録するハンドラーです。
type Handlers struct {
	Holdings *holdinghandler.HoldingHandler
	Sync     *holdinghandler.SyncHandler
	Health   gin.HandlerFunc
	Metrics  gin.HandlerFunc
}

func NewRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 導通確認用
	health := h.Health
	if health == nil {
		health = handler.NewHealthHandler(nil)
	}
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics)
	}

	stocks := r.Group("/api/stocks")
	{
		stocks.POST("", h.Holdings.Create)
		stocks.GET("", h.Holdings.List)
		// 静的セグメントは :id より優先される
		stocks.GET("/summary", h.Holdings.Summary)
		stocks.GET("/:id", h.Holdings.Get)
		stocks.PUT("/:id", h.Holdings.Update)
		stocks.DELETE("/:id", h.Holdings.Delete)
		// gin では同じ位置に別名のワイルドカードを置けないため、:id をティッカーとして扱う
		stocks.GET("/:id/data", h.Holdings.HistoricalData)
		stocks.GET("/:id/info", h.Holdings.TickerInfo)
	}

	sync := r.Group("/api/sync")
	{
		sync.POST("", h.Sync.Trigger)
		sync.GET("/status", h.Sync.Status)
	}

	return r
}
