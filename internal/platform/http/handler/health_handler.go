// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger は依存先の疎通確認を行います。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthHandler は /healthz エンドポイントのハンドラーを返します。
// db が nil でなければDBへのpingを行い、失敗時は503を返します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func NewHealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		status, dbState := http.StatusOK, "up"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Warn("health check: database ping failed", "error", err)
				status, dbState = http.StatusServiceUnavailable, "down"
			}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "db": dbState})
	}
}
