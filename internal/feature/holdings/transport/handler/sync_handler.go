package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/transport/http/dto"
)

// SyncUsecase は価格同期のユースケースインターフェースです。
type SyncUsecase interface {
	SyncAll(ctx context.Context) (entity.SyncReport, error)
	LastRun(ctx context.Context) (*entity.SyncReport, error)
}

// SyncHandler は /api/sync 配下のHTTPリクエストを処理します。
type SyncHandler struct {
	uc SyncUsecase
}

// NewSyncHandler はSyncHandlerの新しいインスタンスを生成します。
func NewSyncHandler(uc SyncUsecase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// Trigger は同期を1回同期的に実行し、その結果を返します。
//
// POST /api/sync
func (h *SyncHandler) Trigger(c *gin.Context) {
	report, err := h.uc.SyncAll(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Status は直近の同期結果を返します。まだ同期が完了していない場合は404を返します。
//
// GET /api/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	report, err := h.uc.LastRun(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{StatusCode: http.StatusNotFound, Message: "no sync run recorded yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}
