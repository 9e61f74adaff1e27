package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/transport/http/dto"
)

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	var pe *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrResourceInvalid), errors.Is(err, domain.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		if pe.Code >= 400 && pe.Code <= 599 {
			return pe.Code
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラーをステータスに変換し、ErrorResponseとして返します。
// 500の場合は内部の詳細を公開しません。
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		if errors.Is(err, domain.ErrProviderUnavailable) {
			msg = "quote provider unavailable"
		} else if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	} else {
		slog.Warn("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, dto.ErrorResponse{StatusCode: status, Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{StatusCode: http.StatusBadRequest, Message: msg})
}
