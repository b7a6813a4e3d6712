package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/responses"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/external"
	"go.uber.org/zap"
)

// RequestIDKey key lưu request id trong gin context
const RequestIDKey = "request_id"

// respondError map lỗi service sang HTTP status và mã lỗi
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Lỗi hệ thống"

	var ce *services.CollaboratorError
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "ไม่พบข้อมูล"
	case errors.Is(err, services.ErrDuplicateAddress):
		status, code, message = http.StatusConflict, "DUPLICATE_ADDRESS", "ที่อยู่นี้มีอยู่ในระบบแล้ว"
	case errors.Is(err, services.ErrSearchDisabled):
		status, code, message = http.StatusServiceUnavailable, "SEARCH_DISABLED", err.Error()
	case errors.Is(err, external.ErrEmptyImage):
		status, code, message = http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	case errors.As(err, &ce) && ce.Collaborator == services.CollaboratorOCR:
		status, code, message = http.StatusBadGateway, "OCR_ERROR", err.Error()
	case errors.As(err, &ce):
		status, code, message = http.StatusBadGateway, "COLLABORATOR_ERROR", err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String(RequestIDKey, c.GetString(RequestIDKey)),
			zap.Error(err))
	}

	c.JSON(status, errorBody(c, code, message))
}

// respondInvalid trả 400 cho request không hợp lệ
func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(c, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error()))
}

func errorBody(c *gin.Context, code, message string) responses.ErrorResponse {
	return responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: now(),
		RequestID: c.GetString(RequestIDKey),
	}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
