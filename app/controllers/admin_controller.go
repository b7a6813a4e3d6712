package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/requests"
	"github.com/parcel-tracker/app/responses"
	"github.com/parcel-tracker/app/services"
	"go.uber.org/zap"
)

// Version phiên bản service
const Version = "1.0.0"

// AdminController controller cho admin và health check
type AdminController struct {
	adminService *services.AdminService
	services     map[string]string
	startTime    time.Time
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController. components là trạng thái các backend đã cấu hình
// (ví dụ "store": "mongo"), hiển thị ở health check.
func NewAdminController(adminService *services.AdminService, components map[string]string, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		services:     components,
		startTime:    time.Now(),
		logger:       logger,
	}
}

// HealthCheck kiểm tra sức khỏe
func (ac *AdminController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: now(),
		Uptime:    time.Since(ac.startTime).Round(time.Second).String(),
		Version:   Version,
		Services:  ac.services,
	})
}

// GetStats thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CacheStats thống kê cache
func (ac *AdminController) CacheStats(c *gin.Context) {
	stats, err := ac.adminService.CacheStats(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InvalidateCache xóa cache
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
	}

	if err := ac.adminService.InvalidateCache(c.Request.Context(), req.SubDistrict); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Cache đã được xóa",
		Timestamp: now(),
	})
}

// Reindex rebuild index Meilisearch
func (ac *AdminController) Reindex(c *gin.Context) {
	result, err := ac.adminService.Reindex(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Index đã được rebuild",
		Data:      result,
		Timestamp: now(),
	})
}
