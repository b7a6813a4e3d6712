// Package routes cung cấp tất cả routing functions cho Parcel Tracker Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*)
// - web.go: Web routes (/, /docs)
// - routes.go: middleware và SetupAllRoutes
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/controllers"
	"github.com/parcel-tracker/helpers/utils"
)

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, ctrl Controllers) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrl.Admin)
	SetupAPIRoutes(router, ctrl)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(RequestID())
}

// RequestID gắn X-Request-ID cho mỗi request, dùng lại header của client nếu là UUID hợp lệ
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if !utils.IsUUID(id) {
			id = utils.GenerateUUID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
