package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/controllers"
)

// Controllers tập controller cần cho routing
type Controllers struct {
	Parcel *controllers.ParcelController
	Scan   *controllers.ScanController
	Admin  *controllers.AdminController
}

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, ctrl Controllers) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		// Danh bạ địa chỉ
		parcels := v1.Group("/parcels")
		{
			parcels.GET("", ctrl.Parcel.List)
			parcels.POST("", ctrl.Parcel.Create)
			parcels.PUT("", ctrl.Parcel.Update)
			parcels.DELETE("", ctrl.Parcel.Delete)
			parcels.GET("/all", ctrl.Parcel.ListAll)
			parcels.GET("/search", ctrl.Parcel.Search)
			parcels.POST("/reorder", ctrl.Parcel.Reorder)
			parcels.POST("/reset", ctrl.Parcel.Reset)
			parcels.GET("/:id", ctrl.Parcel.Get)
			parcels.POST("/:id/status", ctrl.Parcel.UpdateStatus)
		}

		v1.GET("/locations", ctrl.Parcel.Locations)
		v1.GET("/village-names", ctrl.Parcel.VillageNames)

		// Scan
		scan := v1.Group("/scan")
		{
			scan.POST("", ctrl.Scan.Scan)
			scan.POST("/image", ctrl.Scan.ScanImage)
			scan.POST("/manual", ctrl.Scan.ScanManual)
		}
		v1.GET("/scans", ctrl.Scan.ListScans)
		v1.POST("/ocr", ctrl.Scan.OCR)

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.GET("/stats", ctrl.Admin.GetStats)
			admin.GET("/cache/stats", ctrl.Admin.CacheStats)
			admin.POST("/cache/invalidate", ctrl.Admin.InvalidateCache)
			admin.POST("/search/reindex", ctrl.Admin.Reindex)
		}

		// Health check route
		v1.GET("/health", ctrl.Admin.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, adminController *controllers.AdminController) {
	router.GET("/health", adminController.HealthCheck)
	router.GET("/ready", adminController.HealthCheck)
	router.GET("/live", adminController.HealthCheck)
}
