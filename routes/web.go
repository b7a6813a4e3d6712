package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/controllers"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Parcel Tracker Service",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		// API documentation
		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Parcel Tracker API v1",
				"endpoints": map[string]string{
					"parcels":       "GET|POST|PUT|DELETE /v1/parcels",
					"status":        "POST /v1/parcels/:id/status",
					"reorder":       "POST /v1/parcels/reorder",
					"reset":         "POST /v1/parcels/reset",
					"search":        "GET /v1/parcels/search?q=",
					"locations":     "GET /v1/locations",
					"village_names": "GET /v1/village-names",
					"scan":          "POST /v1/scan",
					"scan_image":    "POST /v1/scan/image",
					"scan_manual":   "POST /v1/scan/manual",
					"scans":         "GET /v1/scans",
					"ocr":           "POST /v1/ocr",
					"health":        "GET /v1/health",
				},
			})
		})
	}
}
