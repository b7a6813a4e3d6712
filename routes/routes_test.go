package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/controllers"
	"github.com/parcel-tracker/helpers/utils"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(controllers.RequestIDKey))
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "generated when missing", header: "", keep: false},
		{name: "client uuid kept", header: "3f2504e0-4f89-41d3-9a0c-0305e82c3301", keep: true},
		{name: "non-uuid replaced", header: "abc", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			id := w.Header().Get("X-Request-ID")
			assert.True(t, utils.IsUUID(id))
			assert.Equal(t, id, w.Body.String())
			if tt.keep {
				assert.Equal(t, tt.header, id)
			}
		})
	}
}
