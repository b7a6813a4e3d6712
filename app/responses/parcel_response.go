package responses

import (
	"github.com/parcel-tracker/internal/search"
)

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}

// ResetResponse response reset trạng thái
type ResetResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"` // Số record đã reset
}

// ReorderResponse response reorder
type ReorderResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}

// SearchResponse response tìm kiếm danh bạ
type SearchResponse struct {
	Query string              `json:"query"`
	Hits  []search.AddressDoc `json:"hits"`
	Total int                 `json:"total"`
}

// OCRResponse response OCR
type OCRResponse struct {
	Text string `json:"text"`
}
