package services

import (
	"context"
	"time"

	"github.com/parcel-tracker/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService interface cache snapshot record theo sub-district/village
type ICacheService interface {
	// Get lấy snapshot từ cache
	Get(ctx context.Context, key string) ([]models.AddressRecord, bool, error)

	// Set lưu snapshot vào cache
	Set(ctx context.Context, key string, records []models.AddressRecord) error

	// Delete xóa snapshot khỏi cache
	Delete(ctx context.Context, key string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// InvalidateArea xóa mọi snapshot thuộc một sub-district
	InvalidateArea(ctx context.Context, subDistrict string) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists kiểm tra key có tồn tại không
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL lấy TTL còn lại của key
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}

// hitRate tỉ lệ hit
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
