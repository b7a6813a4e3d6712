package services

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/parcel-tracker/app/models"
)

// LRUCacheService cache snapshot in-memory trong process, có TTL
type LRUCacheService struct {
	cache *expirable.LRU[string, []models.AddressRecord]
	ttl   time.Duration

	// Metrics
	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRUCacheService tạo mới LRUCacheService
func NewLRUCacheService(size int, ttl time.Duration) *LRUCacheService {
	if size <= 0 {
		size = 256
	}
	return &LRUCacheService{
		cache: expirable.NewLRU[string, []models.AddressRecord](size, nil, ttl),
		ttl:   ttl,
	}
}

// Get lấy snapshot từ cache. Trả về bản copy để caller không sửa được dữ liệu trong cache.
func (lcs *LRUCacheService) Get(ctx context.Context, key string) ([]models.AddressRecord, bool, error) {
	records, found := lcs.cache.Get(key)
	if !found {
		lcs.misses.Add(1)
		return nil, false, nil
	}
	lcs.hits.Add(1)
	return cloneRecords(records), true, nil
}

// Set lưu snapshot vào cache
func (lcs *LRUCacheService) Set(ctx context.Context, key string, records []models.AddressRecord) error {
	lcs.cache.Add(key, cloneRecords(records))
	return nil
}

// Delete xóa key khỏi cache
func (lcs *LRUCacheService) Delete(ctx context.Context, key string) error {
	lcs.cache.Remove(key)
	return nil
}

// Clear xóa toàn bộ cache
func (lcs *LRUCacheService) Clear(ctx context.Context) error {
	lcs.cache.Purge()
	return nil
}

// InvalidateArea xóa mọi snapshot của sub-district
func (lcs *LRUCacheService) InvalidateArea(ctx context.Context, subDistrict string) error {
	prefix := areaKeyPrefix(subDistrict)
	for _, key := range lcs.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			lcs.cache.Remove(key)
		}
	}
	return nil
}

// GetStats lấy thống kê cache
func (lcs *LRUCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := lcs.hits.Load(), lcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(lcs.cache.Len()),
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (lcs *LRUCacheService) Exists(ctx context.Context, key string) (bool, error) {
	return lcs.cache.Contains(key), nil
}

// GetTTL TTL cấu hình của cache (expirable LRU không expose TTL còn lại của từng key)
func (lcs *LRUCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if !lcs.cache.Contains(key) {
		return 0, nil
	}
	return lcs.ttl, nil
}

// Close không có gì để đóng
func (lcs *LRUCacheService) Close() error {
	return nil
}

func cloneRecords(records []models.AddressRecord) []models.AddressRecord {
	if records == nil {
		return nil
	}
	out := make([]models.AddressRecord, len(records))
	copy(out, records)
	return out
}
