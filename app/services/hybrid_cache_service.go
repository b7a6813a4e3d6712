package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parcel-tracker/app/models"
	"go.uber.org/zap"
)

// HybridCacheService cache service kết hợp LRU trong process (L1) + Redis (L2)
type HybridCacheService struct {
	l1     ICacheService // nhanh, riêng từng instance
	l2     ICacheService // dùng chung giữa các instance
	logger *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1 ICacheService, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		l1:     l1,
		l2:     l2,
		logger: logger,
	}
}

// Get lấy snapshot từ cache (L1 trước, L2 sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) ([]models.AddressRecord, bool, error) {
	// 1. Thử L1 trước
	records, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi L1 cache, fallback L2", zap.Error(err))
	} else if found {
		hcs.logger.Debug("L1 cache hit", zap.String("key", key))
		return records, true, nil
	}

	// 2. Nếu không có trong L1, thử L2
	records, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("Cache miss (L1 & L2)", zap.String("key", key))
		return nil, false, nil
	}

	// 3. Có trong L2 thì đưa lên L1
	if err := hcs.l1.Set(ctx, key, records); err != nil {
		hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
	}

	hcs.logger.Debug("L2 cache hit", zap.String("key", key))
	return records, true, nil
}

// Set lưu snapshot vào cả L1 và L2
func (hcs *HybridCacheService) Set(ctx context.Context, key string, records []models.AddressRecord) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, records) }, "set")
}

// Delete xóa key khỏi cả L1 và L2
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) }, "delete")
}

// Clear xóa toàn bộ cache
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }, "clear"); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache (L1 + L2)")
	return nil
}

// InvalidateArea xóa snapshot của sub-district ở cả L1 và L2
func (hcs *HybridCacheService) InvalidateArea(ctx context.Context, subDistrict string) error {
	return hcs.both(func(c ICacheService) error { return c.InvalidateArea(ctx, subDistrict) }, "invalidate")
}

// GetStats lấy thống kê cache (kết hợp từ cả 2)
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1Stats, l1Err := hcs.l1.GetStats(ctx)
	l2Stats, l2Err := hcs.l2.GetStats(ctx)

	if l1Err != nil && l2Err != nil {
		return nil, fmt.Errorf("cả L1 và L2 đều lỗi: %v, %v", l1Err, l2Err)
	}

	combined := &CacheStats{}
	switch {
	case l1Err == nil && l2Err == nil:
		// L2 chỉ được hỏi khi L1 miss, nên hit tổng = hit L1 + hit L2, miss tổng = miss L2
		combined.TotalHits = l1Stats.TotalHits + l2Stats.TotalHits
		combined.TotalMiss = l2Stats.TotalMiss
		combined.HitRate = hitRate(combined.TotalHits, combined.TotalMiss)
		combined.TotalItems = l2Stats.TotalItems
	case l1Err == nil:
		*combined = *l1Stats
	default:
		*combined = *l2Stats
	}

	return combined, nil
}

// Exists kiểm tra key có tồn tại không (L1 trước, L2 sau)
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check L1 exists, fallback L2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL lấy TTL của key (từ L2)
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l2.GetTTL(ctx, key)
}

// Close đóng cả 2 cache
func (hcs *HybridCacheService) Close() error {
	return hcs.both(func(c ICacheService) error { return c.Close() }, "close")
}

// both chạy op trên L1 và L2 song song, gom lỗi
func (hcs *HybridCacheService) both(op func(ICacheService) error, name string) error {
	errCh := make(chan error, 2)

	for _, c := range []ICacheService{hcs.l1, hcs.l2} {
		go func(c ICacheService) {
			errCh <- op(c)
		}(c)
	}

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		hcs.logger.Warn("Lỗi hybrid cache", zap.String("op", name), zap.Errors("errors", errs))
		return newCollaboratorError(CollaboratorCache, name, errors.Join(errs...))
	}
	return nil
}
