package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheService cache snapshot dùng chung giữa các instance, lưu trên Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient tạo service từ client có sẵn
func NewRedisCacheServiceWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "parcel_tracker:",
		ttl:    ttl,
	}
}

// Get lấy snapshot từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) ([]models.AddressRecord, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, newCollaboratorError(CollaboratorCache, "get", err)
	}

	var records []models.AddressRecord
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		rcs.logger.Error("Lỗi unmarshal cache data", zap.Error(err))
		return nil, false, newCollaboratorError(CollaboratorCache, "get", err)
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return records, true, nil
}

// Set lưu snapshot vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, records []models.AddressRecord) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return newCollaboratorError(CollaboratorCache, "set", err)
	}

	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("key", key), zap.Int("records", len(records)))
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return newCollaboratorError(CollaboratorCache, "delete", err)
	}

	rcs.logger.Debug("Đã xóa khỏi Redis cache", zap.String("key", key))
	return nil
}

// Clear xóa toàn bộ cache
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	n, err := rcs.deletePattern(ctx, rcs.prefix+"*")
	if err != nil {
		return err
	}
	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", n))
	return nil
}

// InvalidateArea xóa mọi snapshot của sub-district
func (rcs *RedisCacheService) InvalidateArea(ctx context.Context, subDistrict string) error {
	n, err := rcs.deletePattern(ctx, rcs.prefix+escapeGlob(areaKeyPrefix(subDistrict))+"*")
	if err != nil {
		return err
	}
	rcs.logger.Debug("Đã invalidate snapshot theo sub-district",
		zap.String("sub_district", subDistrict), zap.Int("keys_deleted", n))
	return nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := rcs.hits.Load(), rcs.misses.Load()

	totalItems := int64(0)
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		totalItems++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Không thể đếm keys trong Redis", zap.Error(err))
	}

	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, newCollaboratorError(CollaboratorCache, "exists", err)
	}
	return exists > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rcs.client.TTL(ctx, rcs.prefix+key).Result()
	if err != nil {
		return 0, newCollaboratorError(CollaboratorCache, "ttl", err)
	}
	return ttl, nil
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}

// deletePattern xóa các key khớp pattern, duyệt bằng SCAN
func (rcs *RedisCacheService) deletePattern(ctx context.Context, pattern string) (int, error) {
	var keys []string
	iter := rcs.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, newCollaboratorError(CollaboratorCache, "scan", err)
	}

	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return 0, newCollaboratorError(CollaboratorCache, "delete", err)
		}
	}
	return len(keys), nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob escape ký tự đặc biệt của pattern Redis
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
