package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/parcel-tracker/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const snapshotCacheCollection = "snapshot_cache"

// snapshotCacheEntry document lưu một snapshot trong MongoDB
type snapshotCacheEntry struct {
	Key         string                 `bson:"_id"`
	SubDistrict string                 `bson:"sub_district"`
	Records     []models.AddressRecord `bson:"records"`
	CreatedAt   time.Time              `bson:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at"`
}

// MongoCacheService cache snapshot dùng chung, lưu trên MongoDB với TTL index.
// Dùng làm L2 khi không có Redis.
type MongoCacheService struct {
	collection *mongo.Collection
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMongoCacheService tạo mới MongoCacheService
func NewMongoCacheService(db *mongo.Database, ttl time.Duration, logger *zap.Logger) *MongoCacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	collection := db.Collection(snapshotCacheCollection)

	// MongoDB tự xóa document khi quá expires_at (chạy mỗi ~60s nên Get vẫn tự kiểm tra)
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "sub_district", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho snapshot_cache", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Get lấy snapshot từ cache
func (mcs *MongoCacheService) Get(ctx context.Context, key string) ([]models.AddressRecord, bool, error) {
	var entry snapshotCacheEntry
	err := mcs.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, newCollaboratorError(CollaboratorCache, "get", err)
	}

	if !entry.ExpiresAt.After(mcs.now()) {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	mcs.hits.Add(1)
	return entry.Records, true, nil
}

// Set lưu snapshot vào cache
func (mcs *MongoCacheService) Set(ctx context.Context, key string, records []models.AddressRecord) error {
	now := mcs.now()
	subDistrict := ""
	if len(records) > 0 {
		subDistrict = records[0].SubDistrict
	}

	entry := snapshotCacheEntry{
		Key:         key,
		SubDistrict: subDistrict,
		Records:     records,
		CreatedAt:   now,
		ExpiresAt:   now.Add(mcs.ttl),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"_id": key}, entry, opts); err != nil {
		mcs.logger.Error("Lỗi lưu snapshot vào MongoDB cache", zap.Error(err), zap.String("key", key))
		return newCollaboratorError(CollaboratorCache, "set", err)
	}
	return nil
}

// Delete xóa snapshot khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return newCollaboratorError(CollaboratorCache, "delete", err)
	}
	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return newCollaboratorError(CollaboratorCache, "clear", err)
	}
	mcs.hits.Store(0)
	mcs.misses.Store(0)
	return nil
}

// InvalidateArea xóa mọi snapshot của sub-district. Lọc theo prefix của _id
// vì snapshot rỗng không mang sub_district.
func (mcs *MongoCacheService) InvalidateArea(ctx context.Context, subDistrict string) error {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(areaKeyPrefix(subDistrict))}}
	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return newCollaboratorError(CollaboratorCache, "invalidate", err)
	}
	mcs.logger.Debug("Đã invalidate snapshot",
		zap.String("sub_district", subDistrict),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm documents trong MongoDB cache: %w", err)
	}

	hits, misses := mcs.hits.Load(), mcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

// Exists kiểm tra key có tồn tại và chưa hết hạn
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	filter := bson.M{"_id": key, "expires_at": bson.M{"$gt": mcs.now()}}
	count, err := mcs.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("lỗi check exists trong MongoDB: %w", err)
	}
	return count > 0, nil
}

// GetTTL lấy TTL còn lại của key
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	var entry snapshotCacheEntry
	opts := options.FindOne().SetProjection(bson.M{"expires_at": 1})
	err := mcs.collection.FindOne(ctx, bson.M{"_id": key}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lỗi lấy TTL trong MongoDB: %w", err)
	}

	remaining := entry.ExpiresAt.Sub(mcs.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close MongoDB connection được quản lý bởi caller
func (mcs *MongoCacheService) Close() error {
	return nil
}
