package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parcel-tracker/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ScanLogFilter điều kiện lọc scan log
type ScanLogFilter struct {
	SubDistrict string
	Village     string
	Outcome     string
	Since       time.Time
	Limit       int
}

func (f ScanLogFilter) limit() int {
	if f.Limit <= 0 || f.Limit > 500 {
		return 100
	}
	return f.Limit
}

func (f ScanLogFilter) matches(l *models.ScanLog) bool {
	if f.SubDistrict != "" && l.SubDistrict != f.SubDistrict {
		return false
	}
	if f.Village != "" && l.Village != f.Village {
		return false
	}
	if f.Outcome != "" && l.Outcome != f.Outcome {
		return false
	}
	if !f.Since.IsZero() && l.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// ScanLogStore lưu audit log của các lần scan
type ScanLogStore interface {
	Append(ctx context.Context, log *models.ScanLog) error
	// List trả về log mới nhất trước
	List(ctx context.Context, filter ScanLogFilter) ([]models.ScanLog, error)
}

// MongoScanLogService lưu scan log vào collection scan_logs
type MongoScanLogService struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoScanLogService tạo mới MongoScanLogService
func NewMongoScanLogService(db *mongo.Database, logger *zap.Logger) (*MongoScanLogService, error) {
	collection := db.Collection("scan_logs")

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "created_at", Value: -1}}},
		{Keys: bson.D{
			bson.E{Key: "sub_district", Value: 1},
			bson.E{Key: "village", Value: 1},
			bson.E{Key: "created_at", Value: -1},
		}},
		{Keys: bson.D{bson.E{Key: "outcome", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho scan_logs", zap.Error(err))
	}

	return &MongoScanLogService{collection: collection, logger: logger}, nil
}

// Append ghi một log
func (ms *MongoScanLogService) Append(ctx context.Context, log *models.ScanLog) error {
	if _, err := ms.collection.InsertOne(ctx, log); err != nil {
		return newCollaboratorError(CollaboratorScanLog, "append", err)
	}
	return nil
}

// List lấy log theo filter
func (ms *MongoScanLogService) List(ctx context.Context, filter ScanLogFilter) ([]models.ScanLog, error) {
	query := bson.M{}
	if filter.SubDistrict != "" {
		query["sub_district"] = filter.SubDistrict
	}
	if filter.Village != "" {
		query["village"] = filter.Village
	}
	if filter.Outcome != "" {
		query["outcome"] = filter.Outcome
	}
	if !filter.Since.IsZero() {
		query["created_at"] = bson.M{"$gte": filter.Since}
	}

	findOptions := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(int64(filter.limit()))

	cursor, err := ms.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorScanLog, "list", err)
	}
	defer cursor.Close(ctx)

	logs := make([]models.ScanLog, 0)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, newCollaboratorError(CollaboratorScanLog, "list", fmt.Errorf("decode: %w", err))
	}
	return logs, nil
}

// MemoryScanLogService scan log trong bộ nhớ, dùng cho dev và test
type MemoryScanLogService struct {
	mu   sync.RWMutex
	logs []models.ScanLog
}

// NewMemoryScanLogService tạo mới MemoryScanLogService
func NewMemoryScanLogService() *MemoryScanLogService {
	return &MemoryScanLogService{}
}

// Append ghi một log
func (ms *MemoryScanLogService) Append(ctx context.Context, log *models.ScanLog) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.logs = append(ms.logs, *log)
	return nil
}

// List lấy log theo filter, mới nhất trước
func (ms *MemoryScanLogService) List(ctx context.Context, filter ScanLogFilter) ([]models.ScanLog, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	limit := filter.limit()
	result := make([]models.ScanLog, 0)
	for i := len(ms.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if filter.matches(&ms.logs[i]) {
			result = append(result, ms.logs[i])
		}
	}
	return result, nil
}
