// Package bootstrap dựng các collaborator (store, cache, search, OCR, Kafka, S3) từ config,
// dùng chung cho cmd/api, cmd/worker và cmd/scanctl.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parcel-tracker/app/config"
	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/events"
	"github.com/parcel-tracker/internal/external"
	"github.com/parcel-tracker/internal/search"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Components các collaborator đã khởi tạo
type Components struct {
	Directory  services.AddressDirectory
	Cache      services.ICacheService
	Index      *search.DirectorySearcher // nil khi chưa cấu hình Meilisearch
	Recognizer external.TextRecognizer   // nil khi ocr.engine=none
	ScanLogs   services.ScanLogStore
	Publisher  events.Publisher
	Archive    services.LabelArchive

	// Status trạng thái từng backend, hiển thị ở health check
	Status map[string]string

	mongoClient *mongo.Client
	closers     []func() error
}

// InitLogger production config khi app.env=production, ngược lại development config
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// InitMongoDB kết nối và ping MongoDB
func InitMongoDB(ctx context.Context, url string, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("kết nối MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}

// LoadSeedFile đọc danh sách record từ file JSON
func LoadSeedFile(path string) ([]models.AddressRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("đọc seed file: %w", err)
	}
	var records []models.AddressRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return records, nil
}

// Build dựng toàn bộ collaborator. Backend tùy chọn (Redis, Meilisearch, Kafka, S3) lỗi kết nối
// chỉ bị log và bỏ qua; store chính lỗi thì trả về lỗi.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Status: make(map[string]string)}

	if err := c.buildDirectory(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}
	c.buildScanLogs(cfg, logger)
	c.buildCache(cfg, logger)
	c.buildIndex(cfg, logger)
	c.buildRecognizer(cfg, logger)
	c.buildPublisher(cfg, logger)
	c.buildArchive(ctx, cfg, logger)

	return c, nil
}

func (c *Components) buildDirectory(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Storage.Driver {
	case "mongo":
		client, err := InitMongoDB(ctx, cfg.Mongo.URL, logger)
		if err != nil {
			return err
		}
		c.mongoClient = client
		c.closers = append(c.closers, func() error { return client.Disconnect(context.Background()) })
		c.Directory = services.NewMongoDirectoryService(client.Database(cfg.Mongo.Database), logger)
	case "postgres":
		directory, err := services.NewPostgresDirectoryService(cfg.Postgres.DSN, logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, directory.Close)
		c.Directory = directory
	default:
		var seed []models.AddressRecord
		if cfg.Storage.SeedFile != "" {
			records, err := LoadSeedFile(cfg.Storage.SeedFile)
			if err != nil {
				return err
			}
			seed = records
		}
		c.Directory = services.NewMemoryDirectoryService(seed)
		logger.Info("Using in-memory directory", zap.Int("records", len(seed)))
	}
	c.Status["store"] = cfg.Storage.Driver
	return nil
}

func (c *Components) buildScanLogs(cfg *config.Config, logger *zap.Logger) {
	if c.mongoClient != nil {
		logs, err := services.NewMongoScanLogService(c.mongoClient.Database(cfg.Mongo.Database), logger)
		if err == nil {
			c.ScanLogs = logs
			c.Status["scan_log"] = "mongo"
			return
		}
		logger.Warn("Không thể khởi tạo scan log MongoDB, dùng bộ nhớ", zap.Error(err))
	}
	c.ScanLogs = services.NewMemoryScanLogService()
	c.Status["scan_log"] = "memory"
}

// buildCache LRU trong process làm L1; L2 là Redis nếu có, không thì MongoDB khi store là mongo
func (c *Components) buildCache(cfg *config.Config, logger *zap.Logger) {
	if !cfg.Cache.Enabled {
		c.Status["cache"] = "disabled"
		return
	}

	l1 := services.NewLRUCacheService(cfg.Cache.L1Size, cfg.Cache.TTL)

	if cfg.Redis.URL != "" {
		redisCache, err := services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)
		if err == nil {
			c.Cache = services.NewHybridCacheService(l1, redisCache, logger)
			c.Status["cache"] = "lru+redis"
			return
		}
		logger.Warn("Không thể kết nối Redis, bỏ qua L2", zap.Error(err))
	}

	if c.mongoClient != nil {
		mongoCache := services.NewMongoCacheService(c.mongoClient.Database(cfg.Mongo.Database), cfg.Cache.TTL, logger)
		c.Cache = services.NewHybridCacheService(l1, mongoCache, logger)
		c.Status["cache"] = "lru+mongo"
		return
	}

	c.Cache = l1
	c.Status["cache"] = "lru"
}

func (c *Components) buildIndex(cfg *config.Config, logger *zap.Logger) {
	if cfg.Meilisearch.URL == "" {
		c.Status["search"] = "disabled"
		return
	}

	searcher, err := search.NewDirectorySearcher(search.SearchConfig{
		Host:      cfg.Meilisearch.URL,
		APIKey:    cfg.Meilisearch.MasterKey,
		IndexName: cfg.Meilisearch.Index,
		Timeout:   cfg.Meilisearch.Timeout,
	}, logger)
	if err != nil {
		logger.Warn("Không thể kết nối Meilisearch, tắt tìm kiếm", zap.Error(err))
		c.Status["search"] = "unavailable"
		return
	}
	if err := searcher.ConfigureIndex(); err != nil {
		logger.Warn("Không thể cấu hình index Meilisearch", zap.Error(err))
	}
	c.Index = searcher
	c.Status["search"] = "meilisearch"
}

func (c *Components) buildRecognizer(cfg *config.Config, logger *zap.Logger) {
	switch cfg.OCR.Engine {
	case "ocrspace":
		c.Recognizer = external.NewOCRSpaceRecognizer(external.OCRSpaceConfig{
			Endpoint: cfg.OCR.Endpoint,
			APIKey:   cfg.OCR.APIKey,
			Language: cfg.OCR.Language,
			Engine:   cfg.OCR.OCREngine,
			Timeout:  cfg.OCR.Timeout,
		}, logger)
	case "tesseract":
		recognizer, err := external.NewTesseractRecognizer(strings.Split(cfg.OCR.Language, "+")...)
		if err != nil {
			logger.Warn("Không thể khởi tạo Tesseract, tắt OCR", zap.Error(err))
			c.Status["ocr"] = "unavailable"
			return
		}
		c.Recognizer = recognizer
	default:
		c.Status["ocr"] = "disabled"
		return
	}
	c.Status["ocr"] = c.Recognizer.Name()
}

func (c *Components) buildPublisher(cfg *config.Config, logger *zap.Logger) {
	if len(cfg.Kafka.Brokers) == 0 {
		c.Publisher = events.NoopPublisher{}
		c.Status["events"] = "disabled"
		return
	}

	publisher, err := events.NewKafkaPublisher(KafkaConfig(cfg), logger)
	if err != nil {
		logger.Warn("Không thể kết nối Kafka, tắt publish event", zap.Error(err))
		c.Publisher = events.NoopPublisher{}
		c.Status["events"] = "unavailable"
		return
	}
	c.Publisher = publisher
	c.closers = append(c.closers, publisher.Close)
	c.Status["events"] = "kafka"
}

func (c *Components) buildArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	if cfg.S3.Bucket == "" {
		c.Archive = services.NoopLabelArchive{}
		c.Status["archive"] = "disabled"
		return
	}

	archive, err := services.NewS3LabelArchive(ctx, services.S3ArchiveConfig{
		Bucket:   cfg.S3.Bucket,
		Prefix:   cfg.S3.Prefix,
		Region:   cfg.S3.Region,
		Endpoint: cfg.S3.Endpoint,
	}, logger)
	if err != nil {
		logger.Warn("Không thể khởi tạo S3 archive", zap.Error(err))
		c.Archive = services.NoopLabelArchive{}
		c.Status["archive"] = "unavailable"
		return
	}
	c.Archive = archive
	c.Status["archive"] = "s3"
}

// DirectoryIndex trả về index dưới dạng interface, nil khi tìm kiếm bị tắt
func (c *Components) DirectoryIndex() services.DirectoryIndex {
	if c.Index == nil {
		return nil
	}
	return c.Index
}

// ScanOptions option cho ScanService từ các collaborator đã dựng
func (c *Components) ScanOptions() []services.ScanServiceOption {
	opts := []services.ScanServiceOption{
		services.WithScanLogs(c.ScanLogs),
		services.WithPublisher(c.Publisher),
		services.WithLabelArchive(c.Archive),
	}
	if c.Cache != nil {
		opts = append(opts, services.WithCache(c.Cache))
	}
	if c.Recognizer != nil {
		opts = append(opts, services.WithRecognizer(c.Recognizer))
	}
	return opts
}

// Close đóng các kết nối theo thứ tự ngược lại
func (c *Components) Close() {
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

// KafkaConfig chuyển config.KafkaConfig sang events.KafkaConfig
func KafkaConfig(cfg *config.Config) events.KafkaConfig {
	return events.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}
}
