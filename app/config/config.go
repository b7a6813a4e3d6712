package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig cấu hình HTTP server
type AppConfig struct {
	Port           string        `mapstructure:"port"`
	Env            string        `mapstructure:"env"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxImageBytes  int64         `mapstructure:"max_image_bytes"`
}

// StorageConfig chọn backend cho danh bạ: mongo, postgres hoặc memory
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	SeedFile string `mapstructure:"seed_file"` // JSON, chỉ dùng với memory
}

// MongoConfig cấu hình MongoDB
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// PostgresConfig cấu hình PostgreSQL
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig cấu hình Redis
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig cấu hình cache snapshot
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	L1Size  int           `mapstructure:"l1_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MeilisearchConfig cấu hình Meilisearch
type MeilisearchConfig struct {
	URL       string        `mapstructure:"url"`
	MasterKey string        `mapstructure:"master_key"`
	Index     string        `mapstructure:"index"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// OCRConfig cấu hình OCR
type OCRConfig struct {
	Engine    string        `mapstructure:"engine"` // ocrspace, tesseract, none
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Language  string        `mapstructure:"language"`
	OCREngine int           `mapstructure:"ocr_engine"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// KafkaConfig cấu hình Kafka
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// S3Config cấu hình archive ảnh nhãn
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// WorkerConfig cấu hình worker
type WorkerConfig struct {
	ResetSchedule string `mapstructure:"reset_schedule"` // cron, rỗng = tắt
	ConsumeEvents bool   `mapstructure:"consume_events"`
}

// Config cấu hình toàn bộ service
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Meilisearch MeilisearchConfig `mapstructure:"meilisearch"`
	OCR         OCRConfig         `mapstructure:"ocr"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	S3          S3Config          `mapstructure:"s3"`
	Worker      WorkerConfig      `mapstructure:"worker"`
}

// IsProduction chạy ở môi trường production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load đọc .env (nếu có), file config/app.yaml (nếu có) rồi env vars. Env var dùng dạng
// SECTION_KEY, ví dụ MONGO_URL, KAFKA_BROKERS.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("đọc file config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env var KAFKA_BROKERS dạng "a:9092,b:9092"
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate kiểm tra các giá trị bắt buộc
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongo":
		if c.Mongo.URL == "" {
			return errors.New("mongo.url là bắt buộc khi storage.driver=mongo")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn là bắt buộc khi storage.driver=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver không hợp lệ: %q", c.Storage.Driver)
	}

	switch c.OCR.Engine {
	case "ocrspace", "tesseract", "none", "":
	default:
		return fmt.Errorf("ocr.engine không hợp lệ: %q", c.OCR.Engine)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.request_timeout", 15*time.Second)
	v.SetDefault("app.max_image_bytes", 5<<20)

	v.SetDefault("storage.driver", "mongo")
	v.SetDefault("storage.seed_file", "")

	v.SetDefault("mongo.url", "mongodb://localhost:27017/parcel_tracker")
	v.SetDefault("mongo.database", "parcel_tracker")
	v.SetDefault("postgres.dsn", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.l1_size", 1000)
	v.SetDefault("cache.ttl", 30*time.Second)

	v.SetDefault("meilisearch.url", "")
	v.SetDefault("meilisearch.master_key", "")
	v.SetDefault("meilisearch.index", "parcels")
	v.SetDefault("meilisearch.timeout", 5*time.Second)

	v.SetDefault("ocr.engine", "ocrspace")
	v.SetDefault("ocr.endpoint", "https://api.ocr.space/parse/image")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.ocr_engine", 2)
	v.SetDefault("ocr.timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "parcel.scans")
	v.SetDefault("kafka.group_id", "parcel-tracker-worker")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "labels")
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("worker.reset_schedule", "0 3 * * *")
	v.SetDefault("worker.consume_events", true)
}
