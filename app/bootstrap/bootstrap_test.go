package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parcel-tracker/app/config"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seedJSON = `[
  {"id": "a", "sub_district": "บางพลี", "village": "หมู่ 3", "address": "10/2 Rd", "display_order": 1},
  {"id": "b", "sub_district": "บางพลี", "village": "หมู่ 3", "address": "67/1 Main Rd", "display_order": 2}
]`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	records, err := LoadSeedFile(writeSeed(t, seedJSON))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "67/1 Main Rd", records[1].Address)
	require.NotNil(t, records[1].DisplayOrder)
	assert.Equal(t, 2, *records[1].DisplayOrder)

	_, err = LoadSeedFile(writeSeed(t, "{not json"))
	assert.Error(t, err)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestBuild_MemoryDefaults(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory", SeedFile: writeSeed(t, seedJSON)},
		Cache:   config.CacheConfig{Enabled: true, L1Size: 16},
		OCR:     config.OCRConfig{Engine: "none"},
	}

	c, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	records, err := c.Directory.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.IsType(t, &services.LRUCacheService{}, c.Cache)
	assert.IsType(t, &services.MemoryScanLogService{}, c.ScanLogs)
	assert.IsType(t, events.NoopPublisher{}, c.Publisher)
	assert.IsType(t, services.NoopLabelArchive{}, c.Archive)
	assert.Nil(t, c.Recognizer)
	assert.Nil(t, c.DirectoryIndex())
	assert.Len(t, c.ScanOptions(), 4)

	assert.Equal(t, map[string]string{
		"store":    "memory",
		"scan_log": "memory",
		"cache":    "lru",
		"search":   "disabled",
		"ocr":      "disabled",
		"events":   "disabled",
		"archive":  "disabled",
	}, c.Status)
}

func TestBuild_OCRSpaceAndCacheDisabled(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		OCR:     config.OCRConfig{Engine: "ocrspace", APIKey: "k"},
	}

	c, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Cache)
	assert.Equal(t, "disabled", c.Status["cache"])
	require.NotNil(t, c.Recognizer)
	assert.Equal(t, "ocr_space", c.Status["ocr"])
	assert.Len(t, c.ScanOptions(), 4)
}

func TestBuild_BadSeedFile(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory", SeedFile: filepath.Join(t.TempDir(), "nope.json")},
	}
	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestKafkaConfig(t *testing.T) {
	cfg := &config.Config{Kafka: config.KafkaConfig{Brokers: []string{"a:9092"}, Topic: "t", GroupID: "g"}}
	assert.Equal(t, events.KafkaConfig{Brokers: []string{"a:9092"}, Topic: "t", GroupID: "g"}, KafkaConfig(cfg))
}
