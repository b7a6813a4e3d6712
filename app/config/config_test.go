package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.OCR.OCREngine)
	assert.Equal(t, "parcel.scans", cfg.Kafka.Topic)
	assert.Equal(t, "0 3 * * *", cfg.Worker.ResetSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("app:\n  port: \"9090\"\nstorage:\n  driver: postgres\npostgres:\n  dsn: postgres://localhost/parcels\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/parcels", cfg.Postgres.DSN)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{Storage: StorageConfig{Driver: "memory"}}},
		{name: "postgres without dsn", cfg: Config{Storage: StorageConfig{Driver: "postgres"}}, wantErr: true},
		{name: "unknown driver", cfg: Config{Storage: StorageConfig{Driver: "sqlite"}}, wantErr: true},
		{name: "unknown ocr", cfg: Config{Storage: StorageConfig{Driver: "memory"}, OCR: OCRConfig{Engine: "vision"}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
