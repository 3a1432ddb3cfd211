package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "aee.db", cfg.DatabaseURL)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.Equal(t, "fotos_alunos", cfg.ProfilePhotoBucket)
	assert.Equal(t, "fotos_aee", cfg.LessonPhotoBucket)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.RosterCacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://aee@localhost/aee")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_MissingSecretsFail(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "postgres without url",
			env:  map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""},
		},
		{
			name: "unknown driver",
			env:  map[string]string{"DATABASE_DRIVER": "oracle"},
		},
		{
			name: "s3 without credentials",
			env: map[string]string{
				"DATABASE_DRIVER": "sqlite",
				"STORAGE_DRIVER":  "s3",
				"S3_ENDPOINT":     "storage.example.com",
			},
		},
		{
			name: "bad log level",
			env:  map[string]string{"DATABASE_DRIVER": "sqlite", "LOG_LEVEL": "loud"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV_FILE", "does-not-exist.env")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
