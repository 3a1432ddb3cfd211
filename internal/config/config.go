package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds every runtime setting of the service.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string

	StorageDriver      string
	StorageRoot        string
	S3                 S3Config
	ProfilePhotoBucket string
	LessonPhotoBucket  string

	KafkaBrokers []string

	SchoolName     string
	SessionTTL     time.Duration
	RosterCacheTTL time.Duration
}

// S3Config describes an S3-compatible object storage endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// LoadConfig reads an optional .env file and the process environment.
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_driver", DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("storage_driver", StorageLocal)
	v.SetDefault("storage_root", ".")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_use_ssl", true)
	v.SetDefault("profile_photo_bucket", "fotos_alunos")
	v.SetDefault("lesson_photo_bucket", "fotos_aee")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("school_name", "CEU EMEF Prof.ª MARA CRISTINA TARTAGLIA SENA")
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("roster_cache_ttl", 5*time.Second)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:    v.GetString("environment"),
		Port:           v.GetString("port"),
		DatabaseDriver: strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:    v.GetString("database_url"),
		RedisURL:       v.GetString("redis_url"),
		StorageDriver:  strings.ToLower(v.GetString("storage_driver")),
		StorageRoot:    v.GetString("storage_root"),
		S3: S3Config{
			Endpoint:  v.GetString("s3_endpoint"),
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
			Region:    v.GetString("s3_region"),
			UseSSL:    v.GetBool("s3_use_ssl"),
		},
		ProfilePhotoBucket: v.GetString("profile_photo_bucket"),
		LessonPhotoBucket:  v.GetString("lesson_photo_bucket"),
		KafkaBrokers:       splitList(v.GetString("kafka_brokers")),
		SchoolName:         v.GetString("school_name"),
		SessionTTL:         v.GetDuration("session_ttl"),
		RosterCacheTTL:     v.GetDuration("roster_cache_ttl"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "aee.db"
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
	case StorageS3:
		if c.S3.Endpoint == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.ProfilePhotoBucket == "" || c.LessonPhotoBucket == "" {
		return fmt.Errorf("photo bucket names must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
