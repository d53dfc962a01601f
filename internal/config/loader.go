package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by NAZOLOG_STORAGE_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverS3     = "s3"
)

// DefaultStorageKey is the slot key the browser version of the log used.
const DefaultStorageKey = "nazoRecords"

// Config captures environment driven configuration values for the log service.
type Config struct {
	HTTPPort        int           `env:"NAZOLOG_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"NAZOLOG_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"NAZOLOG_LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"NAZOLOG_STORAGE_DRIVER" envDefault:"sqlite"`
	StorageKey    string `env:"NAZOLOG_STORAGE_KEY" envDefault:"nazoRecords"`

	SQLiteDSN string `env:"NAZOLOG_SQLITE_DSN" envDefault:"file:nazolog.db"`

	RedisAddr     string `env:"NAZOLOG_REDIS_ADDR"`
	RedisPassword string `env:"NAZOLOG_REDIS_PASSWORD"`
	RedisDB       int    `env:"NAZOLOG_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"NAZOLOG_REDIS_PREFIX" envDefault:"nazolog:"`

	S3Bucket    string `env:"NAZOLOG_S3_BUCKET"`
	S3Region    string `env:"NAZOLOG_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"NAZOLOG_S3_ENDPOINT"`
	S3PathStyle bool   `env:"NAZOLOG_S3_PATH_STYLE" envDefault:"false"`

	CatalogPath       string `env:"NAZOLOG_CATALOG_PATH"`
	OwnerPasswordHash string `env:"NAZOLOG_OWNER_PASSWORD_HASH"`
}

// Load parses configuration values from the current process environment.
//
// Defaults are applied by the env tags. After parsing, semantic checks collect
// every missing and invalid variable so the operator sees them all at once,
// reported with Japanese messages like the rest of the service.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.StorageKey = strings.TrimSpace(cfg.StorageKey)
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.CatalogPath = strings.TrimSpace(cfg.CatalogPath)
	cfg.OwnerPasswordHash = strings.TrimSpace(cfg.OwnerPasswordHash)

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "NAZOLOG_HTTP_PORT")
	}
	if cfg.ShutdownTimeout <= 0 {
		invalid = append(invalid, "NAZOLOG_SHUTDOWN_TIMEOUT")
	}

	switch cfg.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if cfg.SQLiteDSN == "" {
			missing = append(missing, "NAZOLOG_SQLITE_DSN")
		}
	case DriverRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, "NAZOLOG_REDIS_ADDR")
		}
		if cfg.RedisDB < 0 {
			invalid = append(invalid, "NAZOLOG_REDIS_DB")
		}
	case DriverS3:
		if cfg.S3Bucket == "" {
			missing = append(missing, "NAZOLOG_S3_BUCKET")
		}
	default:
		invalid = append(invalid, "NAZOLOG_STORAGE_DRIVER")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
