// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/retryx"
)

// Payload storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds runtime settings for the vault server and its admin tools.
// It is read once at start and passed explicitly; nothing mutates it later.
//
// Fields:
//   - DatabaseDriver: "sqlite" (modernc) or "pgx" (PostgreSQL).
//   - DatabaseDSN: driver specific data source name.
//   - AttachmentsRoot: directory holding payloads as <root>/<cipher>/<id>.
//   - StorageBackend: "local" or "s3".
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint / S3Prefix: object storage settings.
//   - DeleteMaxRetries / DeleteRetryBackoff: contention policy for row deletes.
//   - MetricsAddr: bind address of the Prometheus endpoint, empty disables it.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDriver     string
	DatabaseDSN        string
	AttachmentsRoot    string
	StorageBackend     string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	S3Prefix           string
	DeleteMaxRetries   uint64
	DeleteRetryBackoff time.Duration
	MetricsAddr        string
	LogLevel           string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the S3 credentials are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = "data/db.sqlite3"
	c.AttachmentsRoot = "data/attachments"
	c.StorageBackend = StorageLocal
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Prefix = "attachments"
	c.DeleteMaxRetries = retryx.DefaultDeletePolicy.MaxRetries
	c.DeleteRetryBackoff = retryx.DefaultDeletePolicy.Backoff
	c.MetricsAddr = ":9090"
	c.LogLevel = "info"
}

// DeletePolicy is the retry policy for attachment row deletes.
func (c *Config) DeletePolicy() retryx.Policy {
	return retryx.Policy{MaxRetries: c.DeleteMaxRetries, Backoff: c.DeleteRetryBackoff}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case dbx.DriverSQLite, dbx.DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", common.ErrorUnknownDriver, c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.AttachmentsRoot == "" {
			return fmt.Errorf("attachments root is required for %s storage", StorageLocal)
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("bucket is required for %s storage", StorageS3)
		}
	default:
		return fmt.Errorf("%w: %q", common.ErrorUnknownStorageBackend, c.StorageBackend)
	}

	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file (-c/-config) and finally from command-line flags.
// args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on an unusable configuration.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
