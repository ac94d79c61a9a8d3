package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/magicJie/vaultwarden/internal/flagx"
	"github.com/magicJie/vaultwarden/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "500ms" and integer nanoseconds are accepted.
// Absent keys leave the current value alone.
type JsonConfig struct {
	DatabaseDriver     string          `json:"database_driver"`
	DatabaseDSN        string          `json:"database_dsn"`
	AttachmentsRoot    string          `json:"attachments_root"`
	StorageBackend     string          `json:"storage_backend"`
	S3RootUser         string          `json:"s3_root_user"`
	S3RootPassword     string          `json:"s3_root_password"`
	S3Bucket           string          `json:"s3_bucket"`
	S3Region           string          `json:"s3_region"`
	S3BaseEndpoint     string          `json:"s3_base_endpoint"`
	S3Prefix           *string         `json:"s3_prefix"`
	DeleteMaxRetries   *uint64         `json:"delete_max_retries"`
	DeleteRetryBackoff *timex.Duration `json:"delete_retry_backoff"`
	MetricsAddr        *string         `json:"metrics_addr"`
	LogLevel           string          `json:"log_level"`
}

// parseJSON overlays the file named by -c/-config in args, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}
	return ApplyJSONFile(config, path)
}

// ApplyJSONFile reads path and copies every key present in it into config.
func ApplyJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AttachmentsRoot, c.AttachmentsRoot)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	// these may legitimately be set to their zero value
	if c.S3Prefix != nil {
		config.S3Prefix = *c.S3Prefix
	}
	if c.DeleteMaxRetries != nil {
		config.DeleteMaxRetries = *c.DeleteMaxRetries
	}
	if c.DeleteRetryBackoff != nil {
		config.DeleteRetryBackoff = c.DeleteRetryBackoff.Duration
	}
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
