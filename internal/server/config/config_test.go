package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/retryx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, "data/db.sqlite3", c.DatabaseDSN)
	assert.Equal(t, "data/attachments", c.AttachmentsRoot)
	assert.Equal(t, StorageLocal, c.StorageBackend)
	assert.Equal(t, "admin", c.S3RootUser)
	assert.Equal(t, "secretpassword", c.S3RootPassword)
	assert.Equal(t, "vault", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.Equal(t, "attachments", c.S3Prefix)
	assert.Equal(t, uint64(10), c.DeleteMaxRetries)
	assert.Equal(t, 500*time.Millisecond, c.DeleteRetryBackoff)
	assert.Equal(t, ":9090", c.MetricsAddr)
	assert.Equal(t, "info", c.LogLevel)

	assert.Equal(t, retryx.DefaultDeletePolicy, c.DeletePolicy())
	require.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_dsn": "from-json.db",
		"attachments_root": "/json/attachments",
		"delete_retry_backoff": "1s"
	}`), 0o600))

	c, err := Load([]string{"-c", path, "-d", "from-flag.db"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.db", c.DatabaseDSN, "flags override json")
	assert.Equal(t, "/json/attachments", c.AttachmentsRoot, "json overrides defaults")
	assert.Equal(t, time.Second, c.DeleteRetryBackoff)
	assert.Equal(t, "sqlite", c.DatabaseDriver, "defaults survive")
}

func TestLoad_NoArgsUsesDefaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	_, err = Load([]string{"-t", "mysql"})
	require.ErrorIs(t, err, common.ErrorUnknownDriver)

	_, err = Load([]string{"-r", "many"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		fails   bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.DatabaseDriver = "pgx" }},
		{name: "s3", mutate: func(c *Config) { c.StorageBackend = StorageS3; c.AttachmentsRoot = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: common.ErrorUnknownDriver},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "ftp" }, wantErr: common.ErrorUnknownStorageBackend},
		{name: "local without root", mutate: func(c *Config) { c.AttachmentsRoot = "" }, fails: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3; c.S3Bucket = "" }, fails: true},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.fails:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_PanicsOnBadConfig(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-s", "ftp"}
	require.Panics(t, func() { LoadConfig() })

	os.Args = []string{"testbin"}
	require.NotPanics(t, func() { LoadConfig() })
}
