package config

import (
	"flag"
	"fmt"

	"github.com/magicJie/vaultwarden/internal/flagx"
)

// serverFlags are the flags parseFlags understands; everything else in the
// argument list is ignored.
var serverFlags = []string{"-t", "-d", "-f", "-s", "-u", "-p", "-b", "-g", "-e", "-x", "-r", "-w", "-m", "-l"}

// parseFlags overlays command-line flags onto config.
//
// Supported flags (short forms):
//
//	-t string     database driver ("sqlite" or "pgx")
//	-d string     database DSN
//	-f string     attachments root directory
//	-s string     storage backend ("local" or "s3")
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string     S3 key prefix
//	-r uint       delete retries after the first attempt
//	-w duration   pause between delete attempts (e.g., "500ms")
//	-m string     metrics listen address, empty disables
//	-l string     log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AttachmentsRoot, "f", config.AttachmentsRoot, "attachments root directory")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Prefix, "x", config.S3Prefix, "S3 key prefix")

	fs.Uint64Var(&config.DeleteMaxRetries, "r", config.DeleteMaxRetries, "delete retries")
	fs.DurationVar(&config.DeleteRetryBackoff, "w", config.DeleteRetryBackoff, "delete retry backoff")

	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
