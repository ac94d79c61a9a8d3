// Package cli implements attachctl, an operator tool over the attachment
// store. It shares the server configuration layer and opens the same
// database and payload backend the server uses.
package cli

import (
	"context"
	"fmt"

	"github.com/magicJie/vaultwarden/internal/server"
	"github.com/magicJie/vaultwarden/internal/server/config"
	"github.com/magicJie/vaultwarden/internal/server/services"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	driver     string
	dsn        string
	root       string
	storage    string
	logLevel   string
}

// newApp is replaced in tests.
var newApp = server.NewApp

// NewRootCommand builds the attachctl command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "attachctl",
		Short:         "Inspect and maintain vault attachments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "path to the server JSON config")
	pf.StringVar(&o.driver, "driver", "", "database driver (sqlite or pgx)")
	pf.StringVar(&o.dsn, "dsn", "", "database DSN")
	pf.StringVar(&o.root, "attachments-root", "", "attachments root directory")
	pf.StringVar(&o.storage, "storage", "", "storage backend (local or s3)")
	pf.StringVar(&o.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newMigrateCommand(o),
		newAddCommand(o),
		newListCommand(o),
		newShowCommand(o),
		newURLCommand(o),
		newDeleteCommand(o),
		newPurgeCommand(o),
	)
	return cmd
}

// load resolves defaults, then the JSON file, then explicitly set flags.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = o.logLevel

	if o.configFile != "" {
		if err := config.ApplyJSONFile(cfg, o.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		dst  *string
		val  string
	}{
		{"driver", &cfg.DatabaseDriver, o.driver},
		{"dsn", &cfg.DatabaseDSN, o.dsn},
		{"attachments-root", &cfg.AttachmentsRoot, o.root},
		{"storage", &cfg.StorageBackend, o.storage},
		{"log-level", &cfg.LogLevel, o.logLevel},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dst = ov.val
		}
	}

	// the server owns the metrics endpoint
	cfg.MetricsAddr = ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run opens the store for the duration of fn.
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, svc *services.AttachmentService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}

	// stdout carries command output only
	app, err := newApp(ctx, cfg, server.WithLogOutput(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer app.Close()

	return fn(ctx, app.Attachments())
}
