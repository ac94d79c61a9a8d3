// Package server wires the attachment store into a running process: it opens
// the database, applies migrations, selects the payload backend and exposes
// store metrics over HTTP until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magicJie/vaultwarden/internal/blobstore"
	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/filex"
	"github.com/magicJie/vaultwarden/internal/logging"
	"github.com/magicJie/vaultwarden/internal/server/config"
	"github.com/magicJie/vaultwarden/internal/server/repositories/repomanager"
	"github.com/magicJie/vaultwarden/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	registry    *prometheus.Registry
	attachments *services.AttachmentService
}

type appOptions struct {
	logOutput io.Writer
}

// AppOption customises NewApp.
type AppOption func(*appOptions)

// WithLogOutput sends log records to w instead of stdout.
func WithLogOutput(w io.Writer) AppOption {
	return func(o *appOptions) { o.logOutput = w }
}

// NewApp opens the database described by c, migrates it and builds the
// attachment service. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, c *config.Config, opts ...AppOption) (*App, error) {
	o := appOptions{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(o.logOutput, level)

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	files, err := NewStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.Debug(ctx, "store opened",
		"driver", c.DatabaseDriver, "storage", c.StorageBackend, "delete_retries", c.DeletePolicy().MaxRetries)

	svc := services.NewAttachmentService(db, rm, files,
		services.WithLogger(logger),
		services.WithDeletePolicy(c.DeletePolicy()),
		services.WithMetrics(services.MustNewMetrics(registry)),
	)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		registry:    registry,
		attachments: svc,
	}, nil
}

// NewStore returns the payload store selected by c.StorageBackend. The local
// root is created if needed.
func NewStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.StorageBackend {
	case config.StorageLocal:
		if err := filex.EnsureDir(c.AttachmentsRoot); err != nil {
			return nil, err
		}
		return blobstore.NewLocalStore(c.AttachmentsRoot), nil
	case config.StorageS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnknownStorageBackend, c.StorageBackend)
	}
}

// ParseLevel maps a configured level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func (app *App) Attachments() *services.AttachmentService {
	return app.attachments
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	return mux
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves metrics until ctx is done or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting app...",
		"driver", app.config.DatabaseDriver,
		"storage", app.config.StorageBackend,
		"metrics_addr", app.config.MetricsAddr)

	if app.config.MetricsAddr == "" {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping app...")
		return nil
	}

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           app.metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			app.logger.Error(ctx, "metrics server failed", "error", err)
			return fmt.Errorf("metrics server: %w", err)
		}
	}

	app.logger.Info(ctx, "Stopping app...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
