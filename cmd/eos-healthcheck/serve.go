package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/archive"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/internal/notify"
	"github.com/diogo-arista/arista-tac-utilities/internal/serve"
	"github.com/diogo-arista/arista-tac-utilities/internal/version"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived Prometheus exporter",
	Long: `serve repeats the health check on a schedule and publishes the results
as Prometheus metrics on /metrics. Credentials must come from the config
file or EOSHC_* environment variables; serve never prompts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

var (
	flagListen   string
	flagSchedule string
	flagInterval time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "metrics listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagSchedule, "schedule", "", "cron schedule for check runs (overrides config)")
	serveCmd.Flags().DurationVar(&flagInterval, "interval", 0, "delay between check runs (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if flagListen != "" {
		cfg.Serve.Listen = flagListen
	}
	if flagSchedule != "" {
		cfg.Serve.Schedule = flagSchedule
	}
	if flagInterval > 0 {
		cfg.Serve.Interval = flagInterval
	}

	logger.Info("monitor starting",
		zap.String("version", version.Short()),
		zap.String("host", cfg.Device.Host),
		zap.String("schedule", cfg.Serve.Schedule),
		zap.Duration("interval", cfg.Serve.Interval))

	var store *archive.Store
	if cfg.Archive.Database != "" {
		store, err = archive.Open(ctx, cfg.Archive.Database, version.Short())
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
		logger.Info("run store opened", zap.String("path", cfg.Archive.Database))
	}

	notifier, err := notify.New(cfg.Notify.URL, cfg.Notify.Template, logger)
	if err != nil {
		return err
	}

	runner := func(ctx context.Context) (*health.Report, *collect.Run, error) {
		return runPipeline(ctx, cfg, logger, false)
	}

	mon, err := serve.NewMonitor(serve.Options{
		Runner:   runner,
		Schedule: cfg.Serve.Schedule,
		Interval: cfg.Serve.Interval,
		Store:    store,
		Alerter:  notifier,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon.Start(runCtx)
	defer mon.Stop()

	if cfg.File != "" {
		onChange := func() { mon.Trigger("config change") }
		if err := serve.WatchConfig(runCtx, cfg.File, onChange, logger); err != nil {
			logger.Warn("config watch unavailable", zap.Error(err))
		}
	}

	srv := serve.NewHTTPServer(cfg.Serve.Listen, mon)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.Serve.Listen))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", zap.Error(err))
	}

	mon.Stop()
	logger.Info("monitor stopped")
	return nil
}
