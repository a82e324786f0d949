package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/archive"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/internal/config"
	"github.com/diogo-arista/arista-tac-utilities/internal/menu"
	"github.com/diogo-arista/arista-tac-utilities/internal/notify"
	"github.com/diogo-arista/arista-tac-utilities/internal/render"
	"github.com/diogo-arista/arista-tac-utilities/internal/transfer"
	"github.com/diogo-arista/arista-tac-utilities/internal/version"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the health check once and print the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	format := render.Format(cfg.Render.Format)
	if format == render.FormatText {
		printBanner()
	}

	report, run, err := runPipeline(ctx, cfg, logger, true)
	if err != nil {
		return err
	}

	color := render.ColorEnabled(cfg.Render.Color, os.Stdout)
	out, err := render.Report(report, format, color)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logPath := saveArtifacts(ctx, cfg, logger, report, run)

	notifier, err := notify.New(cfg.Notify.URL, cfg.Notify.Template, logger)
	if err != nil {
		logger.Warn("notifier not configured", zap.Error(err))
	} else if err := notifier.Notify(report); err != nil {
		logger.Warn("notification failed", zap.Error(err))
	}

	if runMenu(format) {
		m := menu.New(transfer.NewSFTP(logger), cfg.Transfer.SFTP.Dest, logger)
		if err := m.Run(ctx, string(out), logPath); err != nil {
			return err
		}
	}
	return nil
}

// saveArtifacts writes the plain-text log file and, when configured,
// records the run in the sqlite store and pushes the log to object
// storage. Archive failures never fail the check; the report already
// reached the operator.
func saveArtifacts(ctx context.Context, cfg *config.Config, logger *zap.Logger, report *health.Report, run *collect.Run) string {
	writer := archive.NewFileWriter(cfg.Archive.Dir, logger)
	logPath, err := writer.Write(report, run)
	if err != nil {
		logger.Warn("log file not written", zap.Error(err))
		logPath = ""
	}

	if cfg.Archive.Database != "" {
		store, err := archive.Open(ctx, cfg.Archive.Database, version.Short())
		if err != nil {
			logger.Warn("run store unavailable", zap.String("path", cfg.Archive.Database), zap.Error(err))
		} else {
			if err := store.SaveRun(ctx, report, run); err != nil {
				logger.Warn("run not archived", zap.Error(err))
			}
			_ = store.Close()
		}
	}

	if cfg.Transfer.S3.Endpoint != "" && logPath != "" {
		uploader, err := transfer.NewS3(transfer.S3Options{
			Endpoint:  cfg.Transfer.S3.Endpoint,
			Bucket:    cfg.Transfer.S3.Bucket,
			AccessKey: cfg.Transfer.S3.AccessKey,
			SecretKey: cfg.Transfer.S3.SecretKey,
			Prefix:    cfg.Transfer.S3.Prefix,
			Secure:    cfg.Transfer.S3.Secure,
		}, logger)
		if err != nil {
			logger.Warn("s3 uploader not configured", zap.Error(err))
		} else if uri, checksum, err := uploader.Upload(ctx, logPath); err != nil {
			logger.Warn("s3 upload failed", zap.Error(err))
		} else {
			logger.Info("log file uploaded", zap.String("uri", uri), zap.String("checksum", checksum))
		}
	}

	return logPath
}

// printBanner writes the start-of-run header shown before a text
// report.
func printBanner() {
	bar := strings.Repeat("=", 80)
	fmt.Println(bar)
	fmt.Println(center("Arista EOS Health Check", 80))
	fmt.Println(center("Version "+version.Short(), 80))
	fmt.Println(bar)
}

func center(s string, width int) string {
	if pad := (width - len(s)) / 2; pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// runMenu reports whether the post-run menu should be offered: only
// for text reports on a real terminal, and only when not disabled.
func runMenu(format render.Format) bool {
	if flagNoMenu || format != render.FormatText {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
