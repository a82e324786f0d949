package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo-arista/arista-tac-utilities/internal/archive"
	"github.com/diogo-arista/arista-tac-utilities/internal/config"
	"github.com/diogo-arista/arista-tac-utilities/internal/render"
	"github.com/diogo-arista/arista-tac-utilities/internal/version"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived runs from the run store",
	Long: `history reads the SQLite run store written by check and serve. Without
flags it lists the most recent runs; --show re-renders one stored report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runHistory(cmd.Context())
	},
}

var (
	flagLimit int
	flagShow  string
)

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().StringVar(&flagShow, "show", "", "render the stored report for a run ID")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Archive.Database == "" {
		return fmt.Errorf("no run store configured: set archive.database")
	}

	store, err := archive.Open(ctx, cfg.Archive.Database, version.Short())
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	if flagShow != "" {
		return showRun(ctx, cfg, store)
	}
	return listRuns(ctx, store)
}

func listRuns(ctx context.Context, store *archive.Store) error {
	runs, err := store.RecentRuns(ctx, flagLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-16s  %-8s  %8s  %9s\n",
		"RUN ID", "HOSTNAME", "GENERATED (UTC)", "OVERALL", "FAILURES", "DURATION")
	for _, r := range runs {
		fmt.Printf("%-36s  %-20s  %-16s  %-8s  %8d  %9s\n",
			r.ID, r.Hostname, r.GeneratedAt.UTC().Format("2006-01-02 15:04"),
			r.Overall, r.Failures, r.Duration.Round(time.Millisecond))
	}
	return nil
}

// showRun re-renders one archived report with the current format and
// color flags, so an old run can be reviewed without touching the device.
func showRun(ctx context.Context, cfg *config.Config, store *archive.Store) error {
	report, err := store.LoadReport(ctx, flagShow)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("run %q not found in the store", flagShow)
	}

	color := render.ColorEnabled(cfg.Render.Color, os.Stdout)
	out, err := render.Report(report, render.Format(cfg.Render.Format), color)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
