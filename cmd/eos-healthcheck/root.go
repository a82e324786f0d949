package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/analyze"
	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/internal/config"
	"github.com/diogo-arista/arista-tac-utilities/internal/transport"
	"github.com/diogo-arista/arista-tac-utilities/internal/version"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

var rootCmd = &cobra.Command{
	Use:   "eos-healthcheck",
	Short: "Health check for Arista EOS switches",
	Long: `eos-healthcheck runs a battery of EOS show commands against a switch,
on the box itself or remotely over eAPI or SSH, grades the output into
a health report, and archives the result for TAC escalation.

Running it with no subcommand performs a single check.`,
	Version:      version.Short(),
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd.Context())
	},
}

var (
	flagConfig   string
	flagLogLevel string
	flagFormat   string
	flagNoColor  bool
	flagHost     string
	flagUsername string
	flagNoMenu   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "config file path")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&flagFormat, "format", "f", "", "report format: text, json, yaml")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	pf.StringVar(&flagHost, "host", "", "switch address (prompted for when unset and off-box)")
	pf.StringVar(&flagUsername, "username", "", "switch username")
	pf.BoolVar(&flagNoMenu, "no-menu", false, "skip the interactive menu after the report")
}

// loadConfig reads the configuration and overlays the flags the user
// set explicitly, then builds the logger from the result.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	if flagHost != "" {
		cfg.Device.Host = flagHost
	}
	if flagUsername != "" {
		cfg.Device.Username = flagUsername
	}
	if flagFormat != "" {
		cfg.Render.Format = flagFormat
	}
	if flagNoColor {
		cfg.Render.Color = "never"
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// runPipeline performs one complete pass: probe the transport, collect
// the battery, aggregate the report. interactive controls whether
// missing credentials may be prompted for on the terminal.
func runPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger, interactive bool) (*health.Report, *collect.Run, error) {
	preset := transport.Credentials{
		Host:     cfg.Device.Host,
		Username: cfg.Device.Username,
		Password: cfg.Device.Password,
	}
	var source transport.CredentialSource = transport.StaticSource(preset)
	if interactive {
		source = transport.NewTerminalSource(preset)
	}

	prober := transport.NewProber(source, logger)
	prober.EAPIRate = cfg.Collect.EAPIRate

	conn, err := prober.Probe(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	executor := collect.NewExecutor(conn, cfg.Collect.Timeout, logger)
	collector := collect.NewCollector(executor, catalog.Battery(), cfg.Collect.Workers, logger)
	run := collector.Collect(ctx)

	analyzer := analyze.New(
		health.Thresholds{Warn: cfg.Thresholds.Warn, Crit: cfg.Thresholds.Crit},
		cfg.Thresholds.FlapCount,
	)
	return analyzer.Aggregate(run, conn.Hostname()), run, nil
}
