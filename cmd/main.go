package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rewardscan/internal/adapters/peerlist"
	app "github.com/okian/rewardscan/internal/app"
	"github.com/okian/rewardscan/internal/config"
	"github.com/okian/rewardscan/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flags struct {
	file        string
	peerIDs     []string
	configPath  string
	source      string
	strategy    string
	metricsFile string
	logLevel    string
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rewardscan:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	defaults := config.New()

	cmd := &cobra.Command{
		Use:   "rewardscan [peer ids...]",
		Short: "Report Quilibrium node rewards for a list of peers",
		Long: "Fetches the published reward data, merges every source into one record " +
			"per peer, prints a network summary and a block per requested peer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.file, "file", defaults.PeersFile, "file with peer ids, one per line")
	fs.StringSliceVar(&f.peerIDs, "peer_ids", nil, "peer ids to report on; overrides --file")
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	fs.StringVar(&f.source, "source", defaults.Source, "reward source: json or script")
	fs.StringVar(&f.strategy, "strategy", defaults.Strategy, "classification: phase or presence")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this path")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")
	return cmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	ctx := cmd.Context()

	if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env), then flags.
	cfg, err := config.Load(ctx, f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	// Resolve peers before touching the network so a missing file fails fast.
	ids, err := resolvePeers(append(append([]string{}, f.peerIDs...), args...), cfg.PeersFile)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(log),
		app.WithOutput(cmd.OutOrStdout()),
	)
	return svc.Run(ctx, ids)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(fs *pflag.FlagSet, f *flags, cfg *config.Config) {
	if fs.Changed("file") {
		cfg.PeersFile = f.file
	}
	if fs.Changed("source") {
		cfg.Source = f.source
	}
	if fs.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

// resolvePeers returns explicit ids when any are given, otherwise the ids
// listed in file.
func resolvePeers(explicit []string, file string) ([]string, error) {
	ids := peerlist.Merge(explicit, nil)
	if len(ids) > 0 {
		return ids, nil
	}
	fromFile, err := peerlist.Load(file)
	if err != nil {
		return nil, err
	}
	return peerlist.Merge(nil, fromFile), nil
}
