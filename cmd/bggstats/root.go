package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/bgg-stats/internal/config"
	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by all commands.
type options struct {
	configPath string
	logLevel   string
	pretty     bool
	jsonOut    bool
	top        int
	members    bool

	cfg *config.Config
}

// topN returns --top when set, else the configured default.
func (o *options) topN() int {
	if o.top > 0 {
		return o.top
	}
	return o.cfg.Collection.TopN
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "bggstats",
		Short: "Summarize BoardGameGeek collections",
		Long: `bggstats fetches a BoardGameGeek user's collection and summarizes it
by category, mechanic and release year. Requests to BGG are paced one at a
time, so large collections take a while.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default bggstats.yaml, or $BGGSTATS_CONFIG)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable logs")
	flags.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	flags.IntVar(&opts.top, "top", 0, "number of entries in top-N views (default from config)")
	flags.BoolVar(&opts.members, "members", false, "list the games behind each entry")

	root.AddCommand(
		newAggregateCmd(opts, "categories", "Top categories of a collection", facetCategories),
		newAggregateCmd(opts, "mechanics", "Top mechanics of a collection", facetMechanics),
		newYearsCmd(opts),
		newRadarCmd(opts),
		newVersusCmd(opts),
		newServeCmd(opts),
	)

	return root
}

// load reads configuration and applies flag overrides before any command
// runs.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		if _, err := logging.ParseLevel(o.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Log.Pretty = o.pretty
	}
	if o.top < 0 {
		return fmt.Errorf("--top must be > 0 (got %d)", o.top)
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	o.cfg = cfg
	return nil
}

// withApp wires the components, runs fn and releases them.
func (o *options) withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close resources")
		}
	}()
	return fn(a)
}
