// Package commands implements the fuel-etl command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Sternrassler/fuel-data-etl/pkg/config"
	"github.com/Sternrassler/fuel-data-etl/pkg/etl"
	"github.com/Sternrassler/fuel-data-etl/pkg/logging"
	"github.com/Sternrassler/fuel-data-etl/pkg/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options holds the persistent flags and the configuration loaded from them.
type options struct {
	configPath  string
	logLevel    string
	logPretty   bool
	metricsFile string
	logOutput   io.Writer

	cfg config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stderr)
}

func newRootCommand(logOutput io.Writer) *cobra.Command {
	opts := &options{logOutput: logOutput}

	root := &cobra.Command{
		Use:   "fuel-etl",
		Short: "fuel-etl downloads alternative fuel datasets and writes them as CSV files.",
		Long: "fuel-etl fetches the NREL alternative fuel station list and the California DMV\n" +
			"vehicle fuel type datasets and writes each to a CSV file. Any failed request\n" +
			"aborts the run without writing output.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "json5 config file (optional)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.BoolVar(&opts.logPretty, "log-pretty", false, "human-readable console logs instead of JSON")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")

	root.AddCommand(newStationsCmd(opts), newVehiclesCmd(opts))
	return root
}

// ExecuteContext runs the command tree and exits with status 1 on failure.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: o.logPretty,
		Output: o.logOutput,
	})
	log.Debug().
		Str("command", cmd.Name()).
		Str("config", o.configPath).
		Bool("cache", cfg.RedisURL != "").
		Msg("Configuration loaded")

	o.cfg = cfg
	return nil
}

// run executes job and reports its summary. Metrics are written for failed
// runs too.
func (o *options) run(cmd *cobra.Command, job func() (*etl.Summary, error)) (err error) {
	if o.metricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(o.metricsFile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	summary, err := job()
	if err != nil {
		log.Error().Err(err).Str("command", cmd.Name()).Msg("Run failed")
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records (%d columns) to %s in %s\n",
		summary.Records, len(summary.Columns), summary.Path, summary.Duration.Round(time.Millisecond))
	return nil
}
