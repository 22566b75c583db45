// main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shaviz/v2/engine"
)

const defaultSimplifiedRounds = 16

var errRoundsWithoutSimplified = errors.New("round count ignored")

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	rounds     int
	simplified bool
	verbose    bool
}

func (o *globalOptions) config() engine.Config {
	return engine.Config{RoundCount: o.rounds, UseStandardParameters: !o.simplified}
}

func (o *globalOptions) newEngine() (*engine.Engine, error) {
	e, err := engine.NewEngine(o.config(), engine.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	return e, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "shaviz",
		Short:         "Step-by-step SHA-256 with a full trace of every operation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			changed := cmd.Flags().Changed("rounds")
			if !opts.simplified && changed && opts.rounds != engine.StandardRounds {
				return fmt.Errorf("%w: --rounds %d needs --simplified, standard SHA-256 always runs %d rounds",
					errRoundsWithoutSimplified, opts.rounds, engine.StandardRounds)
			}
			if opts.simplified && !changed {
				opts.rounds = defaultSimplifiedRounds
			}
			return opts.config().Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&opts.rounds, "rounds", engine.StandardRounds, "Compression rounds (simplified mode only, 1-32)")
	pf.BoolVar(&opts.simplified, "simplified", false, "Use the simplified constant table and --rounds")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newHashCmd(opts),
		newTraceCmd(opts),
		newCompareCmd(opts),
		newChartCmd(opts),
		newBenchCmd(),
		newPlayCmd(opts),
		newVerifyCmd(opts),
		newReplCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
