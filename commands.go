package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shaviz/v2/engine"
	"shaviz/v2/report"
)

// readMessage takes the message from --file when set, else from the first
// argument. No argument means the empty message.
func readMessage(file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", file, err)
		}
		slog.Debug("loaded message file", "path", file, "bytes", len(data))
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	return "", nil
}

// createOutput opens path for writing, or returns stdout for "" and "-".
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// closeOutput closes out and keeps the first error, so a failed flush of an
// output file fails the command.
func closeOutput(out io.Closer, err *error) {
	if cerr := out.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close output: %w", cerr)
	}
}

var errMismatch = errors.New("verification failed")

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newHashCmd(opts *globalOptions) *cobra.Command {
	var (
		file    string
		asJSON  bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "hash [message]",
		Short: "Print the SHA-256 digest, or the whole trace as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			msg, err := readMessage(file, args)
			if err != nil {
				return err
			}
			e, err := opts.newEngine()
			if err != nil {
				return err
			}
			steps, err := e.Hash(msg)
			if err != nil {
				return fmt.Errorf("hashing failed: %w", err)
			}

			if !asJSON {
				digest, err := engine.Digest(steps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "SHA-256 (%d rounds, %s)\nHEX: %s\nSTEPS: %d\n",
					e.Config().Rounds(), paramsName(e.Config()), digest, len(steps))
				return nil
			}

			out, err := createOutput(outPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOutput(out, &err)
			return engine.WriteJSON(out, msg, e.Config(), steps)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File whose contents are hashed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the full step trace as JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file for --json (default stdout)")
	return cmd
}

func paramsName(cfg engine.Config) string {
	if cfg.UseStandardParameters {
		return "standard constants"
	}
	return "simplified constants"
}

func newTraceCmd(opts *globalOptions) *cobra.Command {
	var (
		file string
		tree report.TreeOptions
	)
	cmd := &cobra.Command{
		Use:   "trace [message]",
		Short: "Print the trace as a tree grouped by block and round",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readMessage(file, args)
			if err != nil {
				return err
			}
			e, err := opts.newEngine()
			if err != nil {
				return err
			}
			steps, err := e.Hash(msg)
			if err != nil {
				return fmt.Errorf("hashing failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Tree(fmt.Sprintf("sha256(%q)", msg), steps, tree))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File whose contents are hashed")
	cmd.Flags().IntVar(&tree.MaxRounds, "max-rounds", 4, "Rounds shown per block (0 = all)")
	cmd.Flags().BoolVar(&tree.WithValues, "values", true, "Show named intermediate values")
	cmd.Flags().BoolVar(&tree.WithGates, "gates", false, "Show logic gates of traced functions")
	return cmd
}

func newCompareCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compare <message-a> <message-b>",
		Short: "Measure the avalanche effect between two messages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.newEngine()
			if err != nil {
				return err
			}
			a, err := e.Hash(args[0])
			if err != nil {
				return fmt.Errorf("hashing %q failed: %w", args[0], err)
			}
			b, err := e.Hash(args[1])
			if err != nil {
				return fmt.Errorf("hashing %q failed: %w", args[1], err)
			}
			da, err := engine.Digest(a)
			if err != nil {
				return err
			}
			db, err := engine.Digest(b)
			if err != nil {
				return err
			}
			av, err := report.CompareDigests(da, db)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				j, err := json.MarshalIndent(av, "", "  ")
				if err != nil {
					return fmt.Errorf("JSON encoding failed: %w", err)
				}
				fmt.Fprintf(w, "%s\n", j)
				return nil
			}

			match, diff, err := report.DiffResults(a, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "A: %s\nB: %s\n", da, db)
			fmt.Fprintf(w, "hex chars changed: %d/%d\nbits changed: %d/%d (%.1f%%)\nresult: %s\n\n%s\n",
				av.HexDiff, av.HexTotal, av.BitDiff, av.BitTotal, av.BitsRatio*100, match, diff)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the avalanche numbers as JSON")
	return cmd
}

func newChartCmd(opts *globalOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "chart <message> [message-b]",
		Short: "Write an HTML chart of changed bits per round",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := opts.newEngine()
			if err != nil {
				return err
			}
			traces := make([]report.NamedTrace, 0, len(args))
			for _, msg := range args {
				steps, err := e.Hash(msg)
				if err != nil {
					return fmt.Errorf("hashing %q failed: %w", msg, err)
				}
				traces = append(traces, report.NamedTrace{Name: msg, Steps: steps})
			}

			out, err := createOutput(outPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOutput(out, &err)
			if err := report.RenderChart(out, "SHA-256 round activity", traces...); err != nil {
				return err
			}
			slog.Info("chart written", "path", outPath, "traces", len(traces))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "sha256-rounds.html", "Output HTML file (- for stdout)")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		input      string
		iterations int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time trace construction for standard and reduced configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := report.Benchmark(input, iterations, report.DefaultBenchmarkConfigs())
			if err != nil {
				return err
			}
			if asJSON {
				j, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return fmt.Errorf("JSON encoding failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", j)
				return nil
			}
			report.PrintBenchmarkResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "The quick brown fox jumps over the lazy dog", "Message to hash")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "Hashes per configuration")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newPlayCmd(opts *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "play [message]",
		Short: "Animate the trace in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readMessage(file, args)
			if err != nil {
				return err
			}
			e, err := opts.newEngine()
			if err != nil {
				return err
			}
			steps, err := e.Hash(msg)
			if err != nil {
				return fmt.Errorf("hashing failed: %w", err)
			}
			if err := runPlayer(msg, e.Config(), steps); err != nil {
				return fmt.Errorf("graphics error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File whose contents are hashed")
	return cmd
}

// decodeStoredTrace accepts a trace as base64 or as raw JSON.
func decodeStoredTrace(data []byte) (*engine.TraceDocument, error) {
	raw, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		// Try as raw JSON if base64 decode fails
		raw = data
	}
	return engine.ReadJSON(bytes.NewReader(raw))
}

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	var digest string
	cmd := &cobra.Command{
		Use:   "verify <trace.json | message>",
		Short: "Recompute a stored trace, or check a message against --digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if digest != "" {
				e, err := opts.newEngine()
				if err != nil {
					return err
				}
				ok, err := e.VerifyDigest(args[0], digest)
				if err != nil {
					return fmt.Errorf("verification error: %w", err)
				}
				fmt.Fprintln(w, "Digest OK:", ok)
				if !ok {
					return errMismatch
				}
				return nil
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read trace %s: %w", args[0], err)
			}
			stored, err := decodeStoredTrace(data)
			if err != nil {
				return err
			}
			ok, err := engine.VerifyTrace(stored)
			if err != nil {
				return fmt.Errorf("verification error: %w", err)
			}
			fmt.Fprintln(w, "Trace OK:", ok)
			if !ok {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&digest, "digest", "", "Expected hex digest of the message argument")
	return cmd
}
