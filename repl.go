// repl.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"shaviz/v2/engine"
	"shaviz/v2/report"
)

const replHelp = `Type a message to hash it. Commands:
  :rounds N     simplified constants with N rounds (1-32)
  :standard     standard 64-round SHA-256
  :trace        tree of the last message
  :compare MSG  avalanche between the last message and MSG
  :quit         leave (also exit, Ctrl-D)`

var errQuit = errors.New("quit")

// replSession holds the engine and last input between lines.
type replSession struct {
	engine *engine.Engine
	last   string
	steps  []engine.Step
}

func newReplSession(cfg engine.Config) (*replSession, error) {
	e, err := engine.NewEngine(cfg, engine.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	return &replSession{engine: e}, nil
}

// eval runs one input line. It returns errQuit when the session should end.
func (r *replSession) eval(line string, w io.Writer) error {
	if line == "exit" {
		return errQuit
	}
	if !strings.HasPrefix(line, ":") {
		return r.hash(line, w)
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "quit", "q":
		return errQuit
	case "help":
		fmt.Fprintln(w, replHelp)
	case "standard":
		return r.reconfigure(engine.DefaultConfig(), w)
	case "rounds":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("rounds: %q is not a number", arg)
		}
		return r.reconfigure(engine.Config{RoundCount: n}, w)
	case "trace":
		if r.steps == nil {
			return fmt.Errorf("nothing hashed yet")
		}
		fmt.Fprint(w, report.Tree(fmt.Sprintf("sha256(%q)", r.last), r.steps, report.TreeOptions{MaxRounds: 2, WithValues: true}))
	case "compare":
		return r.compare(arg, w)
	default:
		return fmt.Errorf("unknown command :%s (try :help)", cmd)
	}
	return nil
}

func (r *replSession) hash(msg string, w io.Writer) error {
	steps, err := r.engine.Hash(msg)
	if err != nil {
		return err
	}
	digest, err := engine.Digest(steps)
	if err != nil {
		return err
	}
	r.last, r.steps = msg, steps
	fmt.Fprintf(w, "%s  (%d steps)\n", digest, len(steps))
	return nil
}

func (r *replSession) reconfigure(cfg engine.Config, w io.Writer) error {
	e, err := engine.NewEngine(cfg, engine.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	r.engine = e
	fmt.Fprintf(w, "%d rounds, %s\n", cfg.Rounds(), paramsName(cfg))
	if r.steps == nil {
		return nil
	}
	return r.hash(r.last, w)
}

func (r *replSession) compare(other string, w io.Writer) error {
	if r.steps == nil {
		return fmt.Errorf("nothing hashed yet")
	}
	steps, err := r.engine.Hash(other)
	if err != nil {
		return err
	}
	a, err := engine.Digest(r.steps)
	if err != nil {
		return err
	}
	b, err := engine.Digest(steps)
	if err != nil {
		return err
	}
	av, err := report.CompareDigests(a, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n%s\n%d/%d hex chars, %d/%d bits (%.1f%%) changed\n",
		a, b, av.HexDiff, av.HexTotal, av.BitDiff, av.BitTotal, av.BitsRatio*100)
	return nil
}

func newReplCmd(opts *globalOptions) *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Hash messages interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newReplSession(opts.config())
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "sha256> ",
				HistoryFile: history,
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()

			out := rl.Stdout()
			fmt.Fprintln(out, replHelp)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				err = session.eval(strings.TrimRight(line, "\r\n"), out)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), "shaviz_history.txt"), "Readline history file")
	return cmd
}
