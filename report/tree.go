// Package report renders traces for terminals, files and comparisons.
package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xlab/treeprint"

	"shaviz/v2/engine"
	"shaviz/v2/ops"
)

// TreeOptions limits how much of a trace Tree prints.
type TreeOptions struct {
	MaxRounds  int  // rounds shown per block, 0 for all
	WithValues bool // print each step's named values
	WithGates  bool
}

// Tree prints the trace grouped by block and round.
func Tree(title string, steps []engine.Step, opt TreeOptions) string {
	root := treeprint.NewWithRoot(title)

	var (
		block     treeprint.Tree
		round     treeprint.Tree
		lastBlock = -2
		lastRound = -3
		hidden    int
	)
	for _, s := range steps {
		parent := root
		if s.Block >= 0 {
			if s.Block != lastBlock {
				block = root.AddBranch(fmt.Sprintf("block %d", s.Block))
				lastBlock, lastRound = s.Block, -3
			}
			parent = block
		}
		if s.InRound() {
			if opt.MaxRounds > 0 && s.Round >= opt.MaxRounds {
				if s.Operation == engine.OpRotate {
					hidden++
				}
				continue
			}
			if s.Round != lastRound {
				round = block.AddBranch(fmt.Sprintf("round %d", s.Round))
				lastRound = s.Round
			}
			parent = round
		} else if hidden > 0 && s.Operation == engine.OpFinalize {
			block.AddNode(fmt.Sprintf("… %d more rounds", hidden))
			hidden = 0
		}

		node := parent.AddBranch(fmt.Sprintf("[%s] %s", s.Operation, s.Description))
		if opt.WithValues {
			width := labelWidth(s.Values)
			for _, v := range s.Values {
				node.AddNode(fmt.Sprintf("%s = %s", runewidth.FillRight(v.Label, width), v))
			}
		}
		if opt.WithGates {
			for _, g := range s.Gates {
				node.AddNode(FormatGate(g))
			}
		}
	}
	return root.String()
}

func labelWidth(vs engine.Values) int {
	w := 0
	for _, v := range vs {
		w = max(w, runewidth.StringWidth(v.Label))
	}
	return w
}

// FormatGate renders a gate as "ROTR6(0x…) -> 0x…".
func FormatGate(g ops.Gate) string {
	in := make([]string, len(g.Inputs))
	for i, v := range g.Inputs {
		in[i] = engine.FormatHex(v)
	}
	name := string(g.Type)
	if g.Type == ops.GateROTR || g.Type == ops.GateSHR {
		name = fmt.Sprintf("%s%d", name, g.Amount)
	}
	return fmt.Sprintf("%s(%s) -> %s", name, strings.Join(in, ", "), engine.FormatHex(g.Output))
}
