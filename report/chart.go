package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"shaviz/v2/engine"
)

// NamedTrace labels a trace for charting.
type NamedTrace struct {
	Name  string
	Steps []engine.Step
}

// RoundChange is the bit delta of one register rotation.
type RoundChange struct {
	Block, Round int
	ChangedBits  int
	// Distance counts bits that differ from the same point of a reference
	// trace; filled by DivergencePerRound only.
	Distance int
}

// ChangedBitsPerRound collects the rotate steps of a trace in order.
func ChangedBitsPerRound(steps []engine.Step) []RoundChange {
	var out []RoundChange
	for _, s := range steps {
		if s.Operation == engine.OpRotate {
			out = append(out, RoundChange{Block: s.Block, Round: s.Round, ChangedBits: len(s.ChangedBits)})
		}
	}
	return out
}

// DivergencePerRound compares the working state of two traces after every
// round. Both traces must come from the same configuration and block count.
func DivergencePerRound(a, b []engine.Step) ([]RoundChange, error) {
	ra, rb := rotations(a), rotations(b)
	if len(ra) != len(rb) {
		return nil, fmt.Errorf("traces have %d and %d rounds", len(ra), len(rb))
	}
	out := make([]RoundChange, len(ra))
	for i := range ra {
		out[i] = RoundChange{
			Block:       ra[i].Block,
			Round:       ra[i].Round,
			ChangedBits: len(ra[i].ChangedBits),
			Distance:    len(engine.ChangedBits(ra[i].StateAfter, rb[i].StateAfter)),
		}
	}
	return out, nil
}

func rotations(steps []engine.Step) []engine.Step {
	var out []engine.Step
	for _, s := range steps {
		if s.Operation == engine.OpRotate {
			out = append(out, s)
		}
	}
	return out
}

func roundLabels(changes []RoundChange) []string {
	labels := make([]string, len(changes))
	for i, c := range changes {
		labels[i] = fmt.Sprintf("b%d r%d", c.Block, c.Round)
	}
	return labels
}

func lineData(values []int) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// RenderChart writes an HTML page with the changed-bit count per round for
// each trace and, for two traces, their state distance per round.
func RenderChart(w io.Writer, title string, traces ...NamedTrace) error {
	if len(traces) == 0 {
		return fmt.Errorf("no traces to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("changed bits per round (of %d)", engine.StateBits),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	first := ChangedBitsPerRound(traces[0].Steps)
	line.SetXAxis(roundLabels(first))
	for _, tr := range traces {
		changes := ChangedBitsPerRound(tr.Steps)
		counts := make([]int, len(changes))
		for i, c := range changes {
			counts[i] = c.ChangedBits
		}
		line.AddSeries(tr.Name, lineData(counts))
	}

	page := components.NewPage()
	page.AddCharts(line)

	if len(traces) == 2 {
		div, err := DivergencePerRound(traces[0].Steps, traces[1].Steps)
		if err != nil {
			return fmt.Errorf("divergence: %w", err)
		}
		dist := make([]int, len(div))
		for i, d := range div {
			dist[i] = d.Distance
		}
		spread := charts.NewLine()
		spread.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title:    "Avalanche",
				Subtitle: fmt.Sprintf("state bits differing between %q and %q", traces[0].Name, traces[1].Name),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		spread.SetXAxis(roundLabels(div)).AddSeries("distance", lineData(dist))
		page.AddCharts(spread)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
