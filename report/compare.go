package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/nsf/jsondiff"

	"shaviz/v2/engine"
)

// Avalanche measures how far apart two digests are.
type Avalanche struct {
	HexDiff   int     `json:"hex_chars_changed"`
	HexTotal  int     `json:"hex_chars_total"`
	BitDiff   int     `json:"bits_changed"`
	BitTotal  int     `json:"bits_total"`
	BitsRatio float64 `json:"bits_ratio"`
}

func CompareDigests(a, b string) (Avalanche, error) {
	if len(a) != len(b) {
		return Avalanche{}, fmt.Errorf("digest length mismatch: %d vs %d", len(a), len(b))
	}
	ra, err := hex.DecodeString(a)
	if err != nil {
		return Avalanche{}, fmt.Errorf("first digest: %w", err)
	}
	rb, err := hex.DecodeString(b)
	if err != nil {
		return Avalanche{}, fmt.Errorf("second digest: %w", err)
	}

	out := Avalanche{HexTotal: len(a), BitTotal: len(ra) * 8}
	for i := range a {
		if a[i] != b[i] {
			out.HexDiff++
		}
	}
	for i := range ra {
		out.BitDiff += bits.OnesCount8(ra[i] ^ rb[i])
	}
	if out.BitTotal > 0 {
		out.BitsRatio = float64(out.BitDiff) / float64(out.BitTotal)
	}
	return out, nil
}

// Match mirrors the outcome of a JSON comparison.
type Match int

const (
	FullMatch Match = iota
	SupersetMatch
	NoMatch
	InvalidInput
)

func (m Match) String() string {
	switch m {
	case FullMatch:
		return "identical"
	case SupersetMatch:
		return "superset"
	case NoMatch:
		return "different"
	default:
		return "invalid"
	}
}

// stepView is the comparable part of a step: no gates, registers in hex.
type stepView struct {
	Round     int               `json:"round"`
	Operation engine.Operation  `json:"operation"`
	State     map[string]string `json:"state"`
	Values    map[string]string `json:"values"`
}

func viewOf(s engine.Step) stepView {
	v := stepView{
		Round:     s.Round,
		Operation: s.Operation,
		State:     make(map[string]string, engine.RegisterCount),
		Values:    make(map[string]string, len(s.Values)),
	}
	for i, w := range s.StateAfter.Words() {
		v.State[engine.RegisterNames[i]] = engine.FormatHex(w)
	}
	for _, val := range s.Values {
		v.Values[val.Label] = val.String()
	}
	return v
}

// DiffSteps compares two steps and returns a console-formatted diff.
func DiffSteps(a, b engine.Step) (Match, string, error) {
	ja, err := json.Marshal(viewOf(a))
	if err != nil {
		return InvalidInput, "", fmt.Errorf("marshal first step: %w", err)
	}
	jb, err := json.Marshal(viewOf(b))
	if err != nil {
		return InvalidInput, "", fmt.Errorf("marshal second step: %w", err)
	}

	opts := jsondiff.DefaultConsoleOptions()
	diff, text := jsondiff.Compare(ja, jb, &opts)
	switch diff {
	case jsondiff.FullMatch:
		return FullMatch, text, nil
	case jsondiff.SupersetMatch:
		return SupersetMatch, text, nil
	case jsondiff.NoMatch:
		return NoMatch, text, nil
	default:
		return InvalidInput, text, fmt.Errorf("jsondiff rejected input")
	}
}

// DiffResults compares the result steps of two traces.
func DiffResults(a, b []engine.Step) (Match, string, error) {
	if len(a) == 0 || len(b) == 0 {
		return InvalidInput, "", engine.ErrNoResult
	}
	return DiffSteps(a[len(a)-1], b[len(b)-1])
}
