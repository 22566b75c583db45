// =======================
// engine/types.go
// =======================

package engine

import (
	"errors"
	"fmt"

	"shaviz/v2/ops"
)

const (
	StandardRounds = 64
	BlockSize      = 64 // bytes per compression block
	WordCount      = 16 // schedule words read straight from a block
	RegisterCount  = 8
	StateBits      = RegisterCount * ops.WordBits
)

// Rounds reserved for steps outside the compression loop.
const (
	RoundMessageInput = -2
	RoundSetup        = -1
)

var (
	ErrInvalidRoundCount = errors.New("invalid round count")
	ErrNoResult          = errors.New("trace has no result step")
)

// Config selects the round count and constant table of an Engine.
// Standard parameters always run 64 rounds; RoundCount is ignored then.
type Config struct {
	RoundCount            int  `json:"round_count"`
	UseStandardParameters bool `json:"use_standard_parameters"`
}

func DefaultConfig() Config {
	return Config{RoundCount: StandardRounds, UseStandardParameters: true}
}

// Rounds is the number of compression rounds this config runs.
func (c Config) Rounds() int {
	if c.UseStandardParameters {
		return StandardRounds
	}
	return c.RoundCount
}

// Constants returns a copy of the round constant table the config selects.
func (c Config) Constants() []uint32 {
	table := simpleK[:]
	if c.UseStandardParameters {
		table = standardK[:]
	}
	out := make([]uint32, len(table))
	copy(out, table)
	return out
}

func (c Config) Validate() error {
	limit := len(simpleK)
	if c.UseStandardParameters {
		limit = len(standardK)
	}
	if n := c.Rounds(); n <= 0 || n > limit {
		return fmt.Errorf("%w: %d (supported: 1..%d)", ErrInvalidRoundCount, n, limit)
	}
	return nil
}

// Operation identifies the sub-computation a Step represents.
type Operation string

const (
	OpMessageInput    Operation = "message_input"
	OpPrepareSchedule Operation = "prepare_schedule"
	OpInit            Operation = "init"
	OpCapSigma1       Operation = "capsigma1"
	OpChoose          Operation = "ch"
	OpTemp1           Operation = "temp1"
	OpCapSigma0       Operation = "capsigma0"
	OpMajority        Operation = "maj"
	OpTemp2           Operation = "temp2"
	OpRotate          Operation = "rotate"
	OpFinalize        Operation = "finalize"
	OpResult          Operation = "result"
)

// RoundOperations lists the seven steps of every compression round in order.
var RoundOperations = []Operation{
	OpCapSigma1, OpChoose, OpTemp1, OpCapSigma0, OpMajority, OpTemp2, OpRotate,
}

// State holds the working registers a..h.
type State struct {
	A uint32 `json:"a"`
	B uint32 `json:"b"`
	C uint32 `json:"c"`
	D uint32 `json:"d"`
	E uint32 `json:"e"`
	F uint32 `json:"f"`
	G uint32 `json:"g"`
	H uint32 `json:"h"`
}

// RegisterNames matches the order of State.Words.
var RegisterNames = [RegisterCount]string{"a", "b", "c", "d", "e", "f", "g", "h"}

func (s State) Words() [RegisterCount]uint32 {
	return [RegisterCount]uint32{s.A, s.B, s.C, s.D, s.E, s.F, s.G, s.H}
}

func StateFromWords(w [RegisterCount]uint32) State {
	return State{A: w[0], B: w[1], C: w[2], D: w[3], E: w[4], F: w[5], G: w[6], H: w[7]}
}

// ValueKind tells renderers how to print a Value.
type ValueKind int

const (
	KindWord  ValueKind = iota // 32-bit word, shown in hex
	KindCount                  // plain decimal quantity
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindCount:
		return "count"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ValueKind) UnmarshalText(b []byte) error {
	for _, c := range []ValueKind{KindWord, KindCount, KindText} {
		if string(b) == c.String() {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown value kind %q", b)
}

// Value is one named intermediate quantity captured by a Step.
type Value struct {
	Label  string    `json:"label"`
	Kind   ValueKind `json:"kind"`
	Number uint64    `json:"number,omitempty"`
	Text   string    `json:"text,omitempty"`
}

func Word(label string, v uint32) Value { return Value{Label: label, Kind: KindWord, Number: uint64(v)} }
func Count(label string, n uint64) Value { return Value{Label: label, Kind: KindCount, Number: n} }
func Text(label, s string) Value        { return Value{Label: label, Kind: KindText, Text: s} }

func (v Value) String() string {
	switch v.Kind {
	case KindWord:
		return FormatHex(uint32(v.Number))
	case KindCount:
		return fmt.Sprintf("%d", v.Number)
	default:
		return v.Text
	}
}

// Values keeps labels in the order the step produced them.
type Values []Value

func (vs Values) Get(label string) (Value, bool) {
	for _, v := range vs {
		if v.Label == label {
			return v, true
		}
	}
	return Value{}, false
}

// Step is one immutable trace record.
//
// Block is the 0-based block index, or -1 for the message input and result
// steps. ChangedBits holds register-major bit positions (register*32 + bit)
// that differ between StateBefore and StateAfter.
type Step struct {
	Round       int        `json:"round"`
	Block       int        `json:"block"`
	Operation   Operation  `json:"operation"`
	StateBefore State      `json:"state_before"`
	StateAfter  State      `json:"state_after"`
	Gates       []ops.Gate `json:"gates"`
	Description string     `json:"description"`
	CodeLine    int        `json:"code_line"`
	Values      Values     `json:"values"`
	ChangedBits []int      `json:"changed_bits"`
}

// InRound reports whether the step belongs to the compression loop.
func (s Step) InRound() bool { return s.Round >= 0 }
