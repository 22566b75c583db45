// =======================
// engine/engine.go
// =======================

// Package engine runs SHA-256 while recording every micro-step of the
// compression function as an ordered list of Step records.
package engine

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"shaviz/v2/ops"
)

// Engine hashes messages under a fixed Config. It keeps no state between
// calls; every Hash builds its own trace.
type Engine struct {
	cfg       Config
	rounds    int
	constants []uint32
	logger    *slog.Logger
}

// Option customises an Engine built by NewEngine.
type Option func(*Engine)

// WithLogger sets the logger for per-hash debug records; nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine validates cfg and returns an Engine ready to hash.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	e := &Engine{
		cfg:       cfg,
		rounds:    cfg.Rounds(),
		constants: cfg.Constants(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// recorder accumulates the steps of a single Hash call.
type recorder struct {
	steps []Step
}

func (r *recorder) add(s Step) {
	if s.Gates == nil {
		s.Gates = []ops.Gate{}
	}
	s.ChangedBits = ChangedBits(s.StateBefore, s.StateAfter)
	r.steps = append(r.steps, s)
}

// Hash computes SHA-256 of message (UTF-8) and returns the full trace. The
// last step carries the digest under the "Digest" label.
func (e *Engine) Hash(message string) ([]Step, error) {
	if e == nil || e.rounds == 0 {
		return nil, fmt.Errorf("engine not initialised: %w", ErrInvalidRoundCount)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	msg := []byte(message)
	blocks := Blocks(Pad(msg))
	rec := &recorder{steps: make([]Step, 0, 2+len(blocks)*(3+e.rounds*len(RoundOperations)))}

	rec.add(Step{
		Round:       RoundMessageInput,
		Block:       -1,
		Operation:   OpMessageInput,
		Description: "Step 0: message input",
		CodeLine:    LineMessageInput,
		Values: Values{
			Text("Message", message),
			Count("Characters", uint64(utf8.RuneCountInString(message))),
			Count("Bytes", uint64(len(msg))),
			Count("Bit length", uint64(len(msg))*8),
			Text("Format", "UTF-8"),
		},
	})

	h := initialHash
	for idx, block := range blocks {
		h = e.compress(rec, idx, block, h)
	}

	digest := HexDigest(h)
	final := StateFromWords(h)
	values := Values{Text("Digest", digest)}
	for j, w := range h {
		values = append(values, Word(fmt.Sprintf("H[%d]", j), w))
	}
	rec.add(Step{
		Round:       RoundSetup,
		Block:       -1,
		Operation:   OpResult,
		StateBefore: final,
		StateAfter:  final,
		Description: "Step 5: SHA-256 result",
		CodeLine:    LineResult,
		Values:      values,
	})

	e.logger.Debug("sha256 trace built",
		"bytes", len(msg),
		"blocks", len(blocks),
		"rounds", e.rounds,
		"steps", len(rec.steps),
		"digest", digest)
	return rec.steps, nil
}

// compress runs the prepare, initialise, round and finalise phases for one
// block and returns the updated hash words.
func (e *Engine) compress(rec *recorder, idx int, block []byte, h [RegisterCount]uint32) [RegisterCount]uint32 {
	w := Schedule(block, e.rounds)
	last := len(w) - 1
	rec.add(Step{
		Round:       RoundSetup,
		Block:       idx,
		Operation:   OpPrepareSchedule,
		Description: fmt.Sprintf("Step 1: prepare message schedule W[0..%d]", last),
		CodeLine:    LinePrepareSchedule,
		Values: Values{
			Count("Block", uint64(idx)),
			Word("W[0]", w[0]),
			Word("W[1]", w[1]),
			Word("W[2]", w[2]),
			Word(fmt.Sprintf("W[%d]", last-2), w[last-2]),
			Word(fmt.Sprintf("W[%d]", last-1), w[last-1]),
			Word(fmt.Sprintf("W[%d]", last), w[last]),
			Count("Total words", uint64(len(w))),
		},
	})

	st := StateFromWords(h)
	initial := Values{}
	for j, v := range h {
		initial = append(initial, Word(RegisterNames[j], v))
	}
	rec.add(Step{
		Round:       RoundSetup,
		Block:       idx,
		Operation:   OpInit,
		StateAfter:  st,
		Description: "Step 2: initialise working variables a..h",
		CodeLine:    LineInitialize,
		Values:      initial,
	})

	for i := 0; i < e.rounds; i++ {
		st = e.round(rec, idx, i, st, w[i])
	}

	old := h
	regs := st.Words()
	for j := range h {
		h[j] = ops.AddMod32(h[j], regs[j])
	}
	rec.add(Step{
		Round:       RoundSetup,
		Block:       idx,
		Operation:   OpFinalize,
		StateBefore: StateFromWords(old),
		StateAfter:  StateFromWords(h),
		Description: "Step 4: add compressed block to the hash",
		CodeLine:    LineAddToHash,
		Values: Values{
			Word("H[0] old", old[0]),
			Word("H[0] new", h[0]),
			Word("H[1] old", old[1]),
			Word("H[1] new", h[1]),
			Text("Sum", "H[2..7] += c, d, e, f, g, h"),
		},
	})
	return h
}

// round records the seven sub-steps of round i and returns the new state.
func (e *Engine) round(rec *recorder, block, i int, s State, wi uint32) State {
	step := func(op Operation, line int, desc string, gates []ops.Gate, values ...Value) {
		rec.add(Step{
			Round:       i,
			Block:       block,
			Operation:   op,
			StateBefore: s,
			StateAfter:  s,
			Gates:       gates,
			Description: fmt.Sprintf("Round %d: %s", i, desc),
			CodeLine:    line,
			Values:      values,
		})
	}

	s1, g := ops.TraceBigSigma1(s.E)
	step(OpCapSigma1, LineRoundSigma1, "compute Σ1(e)", g,
		Word("e", s.E), Word("Σ1(e)", s1))

	ch, g := ops.TraceChoose(s.E, s.F, s.G)
	step(OpChoose, LineRoundChoose, "compute Ch(e,f,g)", g,
		Word("e", s.E), Word("f", s.F), Word("g", s.G), Word("Ch(e,f,g)", ch))

	k := e.constants[i]
	temp1 := ops.AddMod32(s.H, s1, ch, k, wi)
	step(OpTemp1, LineRoundTemp1, "compute temp1", nil,
		Word("h", s.H), Word("Σ1(e)", s1), Word("Ch(e,f,g)", ch),
		Word("K[i]", k), Word("W[i]", wi), Word("temp1", temp1))

	s0, g := ops.TraceBigSigma0(s.A)
	step(OpCapSigma0, LineRoundSigma0, "compute Σ0(a)", g,
		Word("a", s.A), Word("Σ0(a)", s0))

	maj, g := ops.TraceMajority(s.A, s.B, s.C)
	step(OpMajority, LineRoundMajority, "compute Maj(a,b,c)", g,
		Word("a", s.A), Word("b", s.B), Word("c", s.C), Word("Maj(a,b,c)", maj))

	temp2 := ops.AddMod32(s0, maj)
	step(OpTemp2, LineRoundTemp2, "compute temp2", nil,
		Word("Σ0(a)", s0), Word("Maj(a,b,c)", maj), Word("temp2", temp2))

	next := rotateRegisters(s, temp1, temp2)
	rec.add(Step{
		Round:       i,
		Block:       block,
		Operation:   OpRotate,
		StateBefore: s,
		StateAfter:  next,
		Description: fmt.Sprintf("Round %d: update state", i),
		CodeLine:    LineRoundRotate,
		Values: Values{
			Word("temp1", temp1),
			Word("temp2", temp2),
			Word("new a", next.A),
			Word("new e", next.E),
		},
	})
	return next
}

// rotateRegisters derives all eight registers from the same snapshot s.
func rotateRegisters(s State, temp1, temp2 uint32) State {
	return State{
		A: ops.AddMod32(temp1, temp2),
		B: s.A,
		C: s.B,
		D: s.C,
		E: ops.AddMod32(s.D, temp1),
		F: s.E,
		G: s.F,
		H: s.G,
	}
}
