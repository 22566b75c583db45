package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStandard(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func slogToBuffer(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func digestOf(t *testing.T, e *Engine, msg string) string {
	t.Helper()
	steps, err := e.Hash(msg)
	require.NoError(t, err)
	d, err := Digest(steps)
	require.NoError(t, err)
	return d
}

func TestKnownVectors(t *testing.T) {
	e := newStandard(t)
	vectors := []struct {
		msg, want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"Hello", "185f8db32271fe25f561a6fc938b2e264306ec304eda518007d1764826381969"},
		{"Hello World", "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
	}
	for _, v := range vectors {
		t.Run(v.msg, func(t *testing.T) {
			got := digestOf(t, e, v.msg)
			assert.Len(t, got, 64)
			assert.Equal(t, v.want, got)
		})
	}
}

func TestMatchesStdlib(t *testing.T) {
	e := newStandard(t)
	r := rand.New(rand.NewSource(42))
	inputs := []string{"héllo ✓", "日本語のテキスト", strings.Repeat("x", 55), strings.Repeat("y", 56),
		strings.Repeat("z", 64), strings.Repeat("long message ", 20)}
	for i := 0; i < 20; i++ {
		b := make([]byte, r.Intn(200))
		for j := range b {
			b[j] = byte('a' + r.Intn(26))
		}
		inputs = append(inputs, string(b))
	}
	for _, in := range inputs {
		sum := sha256.Sum256([]byte(in))
		require.Equal(t, hex.EncodeToString(sum[:]), digestOf(t, e, in), "input %q", in)
	}
}

func TestStepSequenceShape(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("test")
	require.NoError(t, err)

	require.Len(t, steps, ExpectedSteps(1, 64))
	assert.Equal(t, 64*7+5, len(steps))

	first, last := steps[0], steps[len(steps)-1]
	assert.Equal(t, OpMessageInput, first.Operation)
	assert.Equal(t, RoundMessageInput, first.Round)
	assert.Equal(t, OpResult, last.Operation)
	assert.Equal(t, RoundSetup, last.Round)

	assert.Equal(t, OpPrepareSchedule, steps[1].Operation)
	assert.Equal(t, OpInit, steps[2].Operation)
	assert.Equal(t, OpFinalize, steps[len(steps)-2].Operation)

	for round := 0; round < 64; round++ {
		rs := StepsForRound(steps, 0, round)
		require.Len(t, rs, 7)
		for i, s := range rs {
			assert.Equal(t, RoundOperations[i], s.Operation)
		}
	}
}

func TestMultiBlockSequence(t *testing.T) {
	e := newStandard(t)
	msg := strings.Repeat("a", 120) // 120 + 9 bytes needs three blocks
	steps, err := e.Hash(msg)
	require.NoError(t, err)

	assert.Equal(t, 3, BlockCount(steps))
	require.Len(t, steps, ExpectedSteps(3, 64))

	// Each block restarts from the hash left by the previous one.
	var prevFinal State
	for _, s := range steps {
		switch s.Operation {
		case OpInit:
			if s.Block > 0 {
				assert.Equal(t, prevFinal, s.StateAfter)
			} else {
				assert.Equal(t, StateFromWords(InitialHash()), s.StateAfter)
			}
		case OpFinalize:
			prevFinal = s.StateAfter
		}
	}
}

func TestInputStepValues(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("héllo ✓")
	require.NoError(t, err)

	in := steps[0].Values
	msg, ok := in.Get("Message")
	require.True(t, ok)
	assert.Equal(t, "héllo ✓", msg.Text)

	chars, _ := in.Get("Characters")
	bitLen, _ := in.Get("Bit length")
	assert.Equal(t, uint64(7), chars.Number)
	assert.Equal(t, uint64(80), bitLen.Number)
}

func TestRotationIsSimultaneous(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("abc")
	require.NoError(t, err)

	for _, s := range steps {
		if s.Operation != OpRotate {
			continue
		}
		b, a := s.StateBefore, s.StateAfter
		temp1, _ := s.Values.Get("temp1")
		temp2, _ := s.Values.Get("temp2")
		require.Equal(t, b.A, a.B)
		require.Equal(t, b.B, a.C)
		require.Equal(t, b.C, a.D)
		require.Equal(t, b.E, a.F)
		require.Equal(t, b.F, a.G)
		require.Equal(t, b.G, a.H)
		require.Equal(t, uint32(temp1.Number+temp2.Number), a.A)
		require.Equal(t, b.D+uint32(temp1.Number), a.E)
		require.Equal(t, ChangedBits(b, a), s.ChangedBits)
	}
}

func TestFirstRoundOfABC(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("abc")
	require.NoError(t, err)

	rotate := StepsForRound(steps, 0, 0)[6]
	assert.Equal(t, uint32(0x5d6aebcd), rotate.StateAfter.A)
	assert.Equal(t, uint32(0xfa2a4622), rotate.StateAfter.E)

	s1 := StepsForRound(steps, 0, 0)[0]
	v, ok := s1.Values.Get("Σ1(e)")
	require.True(t, ok)
	assert.Equal(t, uint64(0x3587272b), v.Number)
	assert.Len(t, s1.Gates, 5)
}

func TestHelperStepsKeepState(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("state")
	require.NoError(t, err)

	for _, s := range steps {
		if !s.InRound() || s.Operation == OpRotate {
			continue
		}
		assert.Equal(t, s.StateBefore, s.StateAfter)
		assert.Empty(t, s.ChangedBits)
		switch s.Operation {
		case OpTemp1, OpTemp2:
			assert.Empty(t, s.Gates)
		default:
			assert.NotEmpty(t, s.Gates)
		}
	}
}

func TestFinalizeAddsState(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("abc")
	require.NoError(t, err)

	fin := steps[len(steps)-2]
	require.Equal(t, OpFinalize, fin.Operation)
	old, _ := fin.Values.Get("H[0] old")
	assert.Equal(t, uint64(0x6a09e667), old.Number)
	assert.Equal(t, uint32(0xba7816bf), fin.StateAfter.A)

	result := steps[len(steps)-1]
	h7, ok := result.Values.Get("H[7]")
	require.True(t, ok)
	assert.Equal(t, uint64(0xf20015ad), h7.Number)
}

func TestDeterminism(t *testing.T) {
	e := newStandard(t)
	a, err := e.Hash("determinism")
	require.NoError(t, err)
	b, err := e.Hash("determinism")
	require.NoError(t, err)

	assert.Equal(t, len(a), len(b))
	assert.Equal(t, a, b)
}

func TestAvalanche(t *testing.T) {
	e := newStandard(t)
	x, y := digestOf(t, e, "test"), digestOf(t, e, "tess")
	diff := 0
	for i := range x {
		if x[i] != y[i] {
			diff++
		}
	}
	assert.GreaterOrEqual(t, diff, 20)
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"standard ignores round count", Config{RoundCount: -5, UseStandardParameters: true}, true},
		{"simplified single round", Config{RoundCount: 1}, true},
		{"simplified full table", Config{RoundCount: 32}, true},
		{"zero rounds", Config{RoundCount: 0}, false},
		{"negative rounds", Config{RoundCount: -1}, false},
		{"beyond simplified table", Config{RoundCount: 33}, false},
		{"standard count on simplified table", Config{RoundCount: 64}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewEngine(tc.cfg)
			if tc.ok {
				require.NoError(t, err)
				require.NotNil(t, e)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRoundCount)
			assert.Nil(t, e)
		})
	}
}

func TestZeroEngineRejectsHash(t *testing.T) {
	var e Engine
	steps, err := e.Hash("x")
	assert.ErrorIs(t, err, ErrInvalidRoundCount)
	assert.Empty(t, steps)
}

func TestSimplifiedRounds(t *testing.T) {
	for _, rounds := range []int{1, 8, 16, 20, 32} {
		e, err := NewEngine(Config{RoundCount: rounds})
		require.NoError(t, err)
		steps, err := e.Hash("abc")
		require.NoError(t, err)

		require.Len(t, steps, ExpectedSteps(1, rounds))
		prep := steps[1]
		total, _ := prep.Values.Get("Total words")
		assert.Equal(t, uint64(max(16, rounds)), total.Number)

		d, err := Digest(steps)
		require.NoError(t, err)
		assert.Len(t, d, 64)
		assert.NotEqual(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", d)
	}
}

func TestUsesSelectedConstants(t *testing.T) {
	e, err := NewEngine(Config{RoundCount: 4})
	require.NoError(t, err)
	steps, err := e.Hash("")
	require.NoError(t, err)

	for round, want := range []uint64{2, 3, 5, 7} {
		temp1 := StepsForRound(steps, 0, round)[2]
		k, ok := temp1.Values.Get("K[i]")
		require.True(t, ok)
		assert.Equal(t, want, k.Number)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slogToBuffer(&buf)
	e, err := NewEngine(DefaultConfig(), WithLogger(logger))
	require.NoError(t, err)
	_, err = e.Hash("abc")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "sha256 trace built")
	assert.Contains(t, buf.String(), "steps=453")
}

func TestWriteJSON(t *testing.T) {
	e := newStandard(t)
	steps, err := e.Hash("abc")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "abc", e.Config(), steps))

	var doc struct {
		Digest string `json:"digest"`
		Steps  []struct {
			Operation string `json:"operation"`
			Values    []struct {
				Kind string `json:"kind"`
			} `json:"values"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", doc.Digest)
	assert.Equal(t, "message_input", doc.Steps[0].Operation)
	assert.Equal(t, "text", doc.Steps[0].Values[0].Kind)
}

func TestDigestErrors(t *testing.T) {
	_, err := Digest(nil)
	assert.ErrorIs(t, err, ErrNoResult)
	_, err = Digest([]Step{{Operation: OpInit}})
	assert.ErrorIs(t, err, ErrNoResult)
}
