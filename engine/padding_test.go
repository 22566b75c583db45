package engine

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	cases := []struct {
		msgLen, paddedLen int
	}{
		{0, 64}, {3, 64}, {55, 64}, {56, 128}, {63, 128}, {64, 128}, {119, 128}, {120, 192},
	}
	for _, tc := range cases {
		msg := []byte(strings.Repeat("m", tc.msgLen))
		p := Pad(msg)
		require.Len(t, p, tc.paddedLen, "message length %d", tc.msgLen)
		assert.Equal(t, msg, p[:tc.msgLen])
		assert.Equal(t, byte(0x80), p[tc.msgLen])
		for _, b := range p[tc.msgLen+1 : len(p)-8] {
			require.Zero(t, b)
		}
		assert.Equal(t, uint64(tc.msgLen)*8, binary.BigEndian.Uint64(p[len(p)-8:]))
	}
}

func TestPadEmptyMessage(t *testing.T) {
	p := Pad(nil)
	want := make([]byte, 64)
	want[0] = 0x80
	assert.Equal(t, want, p)
}

func TestBlocks(t *testing.T) {
	blocks := Blocks(Pad([]byte(strings.Repeat("q", 100))))
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Len(t, b, BlockSize)
	}
}

func TestScheduleABC(t *testing.T) {
	w := Schedule(Pad([]byte("abc")), StandardRounds)
	require.Len(t, w, 64)
	assert.Equal(t, uint32(0x61626380), w[0])
	assert.Equal(t, uint32(0x18), w[15])
	assert.Equal(t, uint32(0x61626380), w[16])
	assert.Equal(t, uint32(0x000f0000), w[17])
	assert.Equal(t, uint32(0x12b1edeb), w[63])
}

func TestScheduleShortRounds(t *testing.T) {
	block := Pad([]byte("abc"))
	assert.Len(t, Schedule(block, 4), 16)
	assert.Equal(t, Schedule(block, 64)[:20], Schedule(block, 20))
}

func TestChangedBits(t *testing.T) {
	before := State{A: 0b1010, H: 1}
	after := State{A: 0b0110, C: 0x80000000, H: 1}
	assert.Equal(t, []int{2, 3, 2*32 + 31}, ChangedBits(before, after))
	assert.Equal(t, []int{0, 2}, ChangedRegisters(before, after))
	assert.NotNil(t, ChangedBits(before, before))
	assert.Empty(t, ChangedBits(before, before))

	all := ChangedBits(State{}, StateFromWords([8]uint32{
		0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF,
	}))
	require.Len(t, all, StateBits)
	assert.Equal(t, StateBits-1, all[len(all)-1])
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0x0000ABCD", FormatHex(0xabcd))
	assert.Equal(t, "00000000000000000000000000000101", FormatBinary(5))
	assert.Equal(t, "0x00000007", Word("k", 7).String())
	assert.Equal(t, "42", Count("n", 42).String())
	assert.Equal(t, "hi", Text("t", "hi").String())
	assert.Equal(t, strings.Repeat("00000001", 8), HexDigest([8]uint32{1, 1, 1, 1, 1, 1, 1, 1}))
}

func TestLineMapping(t *testing.T) {
	require.NoError(t, ValidateLineMapping())
	assert.Equal(t, PseudocodeLineCount(), strings.Count(Pseudocode, "\n")+1)

	markers := map[int]string{
		LineMessageInput:    "ALGORITHM",
		LinePrepareSchedule: "STEP 1",
		LineInitialize:      "STEP 2",
		LineMainLoop:        "STEP 3",
		LineRoundSigma1:     "Σ1(e)",
		LineRoundChoose:     "Ch(e, f, g)",
		LineRoundTemp1:      "temp1 ←",
		LineRoundSigma0:     "Σ0(a)",
		LineRoundMajority:   "Maj(a, b, c)",
		LineRoundTemp2:      "temp2 ←",
		LineRoundRotate:     "temp1+temp2",
		LineAddToHash:       "H[0..7] ←",
		LineResult:          "RETURN",
	}
	for line, marker := range markers {
		assert.Contains(t, PseudocodeLine(line), marker, "line %d", line)
	}
	assert.Empty(t, PseudocodeLine(0))
	assert.Empty(t, PseudocodeLine(PseudocodeLineCount()+1))
}

func TestStepsPointAtPseudocode(t *testing.T) {
	e, err := NewEngine(Config{RoundCount: 2})
	require.NoError(t, err)
	steps, err := e.Hash("lines")
	require.NoError(t, err)
	for _, s := range steps {
		assert.NotEmpty(t, PseudocodeLine(s.CodeLine), "step %s", s.Operation)
	}
}
