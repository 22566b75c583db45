package engine

import (
	"errors"
	"fmt"
	"strings"
)

var pseudocodeLines = []string{
	"ALGORITHM: SHA-256 compression function",
	"═══════════════════════════════════════════",
	"",
	"CONSTANTS:",
	"  K[0..63] ← 64 constants (cube roots of the first primes)",
	"  H[0..7]  ← 8 initial values (square roots of the first primes)",
	"",
	"FUNCTION compress(block, previous_hash):",
	"  │",
	"  ├─ STEP 1: prepare the message schedule",
	"  │    ├─ W[0..15] ← split the block into 16 big-endian words",
	"  │    └─ EXPAND: derive W[16..63] with σ0 and σ1",
	"  │         FOR i FROM 16 TO 63:",
	"  │           W[i] ← σ1(W[i-2]) + W[i-7] + σ0(W[i-15]) + W[i-16]",
	"  │",
	"  ├─ STEP 2: initialise the working variables",
	"  │    a, b, c, d, e, f, g, h ← previous_hash",
	"  │",
	"  ├─ STEP 3: main loop (64 rounds)",
	"  │    FOR i FROM 0 TO 63:",
	"  │      │",
	"  │      ├─ right half (e, f, g):",
	"  │      │    S1 ← Σ1(e)                    [rotate + XOR]",
	"  │      │    Ch ← Ch(e, f, g)              [choose]",
	"  │      │    temp1 ← h + S1 + Ch + K[i] + W[i]",
	"  │      │",
	"  │      ├─ left half (a, b, c):",
	"  │      │    S0 ← Σ0(a)                    [rotate + XOR]",
	"  │      │    Maj ← Maj(a, b, c)            [majority]",
	"  │      │    temp2 ← S0 + Maj",
	"  │      │",
	"  │      └─ register rotation (all at once):",
	"  │",
	"  │           [a, b, c, d, e, f, g, h] ← [temp1+temp2, a, b, c, d+temp1, e, f, g]",
	"  │",
	"  │           every register moves in the same instant",
	"  │    END FOR",
	"  │",
	"  └─ STEP 4: add to the hash",
	"       H[0..7] ← H[0..7] + [a, b, c, d, e, f, g, h]",
	"RETURN hex(H[0]) ‖ hex(H[1]) ‖ … ‖ hex(H[7])",
	"",
	"═══════════════════════════════════════════",
	"Helpers:",
	"• Σ0(x), Σ1(x) : rotations + XOR (upper case)",
	"• σ0(x), σ1(x) : rotations, shift + XOR (lower case)",
	"• Ch(x,y,z)    : if x then y else z, bit by bit",
	"• Maj(x,y,z)   : majority of three bits",
}

// Pseudocode is the listing that Step.CodeLine points into (1-based).
var Pseudocode = strings.Join(pseudocodeLines, "\n")

// Pseudocode line numbers, 1-based.
const (
	LineMessageInput    = 1
	LinePrepareSchedule = 10
	LineInitialize      = 16
	LineMainLoop        = 19
	LineRoundSigma1     = 23
	LineRoundChoose     = 24
	LineRoundTemp1      = 25
	LineRoundSigma0     = 28
	LineRoundMajority   = 29
	LineRoundTemp2      = 30
	LineRoundRotate     = 34
	LineAddToHash       = 40
	LineResult          = 41
)

// PseudocodeLineCount is the number of lines in Pseudocode.
func PseudocodeLineCount() int { return len(pseudocodeLines) }

// PseudocodeLine returns line n (1-based), or "" when out of range.
func PseudocodeLine(n int) string {
	if n < 1 || n > len(pseudocodeLines) {
		return ""
	}
	return pseudocodeLines[n-1]
}

// ValidateLineMapping checks that the line constants are in range, unique,
// and ordered the way the algorithm runs.
func ValidateLineMapping() error {
	ordered := []struct {
		name string
		line int
	}{
		{"message input", LineMessageInput},
		{"prepare schedule", LinePrepareSchedule},
		{"initialize", LineInitialize},
		{"main loop", LineMainLoop},
		{"Σ1", LineRoundSigma1},
		{"Ch", LineRoundChoose},
		{"temp1", LineRoundTemp1},
		{"Σ0", LineRoundSigma0},
		{"Maj", LineRoundMajority},
		{"temp2", LineRoundTemp2},
		{"rotation", LineRoundRotate},
		{"add to hash", LineAddToHash},
		{"result", LineResult},
	}

	var errs []error
	seen := make(map[int]string, len(ordered))
	for i, m := range ordered {
		if m.line < 1 || m.line > len(pseudocodeLines) {
			errs = append(errs, fmt.Errorf("%s: line %d outside listing", m.name, m.line))
		}
		if prev, dup := seen[m.line]; dup {
			errs = append(errs, fmt.Errorf("%s: line %d already used by %s", m.name, m.line, prev))
		}
		seen[m.line] = m.name
		if i > 0 && m.line <= ordered[i-1].line {
			errs = append(errs, fmt.Errorf("%s: line %d not after %s", m.name, m.line, ordered[i-1].name))
		}
	}
	return errors.Join(errs...)
}
