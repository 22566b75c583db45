package engine

import (
	"fmt"
	"math/bits"
)

// ChangedBits lists every bit that differs between two states, register-major
// (register index*32 + bit, bit 0 least significant). Never nil.
func ChangedBits(before, after State) []int {
	b, a := before.Words(), after.Words()
	changed := make([]int, 0)
	for reg := range b {
		diff := b[reg] ^ a[reg]
		for diff != 0 {
			bit := bits.TrailingZeros32(diff)
			changed = append(changed, reg*32+bit)
			diff &= diff - 1
		}
	}
	return changed
}

// ChangedRegisters returns the indices of registers whose value differs.
func ChangedRegisters(before, after State) []int {
	b, a := before.Words(), after.Words()
	var regs []int
	for i := range b {
		if b[i] != a[i] {
			regs = append(regs, i)
		}
	}
	return regs
}

// IsParallelRotation reports whether a step moved most registers at once,
// which is how the round's final assignment shows up.
func IsParallelRotation(s Step) bool {
	return len(ChangedRegisters(s.StateBefore, s.StateAfter)) >= 6
}

func FormatHex(v uint32) string { return fmt.Sprintf("0x%08X", v) }

func FormatBinary(v uint32) string { return fmt.Sprintf("%032b", v) }

// HexDigest concatenates the words as 8 lowercase hex digits each.
func HexDigest(h [RegisterCount]uint32) string {
	out := make([]byte, 0, RegisterCount*8)
	for _, w := range h {
		out = fmt.Appendf(out, "%08x", w)
	}
	return string(out)
}
