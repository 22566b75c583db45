// Package ops implements the 32-bit word functions used by SHA-256, each in
// a pure form and a traced form that also returns the gates it is built from.
package ops

import (
	"fmt"
	"math/bits"
)

// WordBits is the width of every operand handled here.
const WordBits = 32

func checkAmount(op string, n uint) {
	if n >= WordBits {
		panic(fmt.Sprintf("ops: %s amount %d out of range [0,31]", op, n))
	}
}

// RotateRight rotates x right by n bits. It panics if n > 31.
func RotateRight(x uint32, n uint) uint32 {
	checkAmount("rotate", n)
	return bits.RotateLeft32(x, -int(n))
}

// ShiftRight is a zero-filling right shift. It panics if n > 31.
func ShiftRight(x uint32, n uint) uint32 {
	checkAmount("shift", n)
	return x >> n
}

// AddMod32 sums values modulo 2^32.
func AddMod32(values ...uint32) uint32 {
	var sum uint32
	for _, v := range values {
		sum += v
	}
	return sum
}

// Gate layouts follow the circuit view: inputs in the first column, then one
// column per XOR stage.

func bigSigma0(c *circuit, x uint32) uint32 {
	r2 := c.rotr(x, 2, 100, 100)
	r13 := c.rotr(x, 13, 100, 200)
	r22 := c.rotr(x, 22, 100, 300)
	return c.xor(c.xor(r2, r13, 300, 150), r22, 500, 200)
}

func bigSigma1(c *circuit, x uint32) uint32 {
	r6 := c.rotr(x, 6, 100, 100)
	r11 := c.rotr(x, 11, 100, 200)
	r25 := c.rotr(x, 25, 100, 300)
	return c.xor(c.xor(r6, r11, 300, 150), r25, 500, 200)
}

func smallSigma0(c *circuit, x uint32) uint32 {
	r7 := c.rotr(x, 7, 100, 100)
	r18 := c.rotr(x, 18, 100, 200)
	s3 := c.shr(x, 3, 100, 300)
	return c.xor(c.xor(r7, r18, 300, 150), s3, 500, 200)
}

func smallSigma1(c *circuit, x uint32) uint32 {
	r17 := c.rotr(x, 17, 100, 100)
	r19 := c.rotr(x, 19, 100, 200)
	s10 := c.shr(x, 10, 100, 300)
	return c.xor(c.xor(r17, r19, 300, 150), s10, 500, 200)
}

func choose(c *circuit, x, y, z uint32) uint32 {
	xy := c.and(x, y, 200, 100)
	nx := c.not(x, 100, 200)
	nxz := c.and(nx, z, 200, 250)
	return c.xor(xy, nxz, 400, 175)
}

func majority(c *circuit, x, y, z uint32) uint32 {
	xy := c.and(x, y, 200, 100)
	xz := c.and(x, z, 200, 200)
	yz := c.and(y, z, 200, 300)
	return c.xor(c.xor(xy, xz, 400, 150), yz, 600, 200)
}

// BigSigma0 is Σ0(x) = ROTR2(x) ^ ROTR13(x) ^ ROTR22(x).
func BigSigma0(x uint32) uint32 { return bigSigma0(nil, x) }

// BigSigma1 is Σ1(x) = ROTR6(x) ^ ROTR11(x) ^ ROTR25(x).
func BigSigma1(x uint32) uint32 { return bigSigma1(nil, x) }

// SmallSigma0 is σ0(x) = ROTR7(x) ^ ROTR18(x) ^ SHR3(x).
func SmallSigma0(x uint32) uint32 { return smallSigma0(nil, x) }

// SmallSigma1 is σ1(x) = ROTR17(x) ^ ROTR19(x) ^ SHR10(x).
func SmallSigma1(x uint32) uint32 { return smallSigma1(nil, x) }

// Choose picks bits of y where x is set and bits of z elsewhere.
func Choose(x, y, z uint32) uint32 { return choose(nil, x, y, z) }

// Majority sets each bit to the value held by at least two of x, y, z.
func Majority(x, y, z uint32) uint32 { return majority(nil, x, y, z) }

// TraceBigSigma0 is BigSigma0 plus the gates it evaluated.
func TraceBigSigma0(x uint32) (uint32, []Gate) {
	c := &circuit{}
	return bigSigma0(c, x), c.result()
}

// TraceBigSigma1 is BigSigma1 plus the gates it evaluated.
func TraceBigSigma1(x uint32) (uint32, []Gate) {
	c := &circuit{}
	return bigSigma1(c, x), c.result()
}

// TraceSmallSigma0 is SmallSigma0 plus the gates it evaluated.
func TraceSmallSigma0(x uint32) (uint32, []Gate) {
	c := &circuit{}
	return smallSigma0(c, x), c.result()
}

// TraceSmallSigma1 is SmallSigma1 plus the gates it evaluated.
func TraceSmallSigma1(x uint32) (uint32, []Gate) {
	c := &circuit{}
	return smallSigma1(c, x), c.result()
}

// TraceChoose is Choose plus the gates it evaluated.
func TraceChoose(x, y, z uint32) (uint32, []Gate) {
	c := &circuit{}
	return choose(c, x, y, z), c.result()
}

// TraceMajority is Majority plus the gates it evaluated.
func TraceMajority(x, y, z uint32) (uint32, []Gate) {
	c := &circuit{}
	return majority(c, x, y, z), c.result()
}
