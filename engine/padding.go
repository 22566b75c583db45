package engine

import (
	"encoding/binary"

	"shaviz/v2/ops"
)

// Pad appends the 0x80 marker, zero fill and the 64-bit big-endian bit length
// so the result is a whole number of 64-byte blocks.
func Pad(msg []byte) []byte {
	total := (len(msg) + 1 + 8 + BlockSize - 1) / BlockSize * BlockSize
	buf := make([]byte, total)
	copy(buf, msg)
	buf[len(msg)] = 0x80
	binary.BigEndian.PutUint64(buf[total-8:], uint64(len(msg))*8)
	return buf
}

// Blocks splits a padded buffer into 64-byte blocks. The blocks alias buf.
func Blocks(padded []byte) [][]byte {
	blocks := make([][]byte, 0, len(padded)/BlockSize)
	for off := 0; off+BlockSize <= len(padded); off += BlockSize {
		blocks = append(blocks, padded[off:off+BlockSize])
	}
	return blocks
}

// Schedule builds W for one block: 16 words read big-endian, then expanded up
// to rounds words. It always returns at least 16 words.
func Schedule(block []byte, rounds int) []uint32 {
	n := max(WordCount, rounds)
	w := make([]uint32, n)
	for i := 0; i < WordCount; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := WordCount; i < n; i++ {
		w[i] = ops.AddMod32(w[i-16], ops.SmallSigma0(w[i-15]), w[i-7], ops.SmallSigma1(w[i-2]))
	}
	return w
}
