package nrng

import (
	"math/big"
)

// Bit buffers are little-endian: buf[0] carries the lowest-order bits of the
// value, and the unused high bits of the final byte are zero.

// maskTail zeroes the bits of the final byte beyond the requested bit count.
func maskTail(buf []byte, bits int) {
	if r := bits % 8; r != 0 {
		buf[len(buf)-1] &= byte(1<<r) - 1
	}
}

// bufferInt interprets a little-endian bit buffer as an unsigned integer.
func bufferInt(buf []byte) *big.Int {
	be := make([]byte, len(buf))

	for i, b := range buf {
		be[len(buf)-1-i] = b
	}

	return new(big.Int).SetBytes(be)
}

// bufferFloat interprets a bit buffer of the given precision as the binary
// fraction of a value in [0, 1). Truncation only: the value v < 2^precision
// fits the mantissa exactly, so no rounding can bias any bit.
func bufferFloat(buf []byte, precision int) *big.Float {
	v := new(big.Float).SetPrec(uint(precision) + 1).SetInt(bufferInt(buf))

	return v.SetMantExp(v, -precision)
}

// packBits packs raw symbols of the given width into a little-endian bit
// buffer, dropping the unused high bits of each symbol byte.
func packBits(symbols []byte, width int) []byte {
	out := make([]byte, (len(symbols)*width+7)/8)
	mask := byte(1<<width) - 1

	pos := 0

	for _, s := range symbols {
		s &= mask

		out[pos/8] |= s << (pos % 8)

		if spill := pos%8 + width; spill > 8 {
			out[pos/8+1] = s >> (8 - pos%8)
		}

		pos += width
	}

	return out
}
