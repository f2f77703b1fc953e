package board

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPextPdepRoundTrip(t *testing.T) {
	masks := []uint64{
		0,
		^uint64(0),
		0x0101010101010101, // a file
		0x00000000000000FF, // a rank
		0x8040201008040201, // a diagonal
		0x0000001818000000,
		uint64(rookMask(D4)),
		uint64(bishopMask(D4)),
	}
	values := []uint64{
		0, ^uint64(0), 0x12345678, 0xDEADBEEFCAFEBABE, 1, 2, 0xFFFF0000FFFF0000,
	}

	for _, m := range masks {
		for _, x := range values {
			got := Pdep(Pext(x, m), m)
			assert.Equalf(t, x&m, got, "pdep(pext(%#x, %#x), %#x)", x, m, m)
		}
	}
}

func TestPextBitCount(t *testing.T) {
	mask := uint64(0b101101)
	x := uint64(0b111111)
	got := Pext(x, mask)
	assert.Equal(t, uint64(0b1111), got)
	assert.Equal(t, bits.OnesCount64(mask), bits.OnesCount64(got))
}
