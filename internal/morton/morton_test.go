package morton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode2D(t *testing.T) {
	// x=1 (bit 0), y=1 (bit 1).
	assert.Equal(t, uint64(3), Encode([]uint32{1, 1}, 1))
	assert.Equal(t, uint64(2), Encode([]uint32{0, 1}, 1))
	assert.Equal(t, uint64(0b1100), Encode([]uint32{2, 2}, 2))
}

func TestEncode3D(t *testing.T) {
	// 5=00101, 17=10001, 3=00011 interleaved x,y,z from the low bit up.
	assert.Equal(t, uint64(0b010_000_001_100_111), Encode([]uint32{5, 17, 3}, 5))
}

func TestMonotoneInEachCoordinate(t *testing.T) {
	for x := uint32(0); x < 15; x++ {
		for y := uint32(0); y < 16; y++ {
			a := Encode([]uint32{x, y}, 4)
			b := Encode([]uint32{x + 1, y}, 4)
			assert.Less(t, a, b)
		}
	}
}

func TestResolution(t *testing.T) {
	assert.Equal(t, 0, BitsFor(1))
	assert.Equal(t, 4, BitsFor(16))
	assert.Equal(t, 5, BitsFor(17))
	assert.Equal(t, 1<<26, MaxResolution(2))
	assert.Equal(t, 1<<10, MaxResolution(5))
}
