// Package morton interleaves grid cell coordinates into Z-order codes.
package morton

// MaxBits is the number of code bits that stay exact in a float64 mantissa.
const MaxBits = 53

// BitsFor returns the number of bits needed to address res cells.
func BitsFor(res int) int {
	bits := 0
	for (1 << bits) < res {
		bits++
	}
	return bits
}

// MaxResolution returns the largest per-dimension resolution whose codes fit in
// MaxBits for the given dimension.
func MaxResolution(dims int) int {
	bits := MaxBits / dims
	if bits > 31 {
		bits = 31
	}
	return 1 << bits
}

// Encode interleaves the low bits of cells, dimension 0 in the least
// significant position of every group.
func Encode(cells []uint32, bits int) uint64 {
	var code uint64
	d := len(cells)
	for b := 0; b < bits; b++ {
		for i, c := range cells {
			code |= uint64((c>>b)&1) << (b*d + i)
		}
	}
	return code
}
