// Package interleave converts rank-3 pixel arrays between the BSQ, BIL and
// BIP band interleave orders.
//
// Axis conventions:
//
//	BSQ (band, line, sample)
//	BIL (line, band, sample)
//	BIP (line, sample, band)
package interleave

import "fmt"

// Sample is any pixel element type a VICAR image can hold
type Sample interface {
	~uint8 | ~int16 | ~int32 | ~float32 | ~float64 | ~complex64
}

// Array is a dense row-major rank-3 array
type Array[T Sample] struct {
	Shape [3]int
	Data  []T
}

// New allocates a zeroed array of the given shape
func New[T Sample](d0, d1, d2 int) *Array[T] {
	return &Array[T]{
		Shape: [3]int{d0, d1, d2},
		Data:  make([]T, d0*d1*d2),
	}
}

// FromSlice wraps data (not copied) as an array of the given shape
func FromSlice[T Sample](data []T, d0, d1, d2 int) (*Array[T], error) {
	if len(data) != d0*d1*d2 {
		return nil, fmt.Errorf("slice of %d elements cannot have shape (%d,%d,%d)", len(data), d0, d1, d2)
	}
	return &Array[T]{Shape: [3]int{d0, d1, d2}, Data: data}, nil
}

func (a *Array[T]) index(i, j, k int) int {
	return (i*a.Shape[1]+j)*a.Shape[2] + k
}

// At returns the element at (i, j, k)
func (a *Array[T]) At(i, j, k int) T {
	return a.Data[a.index(i, j, k)]
}

// Set stores v at (i, j, k)
func (a *Array[T]) Set(i, j, k int, v T) {
	a.Data[a.index(i, j, k)] = v
}

// Len returns the number of elements
func (a *Array[T]) Len() int { return len(a.Data) }

// Equal reports whether both arrays have the same shape and elements
func (a *Array[T]) Equal(b *Array[T]) bool {
	if a.Shape != b.Shape || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// Permute returns a new array whose axis i is axis perm[i] of a, in the
// manner of a numpy transpose. Element values are never modified.
func Permute[T Sample](a *Array[T], perm [3]int) *Array[T] {
	var seen [3]bool
	for _, p := range perm {
		if p < 0 || p > 2 || seen[p] {
			panic(fmt.Sprintf("interleave: invalid axis permutation %v", perm))
		}
		seen[p] = true
	}
	out := New[T](a.Shape[perm[0]], a.Shape[perm[1]], a.Shape[perm[2]])

	// stride of each output axis within the source array
	srcStride := [3]int{a.Shape[1] * a.Shape[2], a.Shape[2], 1}
	s0, s1, s2 := srcStride[perm[0]], srcStride[perm[1]], srcStride[perm[2]]

	n := 0
	for i := 0; i < out.Shape[0]; i++ {
		for j := 0; j < out.Shape[1]; j++ {
			base := i*s0 + j*s1
			for k := 0; k < out.Shape[2]; k++ {
				out.Data[n] = a.Data[base+k*s2]
				n++
			}
		}
	}
	return out
}

var (
	bsqToBIP = [3]int{1, 2, 0}
	bipToBSQ = [3]int{2, 0, 1}
	bsqToBIL = [3]int{1, 0, 2}
	bilToBSQ = [3]int{1, 0, 2}
	bipToBIL = [3]int{0, 2, 1}
	bilToBIP = [3]int{0, 2, 1}
)

// BSQToBIP reorders (band, line, sample) to (line, sample, band)
func BSQToBIP[T Sample](a *Array[T]) *Array[T] { return Permute(a, bsqToBIP) }

// BIPToBSQ reorders (line, sample, band) to (band, line, sample)
func BIPToBSQ[T Sample](a *Array[T]) *Array[T] { return Permute(a, bipToBSQ) }

// BSQToBIL reorders (band, line, sample) to (line, band, sample)
func BSQToBIL[T Sample](a *Array[T]) *Array[T] { return Permute(a, bsqToBIL) }

// BILToBSQ reorders (line, band, sample) to (band, line, sample)
func BILToBSQ[T Sample](a *Array[T]) *Array[T] { return Permute(a, bilToBSQ) }

// BIPToBIL reorders (line, sample, band) to (line, band, sample)
func BIPToBIL[T Sample](a *Array[T]) *Array[T] { return Permute(a, bipToBIL) }

// BILToBIP reorders (line, band, sample) to (line, sample, band)
func BILToBIP[T Sample](a *Array[T]) *Array[T] { return Permute(a, bilToBIP) }
