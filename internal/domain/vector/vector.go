// Package vector holds the dense and sparse numeric vectors shared by the
// vectorizer and the similarity engine.
package vector

import (
	"math"
	"sort"
)

// Dot returns the dot product of two dense vectors of equal length.
// Extra trailing entries of the longer vector are ignored.
func Dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	var s float64
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

// Norm returns the Euclidean norm of a dense vector.
func Norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// Sparse is an immutable sparse vector with strictly increasing indices.
type Sparse struct {
	dim     int
	indices []int
	values  []float64
}

// FromCounts builds a Sparse vector of the given dimension from index->value pairs.
// Zero values and out-of-range indices are dropped.
func FromCounts(dim int, counts map[int]float64) Sparse {
	indices := make([]int, 0, len(counts))
	for idx, v := range counts {
		if idx < 0 || idx >= dim || v == 0 {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx]
	}
	return Sparse{dim: dim, indices: indices, values: values}
}

// FromDense builds a Sparse vector from a dense one.
func FromDense(v []float64) Sparse {
	s := Sparse{dim: len(v)}
	for i, x := range v {
		if x != 0 {
			s.indices = append(s.indices, i)
			s.values = append(s.values, x)
		}
	}
	return s
}

// Dim returns the logical dimension.
func (s Sparse) Dim() int { return s.dim }

// NNZ returns the number of stored non-zero entries.
func (s Sparse) NNZ() int { return len(s.indices) }

// At returns the value at dimension i.
func (s Sparse) At(i int) float64 {
	k := sort.SearchInts(s.indices, i)
	if k < len(s.indices) && s.indices[k] == i {
		return s.values[k]
	}
	return 0
}

// Dense materializes the vector as a new dense slice.
func (s Sparse) Dense() []float64 {
	out := make([]float64, s.dim)
	for k, idx := range s.indices {
		out[idx] = s.values[k]
	}
	return out
}

// Norm returns the Euclidean norm.
func (s Sparse) Norm() float64 {
	var sum float64
	for _, v := range s.values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product with another sparse vector (merge join on indices).
func (s Sparse) Dot(o Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(s.indices) && j < len(o.indices) {
		switch {
		case s.indices[i] == o.indices[j]:
			sum += s.values[i] * o.values[j]
			i++
			j++
		case s.indices[i] < o.indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
