// Package similarity scores pairs of term-count vectors.
package similarity

import (
	"math"

	"github.com/kailas-cloud/recdex/internal/domain/vector"
)

// Cosine returns dot(u,v) / (|u| * |v|).
// The result is NaN when either vector has zero norm or the lengths differ:
// such pairs are incomparable, which is not the same as dissimilar.
func Cosine(u, v []float64) float64 {
	if len(u) != len(v) {
		return math.NaN()
	}
	return FromDot(vector.Dot(u, v), vector.Norm(u), vector.Norm(v))
}

// CosineSparse is Cosine over sparse vectors.
func CosineSparse(u, v vector.Sparse) float64 {
	if u.Dim() != v.Dim() {
		return math.NaN()
	}
	return FromDot(u.Dot(v), u.Norm(), v.Norm())
}

// FromDot computes cosine from a precomputed dot product and norms.
// Used with cached row norms so each comparison costs a single dot product.
func FromDot(dot, normU, normV float64) float64 {
	if normU == 0 || normV == 0 {
		return math.NaN()
	}
	c := dot / (normU * normV)
	// rounding can push |c| slightly past 1
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}

// Comparable reports whether a score is a defined similarity.
func Comparable(score float64) bool {
	return !math.IsNaN(score)
}
