package vector

import (
	"math"
	"reflect"
	"testing"
)

func TestDotAndNorm(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}

	if got := Dot(a, b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := Norm([]float64{3, 4}); got != 5 {
		t.Errorf("Norm = %v, want 5", got)
	}
	if got := Norm(nil); got != 0 {
		t.Errorf("Norm(nil) = %v, want 0", got)
	}
}

func TestFromCounts_SortsAndDropsZeros(t *testing.T) {
	s := FromCounts(5, map[int]float64{3: 2, 0: 1, 1: 0, 9: 4})

	if s.Dim() != 5 {
		t.Errorf("Dim = %d, want 5", s.Dim())
	}
	if s.NNZ() != 2 {
		t.Errorf("NNZ = %d, want 2", s.NNZ())
	}
	want := []float64{1, 0, 0, 2, 0}
	if got := s.Dense(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dense = %v, want %v", got, want)
	}
	if s.At(3) != 2 || s.At(2) != 0 {
		t.Errorf("At mismatch: At(3)=%v At(2)=%v", s.At(3), s.At(2))
	}
}

func TestSparse_DotMatchesDense(t *testing.T) {
	a := []float64{0, 1, 0, 3, 2, 0}
	b := []float64{5, 2, 0, 1, 0, 7}

	sa, sb := FromDense(a), FromDense(b)
	if got, want := sa.Dot(sb), Dot(a, b); got != want {
		t.Errorf("sparse Dot = %v, dense Dot = %v", got, want)
	}
	if got, want := sa.Norm(), Norm(a); math.Abs(got-want) > 1e-12 {
		t.Errorf("sparse Norm = %v, dense Norm = %v", got, want)
	}
}

func TestSparse_Empty(t *testing.T) {
	var s Sparse
	if s.Norm() != 0 || s.NNZ() != 0 || len(s.Dense()) != 0 {
		t.Errorf("zero Sparse should be empty, got %+v", s)
	}
	if s.Dot(FromDense([]float64{1})) != 0 {
		t.Error("dot with empty vector should be 0")
	}
}
