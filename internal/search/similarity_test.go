package search

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float32{0.5, -0.3, 0.8, 0.1}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("self similarity=%v, want 1.0", got)
	}
}

func TestCosine_Bounds(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 0}, {-1, 0}},
		{{0.3, 0.7}, {0.9, 0.2}},
		{{-0.5, 0.5}, {0.5, -0.5}},
	}
	for _, p := range pairs {
		got := Cosine(p[0], p[1])
		if got < -1 || got > 1 {
			t.Errorf("Cosine(%v, %v)=%v out of [-1,1]", p[0], p[1], got)
		}
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal=%v, want 0", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite=%v, want -1", got)
	}
}

func TestCosine_ZeroNorm(t *testing.T) {
	if got := Cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero norm=%v, want 0", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 0}); got != 0 {
		t.Errorf("zero norm=%v, want 0", got)
	}
}

func TestCosine_LengthMismatch(t *testing.T) {
	if got := Cosine([]float32{1, 0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("mismatch=%v, want 0", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("empty=%v, want 0", got)
	}
}
