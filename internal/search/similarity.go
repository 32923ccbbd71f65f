// Package search implements linear-scan cosine similarity search over stored
// content documents.
package search

import "math"

// Cosine returns the cosine similarity between a and b: dot(a,b) / (|a|*|b|),
// in [-1, 1]. It returns 0 when the lengths differ (should never occur given
// the dimensionality invariant) or when either vector has zero norm.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Clamp rounding drift at the bounds.
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
