package vectorstore

import (
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors,
// in [-1, 1]. Mismatched lengths and zero-norm vectors yield 0.0 by
// convention rather than an error.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// DotProduct computes the dot product of two equal-length vectors
func DotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0.0
	}

	var product float32
	for i := range a {
		product += a[i] * b[i]
	}
	return product
}

// Magnitude computes the Euclidean length of a vector
func Magnitude(v []float32) float32 {
	var sum float32
	for _, val := range v {
		sum += val * val
	}
	return float32(math.Sqrt(float64(sum)))
}

// NormalizeVector scales a vector to unit length. A zero vector is
// returned unchanged.
func NormalizeVector(v []float32) []float32 {
	norm := Magnitude(v)
	if norm == 0.0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = val / norm
	}
	return normalized
}
