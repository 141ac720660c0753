package faq

import "math"

// Cosine returns the cosine similarity of two vectors. Zero-norm or mismatched vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dotSum, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotSum += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotSum / (math.Sqrt(normA) * math.Sqrt(normB))
}
