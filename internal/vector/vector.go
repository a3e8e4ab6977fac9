// Package vector provides the dense similarity math shared by the graph
// builder and the node vector search.
package vector

import "math"

// Cosine computes cosine similarity between two vectors.
// Returns 0.0 for zero-norm vectors or mismatched lengths.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SimilarityMatrix returns the (n, n) cosine similarity matrix for n vectors.
// Each row is L2-normalized first; a zero-norm row keeps norm 1.0 so its
// similarities come out 0.0 instead of dividing by zero. The matrix is
// computed as one dense pass, not n^2 independent Cosine calls.
func SimilarityMatrix(vectors [][]float32) [][]float64 {
	n := len(vectors)
	normalized := make([][]float64, n)
	for i, v := range vectors {
		row := make([]float64, len(v))
		var sum float64
		for j, x := range v {
			row[j] = float64(x)
			sum += float64(x) * float64(x)
		}
		norm := math.Sqrt(sum)
		if norm == 0 {
			norm = 1.0
		}
		for j := range row {
			row[j] /= norm
		}
		normalized[i] = row
	}

	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		sim[i][i] = dot(normalized[i], normalized[i])
		for j := i + 1; j < n; j++ {
			s := dot(normalized[i], normalized[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
