package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_Identical(t *testing.T) {
	a := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, Cosine(a, b), 1e-9)
}

func TestCosine_Opposite(t *testing.T) {
	a := []float32{1, 1}
	b := []float32{-1, -1}
	assert.InDelta(t, -1.0, Cosine(a, b), 1e-9)
}

func TestCosine_ZeroNorm(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	assert.Equal(t, 0.0, Cosine(a, b))
}

func TestCosine_MismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestSimilarityMatrix_MatchesPairwiseCosine(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.6, 0.8, 0},
		{0, 0, 1},
		{0.5, 0.5, 0.5},
	}

	sim := SimilarityMatrix(vectors)

	for i := range vectors {
		for j := range vectors {
			assert.InDelta(t, Cosine(vectors[i], vectors[j]), sim[i][j], 1e-6,
				"sim[%d][%d]", i, j)
		}
	}
}

func TestSimilarityMatrix_Symmetric(t *testing.T) {
	vectors := [][]float32{
		{0.1, 0.9, 0.3},
		{0.7, 0.2, 0.5},
		{0.4, 0.4, 0.8},
	}

	sim := SimilarityMatrix(vectors)

	for i := range sim {
		assert.InDelta(t, 1.0, sim[i][i], 1e-9)
		for j := range sim {
			assert.Equal(t, sim[i][j], sim[j][i])
		}
	}
}

func TestSimilarityMatrix_ZeroVectorRow(t *testing.T) {
	vectors := [][]float32{
		{0, 0},
		{1, 1},
	}

	sim := SimilarityMatrix(vectors)

	// A zero-norm vector must produce zero similarity, not NaN.
	assert.Equal(t, 0.0, sim[0][1])
	assert.Equal(t, 0.0, sim[1][0])
	assert.False(t, math.IsNaN(sim[0][0]))
}

func TestSimilarityMatrix_Empty(t *testing.T) {
	assert.Len(t, SimilarityMatrix(nil), 0)
}
