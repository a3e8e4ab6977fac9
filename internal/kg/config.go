package kg

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BuildConfig controls a graph build pass over embedded chunks.
type BuildConfig struct {
	// SimilarityThreshold is the minimum cosine similarity for an edge.
	SimilarityThreshold float64 `validate:"gte=0,lte=1"`
	// MaxEdgesPerChunk caps outgoing edges per node (fan-out cap).
	MaxEdgesPerChunk int `validate:"gte=1"`
	// MaxChunks is a hard cap on chunks per build; excess is truncated.
	MaxChunks int `validate:"gte=1"`
	// BatchSize is the chunk fetch page size.
	BatchSize int `validate:"gte=1"`
	// RelType is the relation written on similarity edges.
	RelType string `validate:"required"`
}

// DefaultBuildConfig returns the standard build parameters.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		SimilarityThreshold: 0.82,
		MaxEdgesPerChunk:    10,
		MaxChunks:           2000,
		BatchSize:           500,
		RelType:             "related_to",
	}
}

// RetrieveConfig controls query-time retrieval.
type RetrieveConfig struct {
	// TopK is the number of vector-search seed nodes.
	TopK int `validate:"gte=1"`
	// HopLimit of 0 returns seeds only; 1 adds one expansion level.
	// Values above 1 behave like 1; deeper traversal is not implemented.
	HopLimit int `validate:"gte=0"`
	// MaxNeighbours caps expansion nodes per seed.
	MaxNeighbours int `validate:"gte=1"`
	// MinEdgeWeight filters expansion edges.
	MinEdgeWeight float64 `validate:"gte=0,lte=1"`
}

// DefaultRetrieveConfig returns the standard retrieval parameters.
func DefaultRetrieveConfig() RetrieveConfig {
	return RetrieveConfig{
		TopK:          5,
		HopLimit:      1,
		MaxNeighbours: 3,
		MinEdgeWeight: 0.75,
	}
}

// AskConfig controls confidence-gated question answering.
type AskConfig struct {
	Retrieve RetrieveConfig
	// ConfidenceThreshold gates answer synthesis on the top seed's
	// similarity. Below it, a fallback answer is returned alongside
	// whatever sources were found.
	ConfidenceThreshold float64 `validate:"gte=0,lte=1"`
}

// DefaultAskConfig returns the standard ask parameters.
func DefaultAskConfig() AskConfig {
	return AskConfig{
		Retrieve:            DefaultRetrieveConfig(),
		ConfidenceThreshold: 0.60,
	}
}

func validateConfig(name string, cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid %s config: %w", name, err)
	}
	return nil
}
