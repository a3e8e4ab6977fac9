// Package config defines the application configuration and its viper-backed
// loader. Values resolve flag > env (CHUNKGRAPH_*) > config file > default.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// AppConfig is the root configuration for the chunkgraph CLI.
type AppConfig struct {
	// DataDir holds the SQLite graph database.
	DataDir string `mapstructure:"dataDir" validate:"required"`
	Verbose bool   `mapstructure:"verbose"`

	Tenant    TenantConfig    `mapstructure:"tenant"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Prune     PruneConfig     `mapstructure:"prune"`
}

// TenantConfig scopes every graph operation.
type TenantConfig struct {
	TenantID string `mapstructure:"tenantId" validate:"required"`
	ClientID string `mapstructure:"clientId" validate:"required"`
}

// LLMConfig selects the embedding and chat providers.
type LLMConfig struct {
	Provider       string `mapstructure:"provider" validate:"required,oneof=openai ollama anthropic gemini"`
	Model          string `mapstructure:"modelName"`
	EmbeddingModel string `mapstructure:"embeddingModel"`
	APIKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"baseUrl"`
}

// GraphConfig holds build-time parameters.
type GraphConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarityThreshold" validate:"gte=0,lte=1"`
	MaxEdgesPerChunk    int     `mapstructure:"maxEdgesPerChunk" validate:"gte=1"`
	MaxChunks           int     `mapstructure:"maxChunks" validate:"gte=1"`
	BatchSize           int     `mapstructure:"batchSize" validate:"gte=1"`
	RelType             string  `mapstructure:"relType" validate:"required"`
}

// RetrievalConfig holds query-time parameters.
type RetrievalConfig struct {
	TopK                int     `mapstructure:"topK" validate:"gte=1"`
	HopLimit            int     `mapstructure:"hopLimit" validate:"gte=0"`
	MaxNeighbours       int     `mapstructure:"maxNeighbours" validate:"gte=1"`
	MinEdgeWeight       float64 `mapstructure:"minEdgeWeight" validate:"gte=0,lte=1"`
	ConfidenceThreshold float64 `mapstructure:"confidenceThreshold" validate:"gte=0,lte=1"`
}

// PruneConfig holds maintenance parameters. Schedule is an optional cron
// expression for the periodic prune loop.
type PruneConfig struct {
	EdgeStaleDays    int    `mapstructure:"edgeStaleDays" validate:"gte=1"`
	NodeStaleDays    int    `mapstructure:"nodeStaleDays" validate:"gte=1"`
	MinDegree        int    `mapstructure:"minDegree" validate:"gte=0"`
	KeepEdgeEvidence int    `mapstructure:"keepEdgeEvidence" validate:"gte=0"`
	KeepNodeEvidence int    `mapstructure:"keepNodeEvidence" validate:"gte=0"`
	Schedule         string `mapstructure:"schedule"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		DataDir: ".chunkgraph",
		Tenant: TenantConfig{
			TenantID: "default",
			ClientID: "default",
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Graph: GraphConfig{
			SimilarityThreshold: 0.82,
			MaxEdgesPerChunk:    10,
			MaxChunks:           2000,
			BatchSize:           500,
			RelType:             "related_to",
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			HopLimit:            1,
			MaxNeighbours:       3,
			MinEdgeWeight:       0.75,
			ConfidenceThreshold: 0.60,
		},
		Prune: PruneConfig{
			EdgeStaleDays:    90,
			NodeStaleDays:    180,
			MinDegree:        3,
			KeepEdgeEvidence: 5,
			KeepNodeEvidence: 10,
		},
	}
}

// validate is a single instance, it caches struct info
var validate = validator.New()

// Validate checks the loaded configuration.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
