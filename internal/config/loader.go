package config

import (
	"github.com/spf13/viper"
)

// Load assembles the configuration from Viper with per-key defaults.
// Viper must already have its config file and env binding set up.
func Load() AppConfig {
	defaults := Default()

	return AppConfig{
		DataDir: getStringWithDefault("dataDir", defaults.DataDir),
		Verbose: getBoolWithDefault("verbose", defaults.Verbose),

		Tenant: TenantConfig{
			TenantID: getStringWithDefault("tenant.tenantId", defaults.Tenant.TenantID),
			ClientID: getStringWithDefault("tenant.clientId", defaults.Tenant.ClientID),
		},

		LLM: LLMConfig{
			Provider:       getStringWithDefault("llm.provider", defaults.LLM.Provider),
			Model:          getStringWithDefault("llm.modelName", defaults.LLM.Model),
			EmbeddingModel: getStringWithDefault("llm.embeddingModel", defaults.LLM.EmbeddingModel),
			APIKey:         getStringWithDefault("llm.apiKey", defaults.LLM.APIKey),
			BaseURL:        getStringWithDefault("llm.baseUrl", defaults.LLM.BaseURL),
		},

		Graph: GraphConfig{
			SimilarityThreshold: getFloat64WithDefault("graph.similarityThreshold", defaults.Graph.SimilarityThreshold),
			MaxEdgesPerChunk:    getIntWithDefault("graph.maxEdgesPerChunk", defaults.Graph.MaxEdgesPerChunk),
			MaxChunks:           getIntWithDefault("graph.maxChunks", defaults.Graph.MaxChunks),
			BatchSize:           getIntWithDefault("graph.batchSize", defaults.Graph.BatchSize),
			RelType:             getStringWithDefault("graph.relType", defaults.Graph.RelType),
		},

		Retrieval: RetrievalConfig{
			TopK:                getIntWithDefault("retrieval.topK", defaults.Retrieval.TopK),
			HopLimit:            getIntWithDefault("retrieval.hopLimit", defaults.Retrieval.HopLimit),
			MaxNeighbours:       getIntWithDefault("retrieval.maxNeighbours", defaults.Retrieval.MaxNeighbours),
			MinEdgeWeight:       getFloat64WithDefault("retrieval.minEdgeWeight", defaults.Retrieval.MinEdgeWeight),
			ConfidenceThreshold: getFloat64WithDefault("retrieval.confidenceThreshold", defaults.Retrieval.ConfidenceThreshold),
		},

		Prune: PruneConfig{
			EdgeStaleDays:    getIntWithDefault("prune.edgeStaleDays", defaults.Prune.EdgeStaleDays),
			NodeStaleDays:    getIntWithDefault("prune.nodeStaleDays", defaults.Prune.NodeStaleDays),
			MinDegree:        getIntWithDefault("prune.minDegree", defaults.Prune.MinDegree),
			KeepEdgeEvidence: getIntWithDefault("prune.keepEdgeEvidence", defaults.Prune.KeepEdgeEvidence),
			KeepNodeEvidence: getIntWithDefault("prune.keepNodeEvidence", defaults.Prune.KeepNodeEvidence),
			Schedule:         getStringWithDefault("prune.schedule", defaults.Prune.Schedule),
		},
	}
}

// Helper functions for Viper with defaults

func getFloat64WithDefault(key string, defaultVal float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return defaultVal
}

func getIntWithDefault(key string, defaultVal int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return defaultVal
}

func getBoolWithDefault(key string, defaultVal bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return defaultVal
}

func getStringWithDefault(key string, defaultVal string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultVal
}
