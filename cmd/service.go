package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chunkgraph/chunkgraph/internal/kg"
	"github.com/chunkgraph/chunkgraph/internal/llm"
	"github.com/chunkgraph/chunkgraph/internal/store"
)

// newService opens the graph store and wires the knowledge-graph service.
// The returned cleanup closes the store.
func newService() (*kg.Service, *store.SQLiteStore, func(), error) {
	cfg := GetConfig()

	st, err := store.NewSQLiteStore(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open graph store: %w", err)
	}

	llmCfg := llm.Config{
		Provider:       llm.Provider(cfg.LLM.Provider),
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
	}

	svc := kg.NewService(st, llmCfg, newLogger())
	return svc, st, func() { _ = st.Close() }, nil
}

// currentScope builds the operation scope from configuration.
func currentScope(documentID string) kg.Scope {
	cfg := GetConfig()
	return kg.Scope{
		TenantID:   cfg.Tenant.TenantID,
		ClientID:   cfg.Tenant.ClientID,
		DocumentID: documentID,
	}
}

// buildConfigFromApp maps the loaded configuration to build parameters.
func buildConfigFromApp() kg.BuildConfig {
	cfg := GetConfig()
	return kg.BuildConfig{
		SimilarityThreshold: cfg.Graph.SimilarityThreshold,
		MaxEdgesPerChunk:    cfg.Graph.MaxEdgesPerChunk,
		MaxChunks:           cfg.Graph.MaxChunks,
		BatchSize:           cfg.Graph.BatchSize,
		RelType:             cfg.Graph.RelType,
	}
}

// retrieveConfigFromApp maps the loaded configuration to retrieval parameters.
func retrieveConfigFromApp() kg.RetrieveConfig {
	cfg := GetConfig()
	return kg.RetrieveConfig{
		TopK:          cfg.Retrieval.TopK,
		HopLimit:      cfg.Retrieval.HopLimit,
		MaxNeighbours: cfg.Retrieval.MaxNeighbours,
		MinEdgeWeight: cfg.Retrieval.MinEdgeWeight,
	}
}

// printJSON renders a result to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
