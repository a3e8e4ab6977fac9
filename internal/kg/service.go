// Package kg implements the knowledge-graph core: building similarity
// graphs from embedded chunks, retrieving over them with bounded
// expansion, answering questions, and pruning stale elements.
package kg

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	gocache "github.com/patrickmn/go-cache"

	"github.com/chunkgraph/chunkgraph/internal/llm"
	"github.com/chunkgraph/chunkgraph/internal/store"
)

// Scope identifies whose graph an operation touches. DocumentID is
// optional and narrows builds to a single document's chunks.
type Scope struct {
	TenantID   string `validate:"required"`
	ClientID   string `validate:"required"`
	DocumentID string
}

// Service provides the graph build, retrieve, ask and prune operations
// on top of a GraphStore.
type Service struct {
	store  store.GraphStore
	llmCfg llm.Config
	logger *slog.Logger

	// Chunk text is immutable once written; cache hydrated content
	// briefly to spare repeated lookups across retrievals.
	chunkCache *gocache.Cache

	// Factories allow injection for testing.
	embedderFactory  func(ctx context.Context, cfg llm.Config) (embedding.Embedder, error)
	chatModelFactory func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error)
}

// NewService creates a knowledge-graph service.
func NewService(st store.GraphStore, llmCfg llm.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:            st,
		llmCfg:           llmCfg,
		logger:           logger,
		chunkCache:       gocache.New(5*time.Minute, 10*time.Minute),
		embedderFactory:  llm.NewEmbeddingModel,
		chatModelFactory: llm.NewChatModel,
	}
}
