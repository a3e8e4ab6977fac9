package kg

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/chunkgraph/chunkgraph/internal/store"
	"github.com/chunkgraph/chunkgraph/internal/vector"
)

// previewLen bounds node descriptions; full text stays on the chunk.
const previewLen = 80

// BuildResult reports what a build pass did. Warnings collect per-item
// upsert failures; the build itself still succeeds with them present.
type BuildResult struct {
	ChunksFetched int      `json:"chunksFetched"`
	ChunksValid   int      `json:"chunksValid"`
	ChunksSkipped int      `json:"chunksSkipped"`
	NodesUpserted int      `json:"nodesUpserted"`
	EdgesUpserted int      `json:"edgesUpserted"`
	Warnings      []string `json:"warnings,omitempty"`
	Note          string   `json:"note,omitempty"`
}

// Build turns the scope's embedded chunks into Chunk nodes plus pairwise
// cosine-similarity edges above the configured threshold. Reruns are
// idempotent: nodes and edges upsert by natural key.
func (s *Service) Build(ctx context.Context, scope Scope, cfg BuildConfig) (BuildResult, error) {
	var result BuildResult

	if err := validateConfig("build", cfg); err != nil {
		return result, err
	}
	if err := validate.Struct(scope); err != nil {
		return result, fmt.Errorf("invalid scope: %w", err)
	}

	chunks, err := s.fetchChunks(ctx, scope, cfg)
	if err != nil {
		return result, err
	}
	result.ChunksFetched = len(chunks)
	if len(chunks) == 0 {
		result.Note = "no embedded chunks found in scope"
		return result, nil
	}

	// Dimension check is per chunk: a bad embedding is skipped and
	// counted, never fatal to the batch.
	valid := chunks[:0]
	for _, c := range chunks {
		if len(c.Embedding) != store.EmbeddingDim {
			result.ChunksSkipped++
			s.logger.Warn("skipping chunk with invalid embedding",
				"chunk_id", c.ID, "dims", len(c.Embedding), "want", store.EmbeddingDim)
			continue
		}
		valid = append(valid, c)
	}
	result.ChunksValid = len(valid)
	if len(valid) == 0 {
		result.Note = "no chunks carried a valid embedding"
		return result, nil
	}

	// Nodes strictly before edges: edge rows reference the surrogate
	// ids the node upserts produce.
	nodeIDs := make([]string, len(valid))
	for i, c := range valid {
		preview := contentPreview(c.Content)
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		nodeID, err := s.store.UpsertNode(ctx, store.Node{
			TenantID:    scope.TenantID,
			ClientID:    scope.ClientID,
			NodeKey:     "chunk:" + c.ID,
			Type:        store.NodeTypeChunk,
			Name:        fmt.Sprintf("Chunk %d", c.ChunkIndex),
			Description: preview,
			Properties: map[string]any{
				"chunk_id":    c.ID,
				"document_id": c.DocumentID,
				"chunk_index": c.ChunkIndex,
				"metadata":    metadata,
			},
			Embedding: c.Embedding,
			ChunkID:   c.ID,
			Status:    store.NodeStatusActive,
		})
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("upsert node for chunk %s: %v", c.ID, err))
			continue
		}
		nodeIDs[i] = nodeID
		result.NodesUpserted++

		if err := s.store.AddNodeEvidence(ctx, store.NodeEvidence{
			TenantID: scope.TenantID,
			ClientID: scope.ClientID,
			NodeID:   nodeID,
			ChunkID:  c.ID,
			Quote:    preview,
			Score:    1.0,
		}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("record evidence for chunk %s: %v", c.ID, err))
		}
	}

	// One dense matrix over the batch rather than N*N pairwise calls.
	embeddings := make([][]float32, len(valid))
	for i, c := range valid {
		embeddings[i] = c.Embedding
	}
	sims := vector.SimilarityMatrix(embeddings)

	edgeProps := map[string]any{
		"method":    "chunk_embedding_cosine",
		"threshold": cfg.SimilarityThreshold,
	}
	for i := range valid {
		if nodeIDs[i] == "" {
			continue
		}
		neighbours := topNeighbours(sims[i], i, cfg.SimilarityThreshold, cfg.MaxEdgesPerChunk)
		for _, nb := range neighbours {
			if nodeIDs[nb.index] == "" {
				continue
			}
			_, err := s.store.UpsertEdge(ctx, store.Edge{
				TenantID:   scope.TenantID,
				ClientID:   scope.ClientID,
				SrcID:      nodeIDs[i],
				DstID:      nodeIDs[nb.index],
				RelType:    cfg.RelType,
				Weight:     nb.similarity,
				Properties: edgeProps,
			})
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("upsert edge %s -> %s: %v", nodeIDs[i], nodeIDs[nb.index], err))
				continue
			}
			result.EdgesUpserted++
		}
	}

	s.logger.Info("graph build complete",
		"tenant_id", scope.TenantID, "client_id", scope.ClientID,
		"chunks_valid", result.ChunksValid, "chunks_skipped", result.ChunksSkipped,
		"nodes", result.NodesUpserted, "edges", result.EdgesUpserted,
		"warnings", len(result.Warnings))
	return result, nil
}

// fetchChunks pages through embedded chunks for the scope, stopping at
// the MaxChunks hard cap.
func (s *Service) fetchChunks(ctx context.Context, scope Scope, cfg BuildConfig) ([]store.Chunk, error) {
	var chunks []store.Chunk
	offset := 0
	for len(chunks) < cfg.MaxChunks {
		limit := cfg.BatchSize
		if remaining := cfg.MaxChunks - len(chunks); remaining < limit {
			limit = remaining
		}
		batch, err := s.store.FetchEmbeddedChunks(ctx, scope.TenantID, scope.ClientID, scope.DocumentID, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch embedded chunks: %w", err)
		}
		chunks = append(chunks, batch...)
		if len(batch) < limit {
			break
		}
		offset += len(batch)
	}
	return chunks, nil
}

type neighbour struct {
	index      int
	similarity float64
}

// topNeighbours returns the indices similar to row i at or above the
// threshold, descending by similarity, capped at max.
func topNeighbours(row []float64, i int, threshold float64, max int) []neighbour {
	var out []neighbour
	for j, sim := range row {
		if j == i || sim < threshold {
			continue
		}
		out = append(out, neighbour{index: j, similarity: sim})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].similarity > out[b].similarity
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// contentPreview trims the text, flattens newlines to spaces, and returns
// the first previewLen characters with an ellipsis, rune-safe.
func contentPreview(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "…"
}
