package kg

import (
	"context"
	"errors"
	"fmt"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

// Provenance values on retrieved items.
const (
	ProvenanceVector         = "vector"
	ProvenanceGraphExpansion = "graph_expansion"
)

// RetrievedItem is one unit of retrieved content. Similarity is set for
// vector seeds, EdgeWeight and SeedID for expansion items.
type RetrievedItem struct {
	NodeID     string  `json:"nodeId"`
	NodeKey    string  `json:"nodeKey"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Content    string  `json:"content"`
	Provenance string  `json:"provenance"`
	Similarity float64 `json:"similarity,omitempty"`
	EdgeWeight float64 `json:"edgeWeight,omitempty"`
	SeedID     string  `json:"seedId,omitempty"`
}

// Retrieve answers a query embedding with vector-search seeds followed by
// one level of graph expansion. Output ordering is deterministic: all
// seeds descending by similarity, then each seed's expansion group
// descending by edge weight, groups in seed order. A node is emitted at
// most once; seeds win over expansions.
func (s *Service) Retrieve(ctx context.Context, scope Scope, queryEmbedding []float32, cfg RetrieveConfig) ([]RetrievedItem, error) {
	if err := validateConfig("retrieve", cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(scope); err != nil {
		return nil, fmt.Errorf("invalid scope: %w", err)
	}

	seeds, err := s.store.VectorSearchNodes(ctx, scope.TenantID, scope.ClientID, queryEmbedding, cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	visited := make(map[string]bool)
	var items []RetrievedItem
	for _, seed := range seeds {
		if visited[seed.ID] {
			continue
		}
		visited[seed.ID] = true
		items = append(items, RetrievedItem{
			NodeID:     seed.ID,
			NodeKey:    seed.NodeKey,
			Type:       seed.Type,
			Name:       seed.Name,
			Content:    s.hydrateContent(ctx, scope.TenantID, seed.Node),
			Provenance: ProvenanceVector,
			Similarity: seed.Similarity,
		})
	}

	if cfg.HopLimit < 1 {
		return items, nil
	}

	for _, seed := range seeds {
		expanded, err := s.expandSeed(ctx, scope, seed.Node, cfg, visited)
		if err != nil {
			return nil, err
		}
		items = append(items, expanded...)
	}
	return items, nil
}

// expandSeed follows the seed's strongest outgoing edges to active
// destination nodes not yet emitted.
func (s *Service) expandSeed(ctx context.Context, scope Scope, seed store.Node, cfg RetrieveConfig, visited map[string]bool) ([]RetrievedItem, error) {
	edges, err := s.store.OutgoingEdges(ctx, scope.TenantID, scope.ClientID, seed.ID, cfg.MinEdgeWeight, cfg.MaxNeighbours)
	if err != nil {
		return nil, fmt.Errorf("expand node %s: %w", seed.ID, err)
	}
	if len(edges) == 0 {
		return nil, nil
	}

	dstIDs := make([]string, 0, len(edges))
	for _, e := range edges {
		if !visited[e.DstID] {
			dstIDs = append(dstIDs, e.DstID)
		}
	}
	if len(dstIDs) == 0 {
		return nil, nil
	}

	nodes, err := s.store.NodesByIDs(ctx, scope.TenantID, dstIDs, store.NodeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("fetch expansion nodes: %w", err)
	}
	nodeByID := make(map[string]store.Node, len(nodes))
	for _, n := range nodes {
		nodeByID[n.ID] = n
	}

	// Edges arrive weight-descending; walking them in order preserves
	// the per-seed ordering guarantee.
	var items []RetrievedItem
	for _, e := range edges {
		n, ok := nodeByID[e.DstID]
		if !ok || visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		items = append(items, RetrievedItem{
			NodeID:     n.ID,
			NodeKey:    n.NodeKey,
			Type:       n.Type,
			Name:       n.Name,
			Content:    s.hydrateContent(ctx, scope.TenantID, n),
			Provenance: ProvenanceGraphExpansion,
			EdgeWeight: e.Weight,
			SeedID:     seed.ID,
		})
	}
	return items, nil
}

// hydrateContent resolves the text to present for a node. Chunk nodes
// carry only a preview; the full text is fetched from the chunk, falling
// back to description, then name, then empty.
func (s *Service) hydrateContent(ctx context.Context, tenantID string, n store.Node) string {
	if n.Type == store.NodeTypeChunk && n.ChunkID != "" {
		cacheKey := tenantID + ":" + n.ChunkID
		if cached, ok := s.chunkCache.Get(cacheKey); ok {
			return cached.(string)
		}
		content, err := s.store.ChunkContent(ctx, tenantID, n.ChunkID)
		if err == nil && content != "" {
			s.chunkCache.SetDefault(cacheKey, content)
			return content
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("hydrate chunk content failed", "chunk_id", n.ChunkID, "error", err)
		}
	}
	if n.Description != "" {
		return n.Description
	}
	return n.Name
}
