package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// Edge direction filters for NodeEdges.
const (
	DirectionOut  = "out"
	DirectionIn   = "in"
	DirectionBoth = "both"
)

// GraphStore is the persistence capability set the graph core consumes:
// upsert-by-natural-key, scoped range queries, vector similarity search,
// and transactional cascade delete. All writes are idempotent, so every
// call is a safe retry candidate.
type GraphStore interface {
	// === Documents & chunks (ingestion seam) ===

	// UpsertDocument inserts a document, generating an id if absent.
	UpsertDocument(ctx context.Context, d Document) (string, error)

	// DeleteDocument removes a document and cascades to its chunks, the
	// nodes built from those chunks, and all evidence rows.
	DeleteDocument(ctx context.Context, tenantID, documentID string) error

	// UpsertChunk inserts or updates a chunk by (tenant, document, index).
	UpsertChunk(ctx context.Context, c Chunk) (string, error)

	// FetchEmbeddedChunks pages through chunks that have an embedding,
	// scoped to tenant+client and optionally to one document, ordered by
	// (document_id, chunk_index).
	FetchEmbeddedChunks(ctx context.Context, tenantID, clientID, documentID string, limit, offset int) ([]Chunk, error)

	// ChunkContent returns the full text of one chunk.
	ChunkContent(ctx context.Context, tenantID, chunkID string) (string, error)

	// === Nodes & edges ===

	// UpsertNode inserts or updates a node by its natural key and returns
	// the surrogate id. On conflict the existing id is kept, seen_count is
	// bumped, last_seen_at refreshed, and an archived node is re-activated.
	UpsertNode(ctx context.Context, n Node) (string, error)

	// UpsertEdge inserts or updates a directed edge by its natural key and
	// returns the surrogate id. On conflict weight and properties are
	// refreshed and the edge is re-activated.
	UpsertEdge(ctx context.Context, e Edge) (string, error)

	// VectorSearchNodes returns the topK active nodes most similar to the
	// query embedding, descending by cosine similarity.
	VectorSearchNodes(ctx context.Context, tenantID, clientID string, query []float32, topK int) ([]ScoredNode, error)

	// OutgoingEdges returns active edges from srcID with weight >= minWeight,
	// descending by weight, capped at limit.
	OutgoingEdges(ctx context.Context, tenantID, clientID, srcID string, minWeight float64, limit int) ([]Edge, error)

	// NodesByIDs batch-fetches nodes by surrogate id, filtered to the given
	// status when non-empty.
	NodesByIDs(ctx context.Context, tenantID string, ids []string, status string) ([]Node, error)

	// GetNode returns one node by surrogate id, or ErrNotFound.
	GetNode(ctx context.Context, tenantID, nodeID string) (*Node, error)

	// GetNodeByKey returns one node by natural key, or ErrNotFound.
	GetNodeByKey(ctx context.Context, tenantID, clientID, nodeKey string) (*Node, error)

	// GetEdge returns one edge by surrogate id, or ErrNotFound.
	GetEdge(ctx context.Context, tenantID, edgeID string) (*Edge, error)

	// ListNodes returns nodes filtered by type and status (empty = any),
	// newest first, plus the total count for the filter.
	ListNodes(ctx context.Context, tenantID, clientID, nodeType, status string, limit, offset int) ([]Node, int, error)

	// NodeEdges returns active edges touching a node in the given
	// direction (out, in, both), deduplicated.
	NodeEdges(ctx context.Context, tenantID, clientID, nodeID, direction string) ([]Edge, error)

	// CountEdges counts edges for a scope, optionally active-only.
	CountEdges(ctx context.Context, tenantID, clientID string, activeOnly bool) (int, error)

	// === Evidence ===

	// AddNodeEvidence records or refreshes the (node, chunk) evidence row.
	AddNodeEvidence(ctx context.Context, ev NodeEvidence) error

	// AddEdgeEvidence records or refreshes the (edge, chunk) evidence row.
	AddEdgeEvidence(ctx context.Context, ev EdgeEvidence) error

	// ListNodeEvidence returns evidence rows for a node, best first.
	ListNodeEvidence(ctx context.Context, tenantID, nodeID string) ([]NodeEvidence, error)

	// ListEdgeEvidence returns evidence rows for an edge, best first.
	ListEdgeEvidence(ctx context.Context, tenantID, edgeID string) ([]EdgeEvidence, error)

	// === Maintenance ===

	// Prune archives stale edges, archives stale low-degree nodes, and
	// trims evidence rows beyond the keep limits.
	Prune(ctx context.Context, tenantID, clientID string, p PruneParams) (PruneResult, error)

	// === Lifecycle ===

	Close() error
}
