package store

import "time"

// EmbeddingDim is the required embedding dimension for chunks and nodes.
// Chunks carrying a different dimension are skipped during graph builds.
const EmbeddingDim = 1536

// Node status constants.
const (
	NodeStatusActive         = "active"
	NodeStatusPendingLinking = "pending_linking"
	NodeStatusArchived       = "archived"
)

// Node type constants. A node represents one retrievable unit of content;
// Chunk is by far the most common type.
const (
	NodeTypeWebPage         = "WebPage"
	NodeTypePDF             = "PDF"
	NodeTypeImage           = "Image"
	NodeTypePowerPoint      = "PowerPoint"
	NodeTypeDocx            = "Docx"
	NodeTypeVideoTranscript = "VideoTranscript"
	NodeTypeChatTranscript  = "ChatTranscript"
	NodeTypeChatSnapshot    = "ChatSnapshot"
	NodeTypeChunk           = "Chunk"
)

// ValidNodeTypes is the set of accepted node type values.
var ValidNodeTypes = map[string]bool{
	NodeTypeWebPage:         true,
	NodeTypePDF:             true,
	NodeTypeImage:           true,
	NodeTypePowerPoint:      true,
	NodeTypeDocx:            true,
	NodeTypeVideoTranscript: true,
	NodeTypeChatTranscript:  true,
	NodeTypeChatSnapshot:    true,
	NodeTypeChunk:           true,
}

// Node is a graph vertex. Its natural key is (tenant_id, client_id, node_key);
// the surrogate ID is assigned on first insert and survives upserts.
// A Chunk-type node is a lightweight proxy for the chunk it represents:
// Description holds an 80-char preview, never the full text.
type Node struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	ClientID string `json:"clientId"`
	NodeKey  string `json:"nodeKey"`

	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Embedding   []float32      `json:"embedding,omitempty"`

	// ChunkID backs the chunk cascade: deleting the chunk (or its document)
	// removes the node. Mirrors Properties["chunk_id"] for Chunk-type nodes.
	ChunkID string `json:"chunkId,omitempty"`

	Status     string    `json:"status"`
	SeenCount  int       `json:"seenCount"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// ScoredNode is a node paired with its similarity to a query embedding,
// as returned by vector search.
type ScoredNode struct {
	Node
	Similarity float64 `json:"similarity"`
}

// Edge is a directed, weighted relation between two nodes. Natural key is
// (tenant_id, client_id, src_id, dst_id, rel_type). Edges are not
// guaranteed symmetric: fan-out capping may keep A->B and drop B->A.
type Edge struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	ClientID string `json:"clientId"`

	SrcID   string `json:"srcId"`
	DstID   string `json:"dstId"`
	RelType string `json:"relType"`

	Weight     float64        `json:"weight"`
	Properties map[string]any `json:"properties,omitempty"`
	IsActive   bool           `json:"isActive"`

	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// RelTypeRelatedTo is the relation drawn between embedding-similar chunks.
const RelTypeRelatedTo = "related_to"

// Document owns chunks; deleting a document cascades to its chunks, the
// nodes built from them, and all evidence rows.
type Document struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenantId"`
	ClientID   string         `json:"clientId"`
	SourceType string         `json:"sourceType"`
	SourceURI  string         `json:"sourceUri"`
	Title      string         `json:"title,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Chunk is a unit of extracted document text with its own embedding.
// Natural key is (tenant_id, document_id, chunk_index). The graph core
// reads chunk embeddings at build time and chunk content at retrieval time.
type Chunk struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	ClientID   string `json:"clientId"`
	DocumentID string `json:"documentId"`
	ChunkIndex int    `json:"chunkIndex"`

	Content       string         `json:"content"`
	ContentTokens int            `json:"contentTokens,omitempty"`
	PageStart     int            `json:"pageStart,omitempty"`
	PageEnd       int            `json:"pageEnd,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Embedding     []float32      `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NodeEvidence links a node to a supporting chunk. One row per
// (node, chunk) pair; retention is bounded by pruning.
type NodeEvidence struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId"`
	ClientID  string    `json:"clientId"`
	NodeID    string    `json:"nodeId"`
	ChunkID   string    `json:"chunkId"`
	Quote     string    `json:"quote,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// EdgeEvidence links an edge to a supporting chunk.
type EdgeEvidence struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId"`
	ClientID  string    `json:"clientId"`
	EdgeID    string    `json:"edgeId"`
	ChunkID   string    `json:"chunkId"`
	Quote     string    `json:"quote,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// PruneParams controls archival of stale graph elements and evidence
// trimming. Archival is a status flip, never a delete: a later build pass
// touching the same natural key re-activates the element.
type PruneParams struct {
	EdgeStaleDays    int `json:"edgeStaleDays"`
	NodeStaleDays    int `json:"nodeStaleDays"`
	MinDegree        int `json:"minDegree"`
	KeepEdgeEvidence int `json:"keepEdgeEvidence"`
	KeepNodeEvidence int `json:"keepNodeEvidence"`
}

// DefaultPruneParams returns the standard maintenance windows.
func DefaultPruneParams() PruneParams {
	return PruneParams{
		EdgeStaleDays:    90,
		NodeStaleDays:    180,
		MinDegree:        3,
		KeepEdgeEvidence: 5,
		KeepNodeEvidence: 10,
	}
}

// PruneResult reports what a maintenance pass archived or deleted.
type PruneResult struct {
	EdgesArchived       int `json:"edgesArchived"`
	NodesArchived       int `json:"nodesArchived"`
	EdgeEvidenceDeleted int `json:"edgeEvidenceDeleted"`
	NodeEvidenceDeleted int `json:"nodeEvidenceDeleted"`
}
