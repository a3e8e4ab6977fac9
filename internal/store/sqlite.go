package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chunkgraph/chunkgraph/internal/vector"
)

// SQLiteStore implements GraphStore using SQLite for persistence.
// Vector search is a brute-force cosine scan over active node embeddings,
// which is adequate at the few-thousand-node scale builds are capped to.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the graph database at basePath.
// Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "graph.db")
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create graph directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Foreign keys drive the document -> chunk -> node cascade.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_uri TEXT NOT NULL,
		title TEXT,
		metadata TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		content_tokens INTEGER,
		page_start INTEGER,
		page_end INTEGER,
		metadata TEXT,
		embedding BLOB,
		created_at TEXT NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
		UNIQUE(tenant_id, document_id, chunk_index)
	);

	CREATE TABLE IF NOT EXISTS kg_nodes (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		node_key TEXT NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		properties TEXT,
		embedding BLOB,
		chunk_id TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		seen_count INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		last_seen_at TEXT NOT NULL,
		FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE,
		UNIQUE(tenant_id, client_id, node_key)
	);

	CREATE TABLE IF NOT EXISTS kg_edges (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		src_id TEXT NOT NULL,
		dst_id TEXT NOT NULL,
		rel_type TEXT NOT NULL,
		weight REAL,
		properties TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		last_seen_at TEXT NOT NULL,
		FOREIGN KEY (src_id) REFERENCES kg_nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (dst_id) REFERENCES kg_nodes(id) ON DELETE CASCADE,
		UNIQUE(tenant_id, client_id, src_id, dst_id, rel_type)
	);

	CREATE TABLE IF NOT EXISTS kg_node_evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		node_id TEXT NOT NULL,
		chunk_id TEXT NOT NULL,
		quote TEXT,
		score REAL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (node_id) REFERENCES kg_nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE,
		UNIQUE(node_id, chunk_id)
	);

	CREATE TABLE IF NOT EXISTS kg_edge_evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		edge_id TEXT NOT NULL,
		chunk_id TEXT NOT NULL,
		quote TEXT,
		score REAL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (edge_id) REFERENCES kg_edges(id) ON DELETE CASCADE,
		FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE,
		UNIQUE(edge_id, chunk_id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_scope ON chunks(tenant_id, client_id, document_id, chunk_index);
	CREATE INDEX IF NOT EXISTS idx_nodes_scope_status ON kg_nodes(tenant_id, client_id, status);
	CREATE INDEX IF NOT EXISTS idx_nodes_chunk ON kg_nodes(chunk_id);
	CREATE INDEX IF NOT EXISTS idx_edges_src ON kg_edges(tenant_id, client_id, src_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_edges_dst ON kg_edges(tenant_id, client_id, dst_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_node_evidence_node ON kg_node_evidence(node_id);
	CREATE INDEX IF NOT EXISTS idx_edge_evidence_edge ON kg_edge_evidence(edge_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// === Documents & chunks ===

func (s *SQLiteStore) UpsertDocument(ctx context.Context, d Document) (string, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	metaJSON, err := marshalProps(d.Metadata)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, tenant_id, client_id, source_type, source_uri, title, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_type = excluded.source_type,
			source_uri = excluded.source_uri,
			title = excluded.title,
			metadata = excluded.metadata
	`, d.ID, d.TenantID, d.ClientID, d.SourceType, d.SourceURI, d.Title, metaJSON, formatTime(d.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("upsert document: %w", err)
	}
	return d.ID, nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, tenantID, documentID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND tenant_id = ?", documentID, tenantID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpsertChunk(ctx context.Context, c Chunk) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	metaJSON, err := marshalProps(c.Metadata)
	if err != nil {
		return "", err
	}
	var embeddingBytes []byte
	if len(c.Embedding) > 0 {
		embeddingBytes = float32SliceToBytes(c.Embedding)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO chunks (id, tenant_id, client_id, document_id, chunk_index, content,
		                    content_tokens, page_start, page_end, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, document_id, chunk_index) DO UPDATE SET
			content = excluded.content,
			content_tokens = excluded.content_tokens,
			page_start = excluded.page_start,
			page_end = excluded.page_end,
			metadata = excluded.metadata,
			embedding = excluded.embedding
		RETURNING id
	`, c.ID, c.TenantID, c.ClientID, c.DocumentID, c.ChunkIndex, c.Content,
		c.ContentTokens, c.PageStart, c.PageEnd, metaJSON, embeddingBytes, formatTime(c.CreatedAt)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert chunk: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) FetchEmbeddedChunks(ctx context.Context, tenantID, clientID, documentID string, limit, offset int) ([]Chunk, error) {
	query := `
		SELECT id, tenant_id, client_id, document_id, chunk_index, content,
		       content_tokens, page_start, page_end, metadata, embedding, created_at
		FROM chunks
		WHERE tenant_id = ? AND client_id = ? AND embedding IS NOT NULL`
	args := []any{tenantID, clientID}
	if documentID != "" {
		query += " AND document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY document_id, chunk_index LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query embedded chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return chunks, nil
}

func scanChunk(rows *sql.Rows) (Chunk, error) {
	var c Chunk
	var tokens, pageStart, pageEnd sql.NullInt64
	var metaJSON sql.NullString
	var embeddingBytes []byte
	var createdAt string

	if err := rows.Scan(&c.ID, &c.TenantID, &c.ClientID, &c.DocumentID, &c.ChunkIndex, &c.Content,
		&tokens, &pageStart, &pageEnd, &metaJSON, &embeddingBytes, &createdAt); err != nil {
		return Chunk{}, fmt.Errorf("scan chunk: %w", err)
	}

	c.ContentTokens = int(tokens.Int64)
	c.PageStart = int(pageStart.Int64)
	c.PageEnd = int(pageEnd.Int64)
	c.Metadata = unmarshalProps(metaJSON)
	if len(embeddingBytes) > 0 {
		c.Embedding = bytesToFloat32Slice(embeddingBytes)
	}
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func (s *SQLiteStore) ChunkContent(ctx context.Context, tenantID, chunkID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM chunks WHERE id = ? AND tenant_id = ?", chunkID, tenantID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query chunk content: %w", err)
	}
	return content, nil
}

// === Nodes & edges ===

func (s *SQLiteStore) UpsertNode(ctx context.Context, n Node) (string, error) {
	if !ValidNodeTypes[n.Type] {
		return "", fmt.Errorf("invalid node type %q", n.Type)
	}
	if n.ID == "" {
		n.ID = "n-" + uuid.New().String()[:8]
	}
	if n.Status == "" {
		n.Status = NodeStatusActive
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	propsJSON, err := marshalProps(n.Properties)
	if err != nil {
		return "", err
	}
	var embeddingBytes []byte
	if len(n.Embedding) > 0 {
		embeddingBytes = float32SliceToBytes(n.Embedding)
	}
	var chunkID any
	if n.ChunkID != "" {
		chunkID = n.ChunkID
	}

	// Single-statement upsert: the surrogate id of the first insert wins,
	// seen_count grows monotonically, and an archived node comes back.
	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO kg_nodes (id, tenant_id, client_id, node_key, type, name, description,
		                      properties, embedding, chunk_id, status, seen_count, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(tenant_id, client_id, node_key) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			description = excluded.description,
			properties = excluded.properties,
			embedding = excluded.embedding,
			chunk_id = excluded.chunk_id,
			status = excluded.status,
			seen_count = kg_nodes.seen_count + 1,
			last_seen_at = excluded.last_seen_at
		RETURNING id
	`, n.ID, n.TenantID, n.ClientID, n.NodeKey, n.Type, n.Name, n.Description,
		propsJSON, embeddingBytes, chunkID, n.Status, formatTime(n.CreatedAt), formatTime(now)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert node: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpsertEdge(ctx context.Context, e Edge) (string, error) {
	if e.ID == "" {
		e.ID = "e-" + uuid.New().String()[:8]
	}
	if e.RelType == "" {
		e.RelType = RelTypeRelatedTo
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}

	propsJSON, err := marshalProps(e.Properties)
	if err != nil {
		return "", err
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO kg_edges (id, tenant_id, client_id, src_id, dst_id, rel_type,
		                      weight, properties, is_active, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(tenant_id, client_id, src_id, dst_id, rel_type) DO UPDATE SET
			weight = excluded.weight,
			properties = excluded.properties,
			is_active = 1,
			last_seen_at = excluded.last_seen_at
		RETURNING id
	`, e.ID, e.TenantID, e.ClientID, e.SrcID, e.DstID, e.RelType,
		e.Weight, propsJSON, formatTime(e.CreatedAt), formatTime(now)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert edge: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) VectorSearchNodes(ctx context.Context, tenantID, clientID string, query []float32, topK int) ([]ScoredNode, error) {
	rows, err := s.db.QueryContext(ctx, nodeColumns+`
		FROM kg_nodes
		WHERE tenant_id = ? AND client_id = ? AND status = ? AND embedding IS NOT NULL
	`, tenantID, clientID, NodeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("query node embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scored []ScoredNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		if len(n.Embedding) == 0 {
			continue
		}
		scored = append(scored, ScoredNode{Node: n, Similarity: vector.Cosine(query, n.Embedding)})
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *SQLiteStore) OutgoingEdges(ctx context.Context, tenantID, clientID, srcID string, minWeight float64, limit int) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, edgeColumns+`
		FROM kg_edges
		WHERE tenant_id = ? AND client_id = ? AND src_id = ? AND is_active = 1 AND weight >= ?
		ORDER BY weight DESC
		LIMIT ?
	`, tenantID, clientID, srcID, minWeight, limit)
	if err != nil {
		return nil, fmt.Errorf("query outgoing edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectEdges(rows)
}

func (s *SQLiteStore) NodesByIDs(ctx context.Context, tenantID string, ids []string, status string) ([]Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := nodeColumns + " FROM kg_nodes WHERE tenant_id = ? AND id IN (" + placeholders + ")"
	args := []any{tenantID}
	for _, id := range ids {
		args = append(args, id)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes by ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *SQLiteStore) GetNode(ctx context.Context, tenantID, nodeID string) (*Node, error) {
	rows, err := s.db.QueryContext(ctx, nodeColumns+" FROM kg_nodes WHERE id = ? AND tenant_id = ?", nodeID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query node: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := checkRowsErr(rows); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	n, err := scanNode(rows)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *SQLiteStore) GetNodeByKey(ctx context.Context, tenantID, clientID, nodeKey string) (*Node, error) {
	rows, err := s.db.QueryContext(ctx,
		nodeColumns+" FROM kg_nodes WHERE tenant_id = ? AND client_id = ? AND node_key = ?",
		tenantID, clientID, nodeKey)
	if err != nil {
		return nil, fmt.Errorf("query node by key: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := checkRowsErr(rows); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	n, err := scanNode(rows)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *SQLiteStore) GetEdge(ctx context.Context, tenantID, edgeID string) (*Edge, error) {
	rows, err := s.db.QueryContext(ctx, edgeColumns+" FROM kg_edges WHERE id = ? AND tenant_id = ?", edgeID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query edge: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := checkRowsErr(rows); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	e, err := scanEdge(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) ListNodes(ctx context.Context, tenantID, clientID, nodeType, status string, limit, offset int) ([]Node, int, error) {
	where := " FROM kg_nodes WHERE tenant_id = ? AND client_id = ?"
	args := []any{tenantID, clientID}
	if nodeType != "" {
		where += " AND type = ?"
		args = append(args, nodeType)
	}
	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count nodes: %w", err)
	}

	query := nodeColumns + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, 0, err
		}
		nodes = append(nodes, n)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, 0, err
	}
	return nodes, total, nil
}

func (s *SQLiteStore) NodeEdges(ctx context.Context, tenantID, clientID, nodeID, direction string) ([]Edge, error) {
	var cols []string
	switch direction {
	case DirectionOut:
		cols = []string{"src_id"}
	case DirectionIn:
		cols = []string{"dst_id"}
	case DirectionBoth, "":
		cols = []string{"src_id", "dst_id"}
	default:
		return nil, fmt.Errorf("invalid direction %q (want out, in or both)", direction)
	}

	seen := make(map[string]bool)
	var edges []Edge
	for _, col := range cols {
		rows, err := s.db.QueryContext(ctx, edgeColumns+`
			FROM kg_edges
			WHERE tenant_id = ? AND client_id = ? AND `+col+` = ? AND is_active = 1
			ORDER BY weight DESC
		`, tenantID, clientID, nodeID)
		if err != nil {
			return nil, fmt.Errorf("query node edges: %w", err)
		}
		batch, err := collectEdges(rows)
		if err != nil {
			return nil, err
		}
		for _, e := range batch {
			if !seen[e.ID] {
				seen[e.ID] = true
				edges = append(edges, e)
			}
		}
	}
	return edges, nil
}

func (s *SQLiteStore) CountEdges(ctx context.Context, tenantID, clientID string, activeOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM kg_edges WHERE tenant_id = ? AND client_id = ?"
	if activeOnly {
		query += " AND is_active = 1"
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID, clientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return count, nil
}

// === Evidence ===

func (s *SQLiteStore) AddNodeEvidence(ctx context.Context, ev NodeEvidence) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kg_node_evidence (tenant_id, client_id, node_id, chunk_id, quote, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node_id, chunk_id) DO UPDATE SET
			quote = excluded.quote,
			score = excluded.score,
			created_at = excluded.created_at
	`, ev.TenantID, ev.ClientID, ev.NodeID, ev.ChunkID, ev.Quote, ev.Score, formatTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert node evidence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddEdgeEvidence(ctx context.Context, ev EdgeEvidence) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kg_edge_evidence (tenant_id, client_id, edge_id, chunk_id, quote, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(edge_id, chunk_id) DO UPDATE SET
			quote = excluded.quote,
			score = excluded.score,
			created_at = excluded.created_at
	`, ev.TenantID, ev.ClientID, ev.EdgeID, ev.ChunkID, ev.Quote, ev.Score, formatTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert edge evidence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListNodeEvidence(ctx context.Context, tenantID, nodeID string) ([]NodeEvidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, client_id, node_id, chunk_id, quote, score, created_at
		FROM kg_node_evidence
		WHERE tenant_id = ? AND node_id = ?
		ORDER BY COALESCE(score, 0) DESC, created_at DESC
	`, tenantID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("query node evidence: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var evs []NodeEvidence
	for rows.Next() {
		var ev NodeEvidence
		var quote sql.NullString
		var score sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.ClientID, &ev.NodeID, &ev.ChunkID, &quote, &score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan node evidence: %w", err)
		}
		ev.Quote = quote.String
		ev.Score = score.Float64
		ev.CreatedAt = parseTime(createdAt)
		evs = append(evs, ev)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return evs, nil
}

func (s *SQLiteStore) ListEdgeEvidence(ctx context.Context, tenantID, edgeID string) ([]EdgeEvidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, client_id, edge_id, chunk_id, quote, score, created_at
		FROM kg_edge_evidence
		WHERE tenant_id = ? AND edge_id = ?
		ORDER BY COALESCE(score, 0) DESC, created_at DESC
	`, tenantID, edgeID)
	if err != nil {
		return nil, fmt.Errorf("query edge evidence: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var evs []EdgeEvidence
	for rows.Next() {
		var ev EdgeEvidence
		var quote sql.NullString
		var score sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.ClientID, &ev.EdgeID, &ev.ChunkID, &quote, &score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan edge evidence: %w", err)
		}
		ev.Quote = quote.String
		ev.Score = score.Float64
		ev.CreatedAt = parseTime(createdAt)
		evs = append(evs, ev)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return evs, nil
}

// === Maintenance ===

// Prune archives stale edges first so they no longer count toward node
// degree, then archives stale low-degree nodes, then trims evidence.
func (s *SQLiteStore) Prune(ctx context.Context, tenantID, clientID string, p PruneParams) (PruneResult, error) {
	var result PruneResult
	now := time.Now().UTC()
	edgeCutoff := formatTime(now.AddDate(0, 0, -p.EdgeStaleDays))
	nodeCutoff := formatTime(now.AddDate(0, 0, -p.NodeStaleDays))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin prune: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE kg_edges SET is_active = 0
		WHERE tenant_id = ? AND client_id = ? AND is_active = 1 AND last_seen_at < ?
	`, tenantID, clientID, edgeCutoff)
	if err != nil {
		return result, fmt.Errorf("archive stale edges: %w", err)
	}
	n, _ := res.RowsAffected()
	result.EdgesArchived = int(n)

	// A node is archived only if it is both stale and below the degree
	// floor; well-connected hubs survive on degree alone.
	res, err = tx.ExecContext(ctx, `
		UPDATE kg_nodes SET status = ?
		WHERE tenant_id = ? AND client_id = ? AND status = ? AND last_seen_at < ?
		AND (
			SELECT COUNT(*) FROM kg_edges e
			WHERE e.tenant_id = kg_nodes.tenant_id
			  AND e.client_id = kg_nodes.client_id
			  AND e.is_active = 1
			  AND (e.src_id = kg_nodes.id OR e.dst_id = kg_nodes.id)
		) < ?
	`, NodeStatusArchived, tenantID, clientID, NodeStatusActive, nodeCutoff, p.MinDegree)
	if err != nil {
		return result, fmt.Errorf("archive stale nodes: %w", err)
	}
	n, _ = res.RowsAffected()
	result.NodesArchived = int(n)

	res, err = tx.ExecContext(ctx, `
		DELETE FROM kg_edge_evidence WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY edge_id
					ORDER BY COALESCE(score, 0) DESC, created_at DESC
				) AS rn
				FROM kg_edge_evidence
				WHERE tenant_id = ? AND client_id = ?
			) WHERE rn > ?
		)
	`, tenantID, clientID, p.KeepEdgeEvidence)
	if err != nil {
		return result, fmt.Errorf("trim edge evidence: %w", err)
	}
	n, _ = res.RowsAffected()
	result.EdgeEvidenceDeleted = int(n)

	res, err = tx.ExecContext(ctx, `
		DELETE FROM kg_node_evidence WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY node_id
					ORDER BY COALESCE(score, 0) DESC, created_at DESC
				) AS rn
				FROM kg_node_evidence
				WHERE tenant_id = ? AND client_id = ?
			) WHERE rn > ?
		)
	`, tenantID, clientID, p.KeepNodeEvidence)
	if err != nil {
		return result, fmt.Errorf("trim node evidence: %w", err)
	}
	n, _ = res.RowsAffected()
	result.NodeEvidenceDeleted = int(n)

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit prune: %w", err)
	}
	return result, nil
}

// === Scan helpers ===

const nodeColumns = `SELECT id, tenant_id, client_id, node_key, type, name, description,
       properties, embedding, chunk_id, status, seen_count, created_at, last_seen_at`

const edgeColumns = `SELECT id, tenant_id, client_id, src_id, dst_id, rel_type,
       weight, properties, is_active, created_at, last_seen_at`

func scanNode(rows *sql.Rows) (Node, error) {
	var n Node
	var description, propsJSON, chunkID sql.NullString
	var embeddingBytes []byte
	var createdAt, lastSeenAt string

	if err := rows.Scan(&n.ID, &n.TenantID, &n.ClientID, &n.NodeKey, &n.Type, &n.Name, &description,
		&propsJSON, &embeddingBytes, &chunkID, &n.Status, &n.SeenCount, &createdAt, &lastSeenAt); err != nil {
		return Node{}, fmt.Errorf("scan node: %w", err)
	}

	n.Description = description.String
	n.Properties = unmarshalProps(propsJSON)
	if len(embeddingBytes) > 0 {
		n.Embedding = bytesToFloat32Slice(embeddingBytes)
	}
	n.ChunkID = chunkID.String
	n.CreatedAt = parseTime(createdAt)
	n.LastSeenAt = parseTime(lastSeenAt)
	return n, nil
}

func scanEdge(rows *sql.Rows) (Edge, error) {
	var e Edge
	var weight sql.NullFloat64
	var propsJSON sql.NullString
	var isActive int
	var createdAt, lastSeenAt string

	if err := rows.Scan(&e.ID, &e.TenantID, &e.ClientID, &e.SrcID, &e.DstID, &e.RelType,
		&weight, &propsJSON, &isActive, &createdAt, &lastSeenAt); err != nil {
		return Edge{}, fmt.Errorf("scan edge: %w", err)
	}

	e.Weight = weight.Float64
	e.Properties = unmarshalProps(propsJSON)
	e.IsActive = isActive != 0
	e.CreatedAt = parseTime(createdAt)
	e.LastSeenAt = parseTime(lastSeenAt)
	return e, nil
}

func collectEdges(rows *sql.Rows) ([]Edge, error) {
	defer func() { _ = rows.Close() }()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return edges, nil
}
