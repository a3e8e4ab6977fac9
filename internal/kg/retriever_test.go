package kg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

// graphFixture wires a small graph by hand so edge weights are exact:
//
//	a (1,0) --0.95--> b (0.9,~0.44) --0.90--> d
//	a        --0.80--> c
//	b        --0.70--> e
//
// A query of (1,0,...) ranks a first, b second.
type graphFixture struct {
	a, b, c, d, e string
}

func buildGraphFixture(t *testing.T, st *store.SQLiteStore) graphFixture {
	t.Helper()
	ctx := context.Background()

	mkNode := func(key string, emb []float32, desc string) string {
		id, err := st.UpsertNode(ctx, store.Node{
			TenantID: "t1", ClientID: "c1", NodeKey: key,
			Type: store.NodeTypeWebPage, Name: "page " + key,
			Description: desc, Embedding: emb,
		})
		require.NoError(t, err)
		return id
	}
	mkEdge := func(src, dst string, w float64) {
		_, err := st.UpsertEdge(ctx, store.Edge{
			TenantID: "t1", ClientID: "c1", SrcID: src, DstID: dst, Weight: w,
		})
		require.NoError(t, err)
	}

	f := graphFixture{
		a: mkNode("a", embed1536(1, 0), "about a"),
		b: mkNode("b", embed1536(0.9, 0.43588989), "about b"),
		c: mkNode("c", nil, "about c"),
		d: mkNode("d", nil, "about d"),
		e: mkNode("e", nil, "about e"),
	}
	mkEdge(f.a, f.b, 0.95)
	mkEdge(f.a, f.c, 0.80)
	mkEdge(f.b, f.d, 0.90)
	mkEdge(f.b, f.e, 0.70)
	return f
}

func TestRetrieveHopZeroReturnsSeedsOnly(t *testing.T) {
	svc, st := newTestService(t)
	f := buildGraphFixture(t, st)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 2
	cfg.HopLimit = 0
	items, err := svc.Retrieve(context.Background(), testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, f.a, items[0].NodeID)
	assert.Equal(t, f.b, items[1].NodeID)
	for _, item := range items {
		assert.Equal(t, ProvenanceVector, item.Provenance)
	}
	assert.Greater(t, items[0].Similarity, items[1].Similarity)
}

func TestRetrieveOrderingAndDedup(t *testing.T) {
	svc, st := newTestService(t)
	f := buildGraphFixture(t, st)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 2
	cfg.MinEdgeWeight = 0.75
	items, err := svc.Retrieve(context.Background(), testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)

	// Seeds a, b first. Then a's expansion: b is already visited, c
	// qualifies at 0.80. Then b's expansion: d at 0.90; e at 0.70 is
	// below the weight floor.
	require.Len(t, items, 4)
	assert.Equal(t, []string{f.a, f.b, f.c, f.d},
		[]string{items[0].NodeID, items[1].NodeID, items[2].NodeID, items[3].NodeID})

	assert.Equal(t, ProvenanceVector, items[0].Provenance)
	assert.Equal(t, ProvenanceVector, items[1].Provenance)
	assert.Equal(t, ProvenanceGraphExpansion, items[2].Provenance)
	assert.Equal(t, ProvenanceGraphExpansion, items[3].Provenance)
	assert.Equal(t, f.a, items[2].SeedID)
	assert.Equal(t, f.b, items[3].SeedID)
	assert.InDelta(t, 0.80, items[2].EdgeWeight, 1e-9)
	assert.InDelta(t, 0.90, items[3].EdgeWeight, 1e-9)

	seen := make(map[string]bool)
	for _, item := range items {
		assert.False(t, seen[item.NodeID], "node %s emitted twice", item.NodeID)
		seen[item.NodeID] = true
	}
}

func TestRetrieveMaxNeighboursCap(t *testing.T) {
	svc, st := newTestService(t)
	f := buildGraphFixture(t, st)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 1
	cfg.MaxNeighbours = 1
	cfg.MinEdgeWeight = 0.5
	items, err := svc.Retrieve(context.Background(), testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)

	// Seed a, then only its strongest neighbour b.
	require.Len(t, items, 2)
	assert.Equal(t, f.a, items[0].NodeID)
	assert.Equal(t, f.b, items[1].NodeID)
	assert.InDelta(t, 0.95, items[1].EdgeWeight, 1e-9)
}

func TestRetrieveSkipsArchivedExpansionNodes(t *testing.T) {
	svc, st := newTestService(t)
	f := buildGraphFixture(t, st)
	ctx := context.Background()

	archiveNode(t, st, f.c)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 1
	cfg.MinEdgeWeight = 0.5
	items, err := svc.Retrieve(ctx, testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)

	for _, item := range items {
		assert.NotEqual(t, f.c, item.NodeID, "archived nodes must not surface")
	}
}

func TestRetrieveHydratesChunkContent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedChunks(t, st, [][]float32{embed1536(1, 0)})
	_, err := svc.Build(ctx, testScope, DefaultBuildConfig())
	require.NoError(t, err)

	cfg := DefaultRetrieveConfig()
	cfg.HopLimit = 0
	items, err := svc.Retrieve(ctx, testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "full text of chunk 0", items[0].Content,
		"chunk nodes hydrate full text, not the stored preview")

	// Second retrieval serves from the hydration cache.
	items, err = svc.Retrieve(ctx, testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)
	assert.Equal(t, "full text of chunk 0", items[0].Content)
}

func TestRetrieveContentFallbacks(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// Non-chunk node: falls back to description.
	_, err := st.UpsertNode(ctx, store.Node{
		TenantID: "t1", ClientID: "c1", NodeKey: "desc", Type: store.NodeTypeWebPage,
		Name: "has description", Description: "a description", Embedding: embed1536(1, 0),
	})
	require.NoError(t, err)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 1
	cfg.HopLimit = 0
	items, err := svc.Retrieve(ctx, testScope, embed1536(1, 0), cfg)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a description", items[0].Content)

	// Without a description the name is the last resort.
	_, err = st.UpsertNode(ctx, store.Node{
		TenantID: "t1", ClientID: "c1", NodeKey: "nameonly", Type: store.NodeTypeImage,
		Name: "just a name", Embedding: embed1536(0, 1),
	})
	require.NoError(t, err)

	items, err = svc.Retrieve(ctx, testScope, embed1536(0, 1), cfg)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "just a name", items[0].Content)
}

func TestRetrieveRejectsInvalidConfig(t *testing.T) {
	svc, _ := newTestService(t)

	cfg := DefaultRetrieveConfig()
	cfg.TopK = 0
	_, err := svc.Retrieve(context.Background(), testScope, embed1536(1), cfg)
	require.Error(t, err)
}

func archiveNode(t *testing.T, st *store.SQLiteStore, nodeID string) {
	t.Helper()
	ctx := context.Background()
	n, err := st.GetNode(ctx, "t1", nodeID)
	require.NoError(t, err)
	n.Status = store.NodeStatusArchived
	_, err = st.UpsertNode(ctx, *n)
	require.NoError(t, err)
}
