package kg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

func TestPruneValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	params := store.DefaultPruneParams()
	params.EdgeStaleDays = 0
	_, err := svc.Prune(ctx, testScope, params)
	require.Error(t, err)

	params = store.DefaultPruneParams()
	params.KeepNodeEvidence = -1
	_, err = svc.Prune(ctx, testScope, params)
	require.Error(t, err)

	_, err = svc.Prune(ctx, Scope{TenantID: "t1"}, store.DefaultPruneParams())
	require.Error(t, err)
}

func TestPruneFreshGraphIsUntouched(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedChunks(t, st, scenarioEmbeddings())
	_, err := svc.Build(ctx, testScope, DefaultBuildConfig())
	require.NoError(t, err)

	result, err := svc.Prune(ctx, testScope, store.DefaultPruneParams())
	require.NoError(t, err)
	assert.Zero(t, result.EdgesArchived)
	assert.Zero(t, result.NodesArchived)
	assert.Zero(t, result.EdgeEvidenceDeleted)
	assert.Zero(t, result.NodeEvidenceDeleted)
}
