package kg

import (
	"context"
	"fmt"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

// Prune archives stale edges, archives stale low-degree nodes, and trims
// evidence history. Archival is a status flip, never a delete, so a later
// build touching the same natural keys brings elements back.
func (s *Service) Prune(ctx context.Context, scope Scope, params store.PruneParams) (store.PruneResult, error) {
	if err := validate.Struct(scope); err != nil {
		return store.PruneResult{}, fmt.Errorf("invalid scope: %w", err)
	}
	if params.EdgeStaleDays <= 0 || params.NodeStaleDays <= 0 {
		return store.PruneResult{}, fmt.Errorf("staleness windows must be positive")
	}
	if params.MinDegree < 0 || params.KeepEdgeEvidence < 0 || params.KeepNodeEvidence < 0 {
		return store.PruneResult{}, fmt.Errorf("degree and evidence limits must be non-negative")
	}

	result, err := s.store.Prune(ctx, scope.TenantID, scope.ClientID, params)
	if err != nil {
		return result, fmt.Errorf("prune graph: %w", err)
	}

	s.logger.Info("graph prune complete",
		"tenant_id", scope.TenantID, "client_id", scope.ClientID,
		"edges_archived", result.EdgesArchived, "nodes_archived", result.NodesArchived,
		"edge_evidence_deleted", result.EdgeEvidenceDeleted,
		"node_evidence_deleted", result.NodeEvidenceDeleted)
	return result, nil
}
