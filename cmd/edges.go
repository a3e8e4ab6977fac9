package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

var edgesDirection string

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Inspect graph edges",
}

var edgesListCmd = &cobra.Command{
	Use:   "list <node-id>",
	Short: "List a node's active edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		edges, err := st.NodeEdges(cmd.Context(), cfg.Tenant.TenantID, cfg.Tenant.ClientID, args[0], edgesDirection)
		if err != nil {
			return fmt.Errorf("list edges: %w", err)
		}

		fmt.Printf("%d edges:\n", len(edges))
		for _, e := range edges {
			fmt.Printf("  %s  %s -> %s  %s  w=%.4f\n", e.ID, e.SrcID, e.DstID, e.RelType, e.Weight)
		}
		return nil
	},
}

var edgesShowCmd = &cobra.Command{
	Use:   "show <edge-id>",
	Short: "Show one edge with its evidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		edge, err := st.GetEdge(cmd.Context(), cfg.Tenant.TenantID, args[0])
		if err != nil {
			return fmt.Errorf("get edge %s: %w", args[0], err)
		}
		if err := printJSON(edge); err != nil {
			return err
		}

		evidence, err := st.ListEdgeEvidence(cmd.Context(), cfg.Tenant.TenantID, edge.ID)
		if err != nil {
			return fmt.Errorf("list evidence: %w", err)
		}
		if len(evidence) > 0 {
			fmt.Printf("\nEvidence (%d):\n", len(evidence))
			for _, ev := range evidence {
				fmt.Printf("  chunk=%s score=%.2f %q\n", ev.ChunkID, ev.Score, ev.Quote)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(edgesCmd)
	edgesCmd.AddCommand(edgesListCmd, edgesShowCmd)

	edgesListCmd.Flags().StringVar(&edgesDirection, "direction", store.DirectionBoth, "edge direction: out, in or both")
}
