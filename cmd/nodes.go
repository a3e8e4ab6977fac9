package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

var (
	nodesType   string
	nodesStatus string
	nodesLimit  int
	nodesOffset int
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Inspect graph nodes",
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List graph nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		nodes, total, err := st.ListNodes(cmd.Context(), cfg.Tenant.TenantID, cfg.Tenant.ClientID,
			nodesType, nodesStatus, nodesLimit, nodesOffset)
		if err != nil {
			return fmt.Errorf("list nodes: %w", err)
		}

		fmt.Printf("%d of %d nodes:\n", len(nodes), total)
		for _, n := range nodes {
			fmt.Printf("  %s  %-16s %-10s seen=%d  %s\n", n.ID, n.Type, n.Status, n.SeenCount, n.Name)
		}
		return nil
	},
}

var nodesShowCmd = &cobra.Command{
	Use:   "show <node-id>",
	Short: "Show one node with its evidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		node, err := st.GetNode(cmd.Context(), cfg.Tenant.TenantID, args[0])
		if err != nil {
			return fmt.Errorf("get node %s: %w", args[0], err)
		}
		// Embeddings are noise in terminal output.
		node.Embedding = nil
		if err := printJSON(node); err != nil {
			return err
		}

		evidence, err := st.ListNodeEvidence(cmd.Context(), cfg.Tenant.TenantID, node.ID)
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
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.AddCommand(nodesListCmd, nodesShowCmd)

	nodesListCmd.Flags().StringVar(&nodesType, "type", "", "filter by node type (e.g. Chunk, PDF)")
	nodesListCmd.Flags().StringVar(&nodesStatus, "status", store.NodeStatusActive, "filter by status (active, pending_linking, archived, or empty for all)")
	nodesListCmd.Flags().IntVar(&nodesLimit, "limit", 50, "page size")
	nodesListCmd.Flags().IntVar(&nodesOffset, "offset", 0, "page offset")
}
