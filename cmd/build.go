package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildDocumentID string

// buildCmd runs a knowledge-graph build pass over embedded chunks.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the knowledge graph from embedded chunks",
	Long: `Build pages through the scope's embedded chunks, upserts one node per
chunk, and links nodes whose embeddings exceed the similarity threshold.
Rebuilding is idempotent: nodes and edges upsert by natural key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.Build(cmd.Context(), currentScope(buildDocumentID), buildConfigFromApp())
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildDocumentID, "document", "", "restrict the build to one document's chunks")
}
