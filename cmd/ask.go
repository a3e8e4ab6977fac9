package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chunkgraph/chunkgraph/internal/kg"
)

// askCmd answers a question from the knowledge graph.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the knowledge graph",
	Long: `Ask embeds the question, retrieves seed nodes plus one hop of graph
expansion, and synthesizes an answer with the configured chat model. When
the best match falls below the confidence threshold the sources are shown
without an LLM call.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		svc, _, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		askCfg := kg.AskConfig{
			Retrieve:            retrieveConfigFromApp(),
			ConfidenceThreshold: GetConfig().Retrieval.ConfidenceThreshold,
		}

		result, err := svc.Ask(cmd.Context(), currentScope(""), question, askCfg)
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}

		fmt.Println(result.Answer)
		if len(result.Sources) > 0 {
			fmt.Printf("\nSources (confidence %.2f):\n", result.Confidence)
			for i, src := range result.Sources {
				fmt.Printf("  [%d] %s (%s)\n", i+1, src.Name, src.Provenance)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
