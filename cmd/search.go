package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchHopLimit int

// searchCmd retrieves graph context for a query without answer synthesis.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve graph context for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		svc, _, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		queryEmbedding, err := svc.EmbedQuery(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}

		retrieveCfg := retrieveConfigFromApp()
		if cmd.Flags().Changed("hops") {
			retrieveCfg.HopLimit = searchHopLimit
		}

		items, err := svc.Retrieve(cmd.Context(), currentScope(""), queryEmbedding, retrieveCfg)
		if err != nil {
			return fmt.Errorf("retrieve: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No results.")
			return nil
		}
		return printJSON(items)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchHopLimit, "hops", 1, "graph expansion hop limit (0 disables expansion)")
}
