// Package cmd implements the chunkgraph CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "chunkgraph",
	Short:   "Build and query a similarity-linked knowledge graph over embedded text chunks.",
	Version: version,
	Long: `chunkgraph turns embedded text chunks into a knowledge graph: chunks become
nodes, cosine similarity above a threshold becomes weighted edges. Queries
seed from vector search and expand one hop through the graph.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.chunkgraph.yaml or $HOME/.chunkgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("tenant", "", "tenant scope for graph operations")
	rootCmd.PersistentFlags().String("client", "", "client scope for graph operations")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("tenant.tenantId", rootCmd.PersistentFlags().Lookup("tenant"))
	_ = viper.BindPFlag("tenant.clientId", rootCmd.PersistentFlags().Lookup("client"))
}
