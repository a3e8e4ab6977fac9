package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/chunkgraph/chunkgraph/internal/store"
)

var pruneSchedule string

// pruneCmd archives stale graph elements and trims evidence history.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Archive stale graph elements and trim evidence",
	Long: `Prune archives edges unseen past the edge staleness window, archives
nodes that are both stale and below the minimum active degree, and trims
evidence rows per node/edge to the configured retention. Archival is a
status flip; a later build touching the same keys restores the elements.

With --schedule the command stays running and prunes on the given cron
expression.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := GetConfig()
		params := store.PruneParams{
			EdgeStaleDays:    cfg.Prune.EdgeStaleDays,
			NodeStaleDays:    cfg.Prune.NodeStaleDays,
			MinDegree:        cfg.Prune.MinDegree,
			KeepEdgeEvidence: cfg.Prune.KeepEdgeEvidence,
			KeepNodeEvidence: cfg.Prune.KeepNodeEvidence,
		}

		runOnce := func() error {
			result, err := svc.Prune(cmd.Context(), currentScope(""), params)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			return printJSON(result)
		}

		schedule := pruneSchedule
		if schedule == "" {
			schedule = cfg.Prune.Schedule
		}
		if schedule == "" {
			return runOnce()
		}

		logger := newLogger()
		c := cron.New()
		if _, err := c.AddFunc(schedule, func() {
			if err := runOnce(); err != nil {
				logger.Error("scheduled prune failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}

		logger.Info("prune scheduler running", "schedule", schedule)
		c.Start()
		defer c.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneSchedule, "schedule", "", "cron expression for periodic pruning (e.g. \"0 3 * * *\")")
}
