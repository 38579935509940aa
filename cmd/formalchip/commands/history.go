package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/internal/history"
)

// NewHistoryCmd groups history-index maintenance subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Maintain the cross-run SQLite history index",
	}
	cmd.AddCommand(newHistoryReindexCmd())
	return cmd
}

// newHistoryReindexCmd rebuilds workdir/history.db from every run_id's
// state.json under workdir, the documented recovery path for a stale or
// corrupt index (spec.md §4.10 FULL).
func newHistoryReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the history index from state.json files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			count, err := history.Reindex(cfg.Loop.Workdir, cfg.Project.Name)
			if err != nil {
				return err
			}
			fmt.Printf("reindexed %d run(s) under %s\n", count, cfg.Loop.Workdir)
			return nil
		},
	}
}
