package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/internal/history"
	"github.com/ulamai/formalchip/internal/report"
)

// NewReportCmd prints the most recent run's summary.md, or with --list
// the project's run history from the SQLite index.
func NewReportCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the latest run's report, or list past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if list {
				store, err := history.Open(filepath.Join(cfg.Loop.Workdir, "history.db"))
				if err != nil {
					return err
				}
				defer store.Close()

				runs, err := store.ListRuns(cfg.Project.Name)
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Printf("%s\tstatus=%s\titerations=%d\tstarted=%s\n",
						r.RunID, r.Status, r.Iterations, r.StartedAt.Format("2006-01-02T15:04:05Z"))
				}
				return nil
			}

			runDir, state, err := latestRunState(cfg.Loop.Workdir)
			if err != nil {
				return err
			}

			mdPath := filepath.Join(runDir, "report", "summary.md")
			if data, err := os.ReadFile(mdPath); err == nil {
				fmt.Print(string(data))
				return nil
			}

			summary := report.BuildSummary(state)
			gate := report.BuildGate(state, summary, state.EvidencePack, cfg.KPI.RequireBugOrCoverage)
			rendered, err := report.RenderMarkdown(summary, gate)
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List past runs from the history index instead of showing a report")
	return cmd
}
