package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/internal/kpi"
	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/report"
)

// NewGateCmd recomputes the KPI/gate verdict for the most recently
// completed run under the project's workdir and exits 0 if it passed,
// 2 otherwise (spec.md §6).
func NewGateCmd() *cobra.Command {
	var baselineCSV string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Recompute and print the gate verdict for the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			runDir, state, err := latestRunState(cfg.Loop.Workdir)
			if err != nil {
				return err
			}

			summary := report.BuildSummary(state)
			gate := report.BuildGate(state, summary, state.EvidencePack, cfg.KPI.RequireBugOrCoverage)

			kpiReport, err := kpi.Compute(runDir, state, kpi.BugOrCoverage{BugFound: summary.BugFound, CoverageHits: summary.CoverageHits}, baselineCSV, cfg.KPI)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(struct {
				Gate report.GateVerdict `json:"gate"`
				KPI  *kpi.Report        `json:"kpi"`
			}{gate, kpiReport}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if !gate.Passed {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baselineCSV, "baseline-csv", "", "Optional baseline-study CSV for the KPI report")
	return cmd
}

// latestRunState scans workdir for run directories (every entry holding
// a state.json) and returns the one with the latest started_at.
func latestRunState(workdir string) (string, *model.RunState, error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return "", nil, fmt.Errorf("reading workdir %s: %w", workdir, err)
	}

	var bestDir string
	var best *model.RunState
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		runDir := filepath.Join(workdir, e.Name())
		data, err := os.ReadFile(filepath.Join(runDir, "state.json"))
		if err != nil {
			continue
		}
		var state model.RunState
		if err := json.Unmarshal(data, &state); err != nil {
			continue
		}
		if best == nil || state.StartedAt.After(best.StartedAt) {
			s := state
			best = &s
			bestDir = runDir
		}
	}
	if best == nil {
		return "", nil, fmt.Errorf("no runs found under %s", workdir)
	}
	return bestDir, best, nil
}
