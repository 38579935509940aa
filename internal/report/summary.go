// Package report derives the human- and machine-readable run summary,
// the policy gate verdict, and their on-disk triple (summary.json,
// summary.md, gate_verdict.json) from a completed model.RunState.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ulamai/formalchip/internal/model"
)

// Summary aggregates a run's iterations into the headline numbers an
// operator (or the gate/KPI layers) cares about.
type Summary struct {
	RunID                string   `json:"run_id"`
	Status               string   `json:"status"`
	IterationsRun        int      `json:"iterations_run"`
	FailedProperties     []string `json:"failed_properties"`
	CounterexampleLines  int      `json:"counterexample_lines"`
	UnsatCoreLines       int      `json:"unsat_core_lines"`
	CoverageHits         int      `json:"coverage_hits"`
	ArtifactCount        int      `json:"artifact_count"`
	TotalDurationSeconds float64  `json:"total_duration_s"`
	BugFound             bool     `json:"bug_found"`
}

// BuildSummary aggregates every iteration in state into a Summary.
// BugFound ⇔ failed_property_count > 0 ∨ counterexample_lines > 0
// (spec.md §8 invariant 7).
func BuildSummary(state *model.RunState) Summary {
	s := Summary{RunID: state.RunID, Status: state.Status, IterationsRun: len(state.Iterations)}

	failedSeen := make(map[string]bool)
	for _, it := range state.Iterations {
		for _, name := range it.FailedProps {
			if !failedSeen[name] {
				failedSeen[name] = true
				s.FailedProperties = append(s.FailedProperties, name)
			}
		}
		s.CounterexampleLines += len(it.Counterexamples)
		s.UnsatCoreLines += len(it.UnsatCores)
		s.CoverageHits += it.CoverageHits
		s.ArtifactCount += len(it.ArtifactFiles)
		s.TotalDurationSeconds += it.DurationSeconds
	}

	s.BugFound = len(s.FailedProperties) > 0 || s.CounterexampleLines > 0
	return s
}

// WriteSummaryJSON writes summary.json under reportDir.
func WriteSummaryJSON(reportDir string, summary Summary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir, "summary.json")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}
