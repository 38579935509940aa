package report

import (
	"path/filepath"

	"github.com/ulamai/formalchip/internal/model"
)

// WriteRunReport writes the full report/ directory: summary.json,
// summary.md, and gate_verdict.json. This is the triple-return variant
// spec.md §9 names as authoritative (superseding the two-return
// Python-original reporting.py).
func WriteRunReport(runDir string, state *model.RunState, evidencePackPath string, requireBugOrCoverage bool) (jsonPath, mdPath, gatePath string, err error) {
	reportDir := filepath.Join(runDir, "report")
	summary := BuildSummary(state)
	gate := BuildGate(state, summary, evidencePackPath, requireBugOrCoverage)

	jsonPath, err = WriteSummaryJSON(reportDir, summary)
	if err != nil {
		return "", "", "", err
	}
	mdPath, err = WriteSummaryMarkdown(reportDir, summary, gate)
	if err != nil {
		return "", "", "", err
	}
	gatePath, err = WriteGateJSON(reportDir, gate)
	if err != nil {
		return "", "", "", err
	}
	return jsonPath, mdPath, gatePath, nil
}
