package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// GateVerdict is the boolean policy gate, independent of formal status:
// three checks, all must pass.
type GateVerdict struct {
	EvidencePackPresent bool            `json:"evidence_pack_present"`
	HasBugOrCoverage    bool            `json:"has_bug_or_coverage"`
	RunCompleted        bool            `json:"run_completed"`
	Passed              bool            `json:"passed"`
	Checks              map[string]bool `json:"checks"`
}

var completedStatuses = map[string]bool{
	model.StatusPass:    true,
	model.StatusFail:    true,
	model.StatusUnknown: true,
}

// BuildGate evaluates the three policy checks. has_bug_or_coverage is
// gated by requireBugOrCoverage: when the policy doesn't require a bug
// or coverage hit, that check is vacuously satisfied.
//
// evidencePackPath is the archive's path, predicted or actual: callers
// that haven't built the pack yet (run finalization builds reports
// before the pack, since the pack embeds the reports) pass the
// deterministic path the pack is about to be written to. A caller
// re-evaluating the gate from a completed RunState instead passes
// state.EvidencePack, which by then does exist on disk. Either way a
// non-empty path means the pack is or will be present; only an empty
// path is treated as absent (the path is not checked on disk).
func BuildGate(state *model.RunState, summary Summary, evidencePackPath string, requireBugOrCoverage bool) GateVerdict {
	evidencePresent := strings.TrimSpace(evidencePackPath) != ""

	hasBugOrCoverage := true
	if requireBugOrCoverage {
		hasBugOrCoverage = summary.BugFound || summary.CoverageHits > 0
	}

	runCompleted := completedStatuses[state.Status]

	g := GateVerdict{
		EvidencePackPresent: evidencePresent,
		HasBugOrCoverage:    hasBugOrCoverage,
		RunCompleted:        runCompleted,
	}
	g.Checks = map[string]bool{
		"evidence_pack_present": evidencePresent,
		"has_bug_or_coverage":   hasBugOrCoverage,
		"run_completed":         runCompleted,
	}
	g.Passed = evidencePresent && hasBugOrCoverage && runCompleted
	return g
}

// WriteGateJSON writes gate_verdict.json under reportDir.
func WriteGateJSON(reportDir string, verdict GateVerdict) (string, error) {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir, "gate_verdict.json")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}
