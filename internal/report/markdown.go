package report

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const summaryTemplateText = `# FormalChip run {{.Summary.RunID}}

**Status:** {{.Summary.Status}}
**Iterations run:** {{.Summary.IterationsRun}}
**Bug found:** {{.Summary.BugFound}}

| Metric | Value |
|---|---|
| Failed properties | {{len .Summary.FailedProperties}} |
| Counterexample lines | {{.Summary.CounterexampleLines}} |
| Unsat-core lines | {{.Summary.UnsatCoreLines}} |
| Coverage hits | {{.Summary.CoverageHits}} |
| Artifacts collected | {{.Summary.ArtifactCount}} |
| Total duration (s) | {{printf "%.1f" .Summary.TotalDurationSeconds}} |

{{if .Summary.FailedProperties}}## Failed properties
{{range .Summary.FailedProperties}}- {{.}}
{{end}}{{end}}
## Gate verdict

| Check | Result |
|---|---|
| evidence_pack_present | {{.Gate.EvidencePackPresent}} |
| has_bug_or_coverage | {{.Gate.HasBugOrCoverage}} |
| run_completed | {{.Gate.RunCompleted}} |

**Overall: {{if .Gate.Passed}}PASSED{{else}}FAILED{{end}}**
`

var summaryTemplate = template.Must(template.New("summary").Parse(summaryTemplateText))

type markdownData struct {
	Summary Summary
	Gate    GateVerdict
}

// RenderMarkdown renders the summary+gate markdown report.
func RenderMarkdown(summary Summary, gate GateVerdict) (string, error) {
	var b strings.Builder
	if err := summaryTemplate.Execute(&b, markdownData{Summary: summary, Gate: gate}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteSummaryMarkdown writes summary.md under reportDir.
func WriteSummaryMarkdown(reportDir string, summary Summary, gate GateVerdict) (string, error) {
	rendered, err := RenderMarkdown(summary, gate)
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir, "summary.md")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(rendered), 0o644)
}
