package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/model"
)

func sampleState() *model.RunState {
	return &model.RunState{
		RunID:  "proj-20260731T100000Z-ab12",
		Status: model.StatusFail,
		Iterations: []model.IterationRecord{
			{Index: 1, Status: model.StatusFail, FailedProps: []string{"p1"}, Counterexamples: []string{"cex line"}, DurationSeconds: 1.5},
			{Index: 2, Status: model.StatusFail, FailedProps: []string{"p1", "p2"}, CoverageHits: 2, ArtifactFiles: []string{"a.vcd"}, DurationSeconds: 2.5},
		},
	}
}

// TestBuildSummary_BugFound is spec.md §8 invariant 7: bug_found ⇔
// failed_property_count > 0 ∨ counterexample_lines > 0.
func TestBuildSummary_BugFound(t *testing.T) {
	s := BuildSummary(sampleState())
	assert.True(t, s.BugFound)
	assert.ElementsMatch(t, []string{"p1", "p2"}, s.FailedProperties)
	assert.Equal(t, 1, s.CounterexampleLines)
	assert.Equal(t, 2, s.CoverageHits)
	assert.Equal(t, 1, s.ArtifactCount)
	assert.InDelta(t, 4.0, s.TotalDurationSeconds, 0.001)
}

func TestBuildSummary_NoBugFound(t *testing.T) {
	state := &model.RunState{RunID: "r1", Status: model.StatusPass, Iterations: []model.IterationRecord{
		{Index: 1, Status: model.StatusPass},
	}}
	s := BuildSummary(state)
	assert.False(t, s.BugFound)
}

func TestBuildGate_EvidencePresenceIsPathDriven(t *testing.T) {
	summary := Summary{BugFound: true}
	state := &model.RunState{Status: model.StatusPass}

	g := BuildGate(state, summary, "", true)
	assert.False(t, g.EvidencePackPresent)
	assert.False(t, g.Passed)

	g = BuildGate(state, summary, "/tmp/evidence/pack.tar.gz", true)
	assert.True(t, g.EvidencePackPresent)
	assert.True(t, g.Passed)
}

func TestBuildGate_RequireBugOrCoverageVacuouslySatisfied(t *testing.T) {
	summary := Summary{BugFound: false, CoverageHits: 0}
	state := &model.RunState{Status: model.StatusPass}

	g := BuildGate(state, summary, "/tmp/pack.tar.gz", false)
	assert.True(t, g.HasBugOrCoverage)
	assert.True(t, g.Passed)
}

func TestWriteRunReport_WritesAllThree(t *testing.T) {
	dir := t.TempDir()
	completed := time.Now().UTC()
	state := sampleState()
	state.CompletedAt = &completed

	jsonPath, mdPath, gatePath, err := WriteRunReport(dir, state, filepath.Join(dir, "evidence.tar.gz"), true)
	require.NoError(t, err)

	for _, p := range []string{jsonPath, mdPath, gatePath} {
		_, statErr := os.Stat(p)
		assert.NoError(t, statErr)
	}

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "FormalChip run")
	assert.Contains(t, string(md), "Bug found")
}
