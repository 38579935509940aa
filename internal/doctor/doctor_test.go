package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/config"
)

func baseConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	rtlPath := filepath.Join(dir, "top.sv")
	require.NoError(t, os.WriteFile(rtlPath, []byte("module top(input clk, input rst_n, input req, output ack); endmodule"), 0o644))
	specPath := filepath.Join(dir, "spec.txt")
	require.NoError(t, os.WriteFile(specPath, []byte("- If req then ack next cycle.\n"), 0o644))

	return &config.Config{
		Project: config.ProjectConfig{
			RTLFiles: []string{rtlPath}, TopModule: "top",
			Clock: "clk", Reset: "rst_n", ResetActiveLow: true,
		},
		LLM:    config.LLMConfig{Backend: "deterministic"},
		Engine: config.EngineConfig{Kind: "mock", PassAfter: 1},
		Specs:  []config.SpecInput{{Kind: "text", Path: specPath}},
	}
}

func TestRun_OKWithKnownSignalsAndMockEngine(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(t, dir)

	report, err := Run(cfg)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, report.Errors)
	assert.Greater(t, report.CandidateCount, 0)
}

func TestRun_MissingRTLFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(t, dir)
	cfg.Project.RTLFiles = []string{filepath.Join(dir, "missing.sv")}

	report, err := Run(cfg)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Errors[0], "RTL file not found")
}

func TestRun_ScriptedEngineWithoutCommandIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(t, dir)
	cfg.Engine = config.EngineConfig{Kind: "scripted"}

	report, err := Run(cfg)
	require.NoError(t, err)
	assert.False(t, report.OK())
}

// TestRun_IsDeterministicAcrossRepeatedCalls is spec.md §8's
// round-trip/idempotence property: running doctor twice on the same
// config yields identical reports.
func TestRun_IsDeterministicAcrossRepeatedCalls(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(t, dir)

	first, err := Run(cfg)
	require.NoError(t, err)
	second, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_UnknownLibraryKindWarns(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(t, dir)
	cfg.Libraries = []config.LibraryPattern{{Kind: "not_a_real_kind"}}

	report, err := Run(cfg)
	require.NoError(t, err)
	assert.True(t, report.OK())
	require.NotEmpty(t, report.Warnings)
}
