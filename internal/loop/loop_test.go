package loop

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestRun_MockEnginePassAfter2 is spec.md §8 boundary scenario 5: a mock
// engine with pass_after=2 and max_iterations=3 must terminate after
// iteration 2 with status=pass and exactly two recorded iterations.
func TestRun_MockEnginePassAfter2(t *testing.T) {
	dir := t.TempDir()
	rtlPath := filepath.Join(dir, "top.sv")
	require.NoError(t, os.WriteFile(rtlPath, []byte("module top(input clk, input rst_n, input req, output ack); endmodule"), 0o644))
	specPath := writeTemp(t, "spec.txt", "- If req then ack next cycle.\n")

	configPath := writeTemp(t, "formalchip.toml", "")
	cfg := &config.Config{
		ConfigPath: configPath,
		Project: config.ProjectConfig{
			Name: "boundary-proj", RTLFiles: []string{rtlPath}, TopModule: "top",
			Clock: "clk", Reset: "rst_n", ResetActiveLow: true,
		},
		LLM:    config.LLMConfig{Backend: "deterministic"},
		Engine: config.EngineConfig{Kind: "mock", PassAfter: 2},
		Loop:   config.LoopConfig{MaxIterations: 3, Workdir: filepath.Join(dir, "runs")},
		Specs:  []config.SpecInput{{Kind: "text", Path: specPath}},
	}

	state, runDir, err := Run(cfg, Options{})
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, model.StatusPass, state.Status)
	assert.Len(t, state.Iterations, 2)
	assert.DirExists(t, filepath.Join(runDir, "iter_01"))
	assert.DirExists(t, filepath.Join(runDir, "iter_02"))
	assert.NoDirExists(t, filepath.Join(runDir, "iter_03"))

	data, err := os.ReadFile(filepath.Join(runDir, "state.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "pass"`)
}

// TestRun_IterationsPrefixMonotonic is invariant 5: state.iterations'
// length at completion equals the number of iterations actually run.
func TestRun_IterationsPrefixMonotonic(t *testing.T) {
	dir := t.TempDir()
	rtlPath := filepath.Join(dir, "top.sv")
	require.NoError(t, os.WriteFile(rtlPath, []byte("module top(input clk, input rst_n); endmodule"), 0o644))
	specPath := writeTemp(t, "spec.txt", "- If req then ack next cycle.\n")
	configPath := writeTemp(t, "formalchip.toml", "")

	cfg := &config.Config{
		ConfigPath: configPath,
		Project: config.ProjectConfig{
			Name: "never-passes", RTLFiles: []string{rtlPath}, TopModule: "top",
			Clock: "clk", Reset: "rst_n", ResetActiveLow: true,
		},
		LLM:    config.LLMConfig{Backend: "deterministic"},
		Engine: config.EngineConfig{Kind: "mock", PassAfter: 99},
		Loop:   config.LoopConfig{MaxIterations: 3, Workdir: filepath.Join(dir, "runs")},
		Specs:  []config.SpecInput{{Kind: "text", Path: specPath}},
	}

	state, _, err := Run(cfg, Options{})
	require.NoError(t, err)
	assert.Len(t, state.Iterations, 3)
	assert.NotEqual(t, model.StatusPass, state.Status)
}

func TestNewRunID_SanitizesProjectName(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2026-07-31T10:00:00Z")
	require.NoError(t, err)

	id := NewRunID("My Project!!", ts)
	assert.Contains(t, id, "my_project")
	assert.Contains(t, id, "20260731T100000Z")
}
