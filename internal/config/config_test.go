package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TOML_Defaults(t *testing.T) {
	path := writeTemp(t, "formalchip.toml", `
[project]
rtl_files = ["rtl/top.sv"]
top_module = "top"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "top", cfg.Project.TopModule)
	assert.Equal(t, "clk", cfg.Project.Clock)
	assert.Equal(t, "rst_n", cfg.Project.Reset)
	assert.True(t, cfg.Project.ResetActiveLow)
	assert.Equal(t, "mock", cfg.Engine.Kind)
	assert.Equal(t, 3, cfg.Loop.MaxIterations)
	assert.True(t, filepath.IsAbs(cfg.Project.RTLFiles[0]))
}

func TestLoad_MissingTopModule(t *testing.T) {
	path := writeTemp(t, "formalchip.toml", `
[project]
rtl_files = ["rtl/top.sv"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project.top_module")
}

func TestLoad_MissingRTLFiles(t *testing.T) {
	path := writeTemp(t, "formalchip.toml", `
[project]
top_module = "top"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project.rtl_files")
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemp(t, "formalchip.yaml", `
project:
  rtl_files: ["rtl/top.sv"]
  top_module: top
  clock: clk
  reset: rst_n
engine:
  kind: mock
  pass_after: 2
loop:
  max_iterations: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.PassAfter)
	assert.Equal(t, 5, cfg.Loop.MaxIterations)
}

func TestLoad_ConstraintsRequireExpr(t *testing.T) {
	path := writeTemp(t, "formalchip.toml", `
[project]
rtl_files = ["rtl/top.sv"]
top_module = "top"

[[constraints.assumptions]]
name = "no_expr"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraints.assumptions[0].expr")
}

func TestLoad_SpecsAndLibraries(t *testing.T) {
	path := writeTemp(t, "formalchip.toml", `
[project]
rtl_files = ["rtl/top.sv"]
top_module = "top"

[[specs]]
kind = "text"
path = "spec.txt"

[[libraries]]
kind = "handshake"
req = "req"
ack = "ack"
bound = 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Specs, 1)
	assert.Equal(t, "text", cfg.Specs[0].Kind)
	require.Len(t, cfg.Libraries, 1)
	assert.Equal(t, "handshake", cfg.Libraries[0].Kind)
	assert.EqualValues(t, 4, cfg.Libraries[0].Options["bound"])
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "formalchip.ini", "project=1")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config extension")
}
