package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

func TestMake_Mock(t *testing.T) {
	e, err := Make(config.EngineConfig{Kind: "mock", PassAfter: 2})
	require.NoError(t, err)
	assert.Equal(t, "mock", e.Name())
}

func TestMake_UnsupportedKind(t *testing.T) {
	_, err := Make(config.EngineConfig{Kind: "nope"})
	require.Error(t, err)
}

func TestMake_ScriptedRequiresCommand(t *testing.T) {
	_, err := Make(config.EngineConfig{Kind: "scripted"})
	require.Error(t, err)
}

func TestMake_VendorScriptedKinds(t *testing.T) {
	for _, kind := range []string{"vcformal", "jasper", "questa"} {
		e, err := Make(config.EngineConfig{Kind: kind, Command: kind + " run"})
		require.NoError(t, err)
		assert.Equal(t, kind, e.Name())
	}
}

func TestMake_VendorScriptedKindsRequireCommand(t *testing.T) {
	for _, kind := range []string{"vcformal", "jasper", "questa"} {
		_, err := Make(config.EngineConfig{Kind: kind})
		require.Error(t, err)
	}
}

func TestMockEngine_FailsBeforePassAfterThenPasses(t *testing.T) {
	e := NewMockEngine(2)
	dir := t.TempDir()

	input := model.EngineRunInput{
		Context:      model.RunContext{Iteration: 0},
		IterationDir: filepath.Join(dir, "iter0"),
		Candidates:   []model.PropertyCandidate{{Name: "p1"}},
	}
	result, err := e.Run(input)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFail, result.Status)
	assert.Contains(t, result.FailedProps, "p1")

	input.Context.Iteration = 2
	input.IterationDir = filepath.Join(dir, "iter2")
	result, err = e.Run(input)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPass, result.Status)
}

func TestSymbiYosysEngine_DefaultSBYRendersFilesAndTop(t *testing.T) {
	rendered := defaultSBY("top_mod", "/tmp/props.sv", []string{"/tmp/a.v", "/tmp/b.v"})
	assert.Contains(t, rendered, "prep -top top_mod")
	assert.Contains(t, rendered, "read -formal /tmp/a.v")
	assert.Contains(t, rendered, "read -formal /tmp/props.sv")
}

func TestCollectSBYArtifacts_CopiesWitnessFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trace.vcd"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.log"), []byte("log"), 0o644))

	artifacts, err := collectSBYArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Contains(t, artifacts[0], "artifacts/witnesses")

	_, statErr := os.Stat(filepath.Join(dir, artifacts[0]))
	assert.NoError(t, statErr)
}

func TestScriptedEngine_MissingCommandErrors(t *testing.T) {
	e := NewScriptedEngine("custom", "", 5)
	_, err := e.Run(model.EngineRunInput{IterationDir: t.TempDir()})
	require.Error(t, err)
}
