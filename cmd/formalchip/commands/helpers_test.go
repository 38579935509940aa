package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/model"
)

func TestRelPathOrAbs(t *testing.T) {
	assert.Equal(t, "evidence/pack.tar.gz", relPathOrAbs("/run/r1", "/run/r1/evidence/pack.tar.gz"))
	assert.Equal(t, "", relPathOrAbs("/run/r1", ""))
	assert.Equal(t, "/elsewhere/pack.tar.gz", relPathOrAbs("/run/r1", "/elsewhere/pack.tar.gz"))
}

func TestLatestRunState_PicksMostRecentByStartedAt(t *testing.T) {
	workdir := t.TempDir()
	older := filepath.Join(workdir, "run-a")
	newer := filepath.Join(workdir, "run-b")
	require.NoError(t, os.MkdirAll(older, 0o755))
	require.NoError(t, os.MkdirAll(newer, 0o755))

	writeState(t, older, "run-a", time.Now().Add(-time.Hour))
	writeState(t, newer, "run-b", time.Now())

	dir, state, err := latestRunState(workdir)
	require.NoError(t, err)
	assert.Equal(t, newer, dir)
	assert.Equal(t, "run-b", state.RunID)
}

func writeState(t *testing.T, dir, runID string, startedAt time.Time) {
	t.Helper()
	state := model.RunState{RunID: runID, StartedAt: startedAt, Status: model.StatusPass}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), data, 0o644))
}
