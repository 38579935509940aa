package history

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

func TestStore_UpsertRunAndListRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	started := time.Now().UTC()
	require.NoError(t, store.UpsertRun(RunSummary{
		RunID: "r1", Project: "proj", Status: model.StatusPass,
		StartedAt: started, Iterations: 2, EvidencePack: "evidence/pack.tar.gz",
	}))
	require.NoError(t, store.UpsertIteration(IterationSummary{RunID: "r1", Index: 1, Status: model.StatusFail, DurationMs: 1500}))

	runs, err := store.ListRuns("proj")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].RunID)
	assert.Equal(t, model.StatusPass, runs[0].Status)
	assert.Equal(t, 2, runs[0].Iterations)

	completed := started.Add(10 * time.Minute)
	require.NoError(t, store.UpsertRun(RunSummary{
		RunID: "r1", Project: "proj", Status: model.StatusPass,
		StartedAt: started, CompletedAt: &completed, Iterations: 2,
	}))
	runs, err = store.ListRuns("proj")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].CompletedAt)
}

func TestReindex_RebuildsFromStateJSONFiles(t *testing.T) {
	workdir := t.TempDir()
	runDir := filepath.Join(workdir, "proj-20260731T100000Z-ab12")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	state := model.RunState{
		RunID: "proj-20260731T100000Z-ab12", Status: model.StatusPass, StartedAt: time.Now().UTC(),
		Iterations: []model.IterationRecord{{Index: 1, Status: model.StatusPass, DurationSeconds: 2.0}},
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "state.json"), data, 0o644))

	count, err := Reindex(workdir, "proj")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	store, err := Open(filepath.Join(workdir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns("proj")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunID, runs[0].RunID)
}
