package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ulamai/formalchip/internal/model"
)

// Reindex rebuilds the history database at <workdir>/history.db from
// every run_id/state.json found directly under workdir, discarding
// whatever was there before. This is the documented recovery path when
// the index is stale, corrupt, or simply absent (spec.md §4.10 FULL:
// "crash consistency is not required").
func Reindex(workdir, project string) (int, error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return 0, fmt.Errorf("reading workdir %s: %w", workdir, err)
	}

	dbPath := filepath.Join(workdir, "history.db")
	_ = os.Remove(dbPath)
	_ = os.Remove(dbPath + "-wal")
	_ = os.Remove(dbPath + "-shm")

	store, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		statePath := filepath.Join(workdir, e.Name(), "state.json")
		data, err := os.ReadFile(statePath)
		if err != nil {
			continue
		}
		var state model.RunState
		if err := json.Unmarshal(data, &state); err != nil {
			continue
		}
		if err := store.RecordFromState(project, &state); err != nil {
			return count, fmt.Errorf("reindexing %s: %w", e.Name(), err)
		}
		count++
	}
	return count, nil
}
