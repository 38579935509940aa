package loop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ulamai/formalchip/internal/model"
)

// Recorder owns the two journal files a run directory carries:
// state.json (rewritten in full after every iteration) and
// trace.jsonl (strictly append-only). The append-only write pattern
// mirrors the teacher's trace logger, generalized from text lines to
// one JSON object per line.
type Recorder struct {
	runDir    string
	traceFile *os.File
}

// NewRecorder opens (creating if absent) trace.jsonl under runDir.
func NewRecorder(runDir string) (*Recorder, error) {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(runDir, "trace.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening trace.jsonl: %w", err)
	}
	return &Recorder{runDir: runDir, traceFile: f}, nil
}

// Trace appends one event to trace.jsonl.
func (r *Recorder) Trace(event string, payload map[string]interface{}) error {
	line := model.TraceEvent{Timestamp: time.Now().UTC(), Event: event, Payload: payload}
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshaling trace event %q: %w", event, err)
	}
	data = append(data, '\n')
	_, err = r.traceFile.Write(data)
	return err
}

// SaveState rewrites state.json in full. Last-writer-wins on a crash
// mid-write is acceptable per spec.md §5: the preceding iteration's
// record was already durably serialised before this call began.
func (r *Recorder) SaveState(state *model.RunState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state.json: %w", err)
	}
	path := filepath.Join(r.runDir, "state.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state.json: %w", err)
	}
	return os.Rename(tmp, path)
}

// SnapshotConfig copies the raw config bytes verbatim to
// config.snapshot.<ext> inside the run directory.
func (r *Recorder) SnapshotConfig(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("reading config for snapshot: %w", err)
	}
	name := "config.snapshot" + filepath.Ext(configPath)
	dest := filepath.Join(r.runDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config snapshot: %w", err)
	}
	return dest, nil
}

// Close releases trace.jsonl.
func (r *Recorder) Close() error {
	if r.traceFile != nil {
		return r.traceFile.Close()
	}
	return nil
}
