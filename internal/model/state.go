package model

import "time"

// IterationRecord is one entry in RunState.Iterations: everything in
// IterationFeedback plus the per-iteration artifacts and timing.
type IterationRecord struct {
	Index           int       `json:"index"`
	PropertyFile    string    `json:"property_file"`
	EngineLog       string    `json:"engine_log"`
	Status          string    `json:"status"`
	Summary         string    `json:"summary"`
	FailedProps     []string  `json:"failed_properties"`
	Counterexamples []string  `json:"counterexamples"`
	UnsatCores      []string  `json:"unsat_cores"`
	CoverageHits    int       `json:"coverage_hits"`
	ArtifactFiles   []string  `json:"artifact_files"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds float64   `json:"duration_s"`
}

// FromFeedback fills in the IterationFeedback-shaped fields of a record.
func (r *IterationRecord) FromFeedback(f IterationFeedback) {
	r.Status = f.Status
	r.Summary = f.Summary
	r.FailedProps = f.FailedProps
	r.Counterexamples = f.Counterexamples
	r.UnsatCores = f.UnsatCores
	r.CoverageHits = f.CoverageHits
	r.ArtifactFiles = f.ArtifactFiles
}

// RunState is the append-only (per-iteration) journal for one run,
// rewritten in full to state.json after every iteration.
type RunState struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Status       string            `json:"status"`
	ConfigPath   string            `json:"config_path"`
	ToolVersions map[string]string `json:"tool_versions,omitempty"`
	Iterations   []IterationRecord `json:"iterations"`
	EvidencePack string            `json:"evidence_pack,omitempty"`
	Reports      map[string]string `json:"reports,omitempty"`
}

// TraceEvent is one line of the append-only trace.jsonl journal.
type TraceEvent struct {
	Timestamp time.Time              `json:"ts"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
