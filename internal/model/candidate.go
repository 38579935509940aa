package model

import "strings"

const (
	KindAssert = "assert"
	KindAssume = "assume"
	KindCover  = "cover"
)

// PlaceholderBody is the trivial body emitted when a candidate's
// preconditions are unmet. Its presence (or the substring "placeholder"
// in Notes) marks the candidate as a placeholder finding, not a failure.
const PlaceholderBody = "1'b1 |-> 1'b1;"

// PropertyCandidate is a synthesised SVA property.
type PropertyCandidate struct {
	PropID       string `json:"prop_id"`
	Name         string `json:"name"`
	Body         string `json:"body"`
	Kind         string `json:"kind"`
	SourceClause string `json:"source_clause,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// IsPlaceholder reports whether this candidate is a placeholder finding.
func (c PropertyCandidate) IsPlaceholder() bool {
	return strings.Contains(c.Body, "1'b1 |-> 1'b1") || strings.Contains(strings.ToLower(c.Notes), "placeholder")
}

// IterationFeedback is the uniform result of running the formal engine
// on one iteration's property set.
type IterationFeedback struct {
	Status          string   `json:"status"`
	Summary         string   `json:"summary"`
	FailedProps     []string `json:"failed_properties"`
	Counterexamples []string `json:"counterexamples"`
	UnsatCores      []string `json:"unsat_cores"`
	CoverageHits    int      `json:"coverage_hits"`
	ArtifactFiles   []string `json:"artifact_files"`
}

const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusUnknown = "unknown"
	StatusError   = "error"
)

// FormalResult is an alias kept distinct from IterationFeedback at the
// engine-adapter boundary: an engine adapter returns a FormalResult,
// which the loop folds into an IterationRecord alongside timing data.
// The fields are identical in shape to IterationFeedback by design —
// the log parser produces one directly from engine output.
type FormalResult = IterationFeedback
