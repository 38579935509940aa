package model

// RunContext is the per-iteration context handed to an engine adapter:
// everything it needs to render a script or set environment variables
// without reaching back into the loop or config package.
type RunContext struct {
	RunID          string
	RunDir         string
	Iteration      int
	RTLFiles       []string
	TopModule      string
	Clock          string
	Reset          string
	ResetActiveLow bool
}

// EngineRunInput bundles the run context with the candidate file and the
// candidates it contains, plus the iteration's scratch directory.
type EngineRunInput struct {
	Context       RunContext
	CandidateFile string
	Candidates    []PropertyCandidate
	IterationDir  string
}
