// Package llmbackend supplies the propose/repair contract the loop calls
// against either a deterministic template backend or an external command.
package llmbackend

import (
	"strings"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

// Backend proposes an initial property set from spec clauses and library
// patterns, and repairs an existing set given iteration feedback.
type Backend interface {
	Propose(clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error)
	Repair(current []model.PropertyCandidate, feedback model.IterationFeedback, clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error)
}

// Make constructs the backend named by cfg.Backend.
func Make(cfg config.LLMConfig) (Backend, error) {
	switch normalizeBackendName(cfg.Backend) {
	case "deterministic":
		return &DeterministicBackend{}, nil
	case "command":
		if cfg.Command == "" {
			return nil, model.Errorf("llm.command", "must be set when llm.backend is \"command\"")
		}
		return NewCommandBackend(cfg.Command), nil
	default:
		return nil, model.Errorf("llm.backend", "unsupported backend %q", cfg.Backend)
	}
}

func normalizeBackendName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
