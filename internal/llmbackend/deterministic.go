package llmbackend

import (
	"fmt"

	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/synthesis"
)

// DeterministicBackend is a template-backed fallback that emulates
// propose/repair without calling out to any external tool.
type DeterministicBackend struct{}

func (b *DeterministicBackend) Propose(clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error) {
	return synthesis.SynthesizeCandidates(clauses, libraries, inputs), nil
}

func (b *DeterministicBackend) Repair(current []model.PropertyCandidate, feedback model.IterationFeedback, clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) ([]model.PropertyCandidate, error) {
	if len(current) == 0 {
		return b.Propose(clauses, libraries, inputs)
	}

	failed := make(map[string]bool, len(feedback.FailedProps))
	for _, name := range feedback.FailedProps {
		failed[name] = true
	}

	out := make([]model.PropertyCandidate, 0, len(current)+1)
	for _, prop := range current {
		if failed[prop.Name] {
			prop.Body = repairBody(prop.Body)
			if prop.Notes != "" {
				prop.Notes += " | "
			}
			prop.Notes += fmt.Sprintf("Auto-repaired after feedback: %s", feedback.Summary)
		}
		out = append(out, prop)
	}

	if len(failed) > 0 {
		out = append(out, model.PropertyCandidate{
			PropID: fmt.Sprintf("repair_assume_%d", len(out)+1),
			Name:   fmt.Sprintf("repair_assume_reset_stable_%d", len(out)+1),
			Kind:   model.KindAssume,
			Body:   fmt.Sprintf("@(posedge %s) $changed(%s) |-> ##1 $stable(%s);", inputs.Clock, inputs.Reset, inputs.Reset),
			Notes:  "Constrains pathological reset oscillation seen in CEX",
		})
	}
	return out, nil
}
