package loop

import (
	"github.com/ulamai/formalchip/internal/catalogue"
	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
	"github.com/ulamai/formalchip/internal/specingest"
	"github.com/ulamai/formalchip/internal/synthesis"
)

// DefaultMaxPlaceholders is the placeholder cap optimize_candidates
// applies when a run doesn't override it.
const DefaultMaxPlaceholders = 3

// InitialSynthesis is the read-only context the loop builds once at
// run start: the flattened clauses, library patterns, synthesis
// inputs, and the seed candidate set for iteration 1.
type InitialSynthesis struct {
	Clauses    []model.SpecClause
	Libraries  []model.LibraryPattern
	Inputs     *model.SynthesisInputs
	Candidates []model.PropertyCandidate
}

// LoadClauses runs every configured spec ingestor and concatenates the
// resulting clauses in config order.
func LoadClauses(cfg *config.Config) ([]model.SpecClause, error) {
	var out []model.SpecClause
	for _, spec := range cfg.Specs {
		clauses, err := specingest.Load(spec.Kind, spec.Path, specingest.Options(spec.Options))
		if err != nil {
			return nil, err
		}
		out = append(out, clauses...)
	}
	return out, nil
}

// librariesWithConstraints appends config.Constraints as synthetic
// inline libraries: assumptions become property_kind=assume, covers
// become property_kind=cover.
func librariesWithConstraints(cfg *config.Config) []model.LibraryPattern {
	libs := append([]model.LibraryPattern{}, cfg.AsModelLibraries()...)
	for _, a := range cfg.Constraints.Assumptions {
		libs = append(libs, constraintLibrary(a, model.KindAssume))
	}
	for _, c := range cfg.Constraints.Covers {
		libs = append(libs, constraintLibrary(c, model.KindCover))
	}
	return libs
}

func constraintLibrary(item config.ConstraintItem, kind string) model.LibraryPattern {
	options := map[string]interface{}{
		"id":            item.Name,
		"name":          item.Name,
		"expr":          item.Expr,
		"property_kind": kind,
	}
	if item.When != "" {
		options["when"] = item.When
	}
	if item.Note != "" {
		options["note"] = item.Note
	}
	return model.LibraryPattern{Kind: "inline", Options: options}
}

// buildSynthesisInputs scans the RTL catalogue, unions in clock/reset
// (spec.md §4.1: these never trigger missing-signal placeholders), and
// wires the configured signal aliases through.
func buildSynthesisInputs(cfg *config.Config) *model.SynthesisInputs {
	known := catalogue.Collect(cfg.Project.RTLFiles)
	known[cfg.Project.Clock] = true
	known[cfg.Project.Reset] = true

	names := make([]string, 0, len(known))
	for n := range known {
		names = append(names, n)
	}

	return &model.SynthesisInputs{
		Clock:           cfg.Project.Clock,
		Reset:           cfg.Project.Reset,
		ResetActiveLow:  cfg.Project.ResetActiveLow,
		KnownSignals:    known,
		KnownSignalList: names,
		SignalAliases:   cfg.Project.SignalAliases,
	}
}

// BuildInitialSynthesis assembles the read-only synthesis context for a
// run and synthesises (and optimizes) the seed candidate set for
// iteration 1.
func BuildInitialSynthesis(cfg *config.Config) (*InitialSynthesis, error) {
	clauses, err := LoadClauses(cfg)
	if err != nil {
		return nil, err
	}
	libraries := librariesWithConstraints(cfg)
	inputs := buildSynthesisInputs(cfg)

	candidates := synthesis.SynthesizeCandidates(clauses, libraries, inputs)
	candidates = synthesis.OptimizeCandidates(candidates, DefaultMaxPlaceholders)

	return &InitialSynthesis{
		Clauses:    clauses,
		Libraries:  libraries,
		Inputs:     inputs,
		Candidates: candidates,
	}, nil
}
