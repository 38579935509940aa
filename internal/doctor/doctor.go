// Package doctor runs FormalChip's preflight checks: config sanity,
// tooling availability, signal-catalogue coverage, and the placeholder
// ratio the synthesis pipeline would produce, all before a run ever
// starts a formal engine process.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ulamai/formalchip/internal/catalogue"
	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/loop"
	"github.com/ulamai/formalchip/internal/synthesis"
)

// knownLibraryKinds are the library pattern kinds the synthesis engine
// understands; anything else is a warning, not a fatal error.
var knownLibraryKinds = map[string]bool{
	"handshake": true, "fifo_safety": true, "reset_sequence": true,
	"inline": true, "canonical_10": true,
}

// Report is the full preflight result.
type Report struct {
	Errors             []string `json:"errors"`
	Warnings           []string `json:"warnings"`
	Infos              []string `json:"infos"`
	CandidateCount     int      `json:"candidate_count"`
	PlaceholderCount   int      `json:"placeholder_count"`
	PlaceholderClauses []string `json:"placeholder_clauses,omitempty"`
}

// OK reports whether the run is unblocked (no fatal errors).
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// placeholderRatioWarnAt is the threshold spec.md §4.9 names: a
// placeholder ratio at or above this is a warning, never an error —
// placeholders are findings, not failures (spec.md §9).
const placeholderRatioWarnAt = 0.3

// Run executes every preflight check against cfg.
func Run(cfg *config.Config) (*Report, error) {
	r := &Report{}

	checkFiles(cfg, r)
	checkEngineTooling(cfg, r)
	checkLLMTooling(cfg, r)

	initial, err := loop.BuildInitialSynthesis(cfg)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("synthesis pipeline failed: %v", err))
		return r, nil
	}

	r.CandidateCount = len(initial.Candidates)
	if r.CandidateCount == 0 {
		r.Errors = append(r.Errors, "synthesis produced zero candidates")
	}

	for _, c := range initial.Candidates {
		if synthesis.IsPlaceholderCandidate(c) {
			r.PlaceholderCount++
			if c.SourceClause != "" {
				r.PlaceholderClauses = append(r.PlaceholderClauses, c.SourceClause)
			}
		}
	}
	if r.CandidateCount > 0 {
		ratio := float64(r.PlaceholderCount) / float64(r.CandidateCount)
		if ratio >= placeholderRatioWarnAt {
			r.Warnings = append(r.Warnings, fmt.Sprintf("placeholder ratio %.0f%% meets or exceeds the %.0f%% warning threshold", ratio*100, placeholderRatioWarnAt*100))
		}
	}

	checkSignalCatalogue(cfg, r)
	checkTopModule(cfg, r)
	checkLibraryKinds(cfg, r)

	if len(r.Errors) == 0 {
		r.Infos = append(r.Infos, "no fatal preflight issues found")
	}
	return r, nil
}

func checkFiles(cfg *config.Config, r *Report) {
	for _, f := range cfg.Project.RTLFiles {
		if _, err := os.Stat(f); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("RTL file not found: %s", f))
		}
	}
	for _, spec := range cfg.Specs {
		if spec.Path == "" {
			continue
		}
		if _, err := os.Stat(spec.Path); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("spec file not found: %s", spec.Path))
		}
	}
}

func checkEngineTooling(cfg *config.Config, r *Report) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine.Kind)) {
	case "symbiyosys":
		command := cfg.Engine.Command
		if command == "" {
			command = "sby"
		}
		if _, err := exec.LookPath(command); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("symbiyosys binary %q not found on PATH", command))
		}
	case "scripted", "vcformal", "jasper", "questa":
		if cfg.Engine.Command == "" {
			r.Errors = append(r.Errors, "engine.command is required for a scripted engine kind")
		}
	}
}

func checkLLMTooling(cfg *config.Config, r *Report) {
	if strings.ToLower(strings.TrimSpace(cfg.LLM.Backend)) == "command" && cfg.LLM.Command == "" {
		r.Errors = append(r.Errors, "llm.command must be set when llm.backend is \"command\"")
	}
}

func checkSignalCatalogue(cfg *config.Config, r *Report) {
	known := catalogue.Collect(cfg.Project.RTLFiles)
	if !known[cfg.Project.Clock] {
		r.Warnings = append(r.Warnings, fmt.Sprintf("clock signal %q not found in the RTL signal catalogue", cfg.Project.Clock))
	}
	if !known[cfg.Project.Reset] {
		r.Warnings = append(r.Warnings, fmt.Sprintf("reset signal %q not found in the RTL signal catalogue", cfg.Project.Reset))
	}
}

func checkTopModule(cfg *config.Config, r *Report) {
	if cfg.Project.TopModule == "" {
		return
	}
	for _, f := range cfg.Project.RTLFiles {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		if strings.Contains(string(data), cfg.Project.TopModule) {
			return
		}
	}
	r.Errors = append(r.Errors, fmt.Sprintf("top module identifier %q not found in any RTL file", cfg.Project.TopModule))
}

func checkLibraryKinds(cfg *config.Config, r *Report) {
	for _, lib := range cfg.Libraries {
		kind := strings.ToLower(strings.TrimSpace(lib.Kind))
		if !knownLibraryKinds[kind] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("unknown library kind %q", lib.Kind))
		}
	}
}
