// Package engine adapts pluggable formal verification tools (a built-in
// mock, SymbiYosys, or any scripted command) behind one Run contract.
package engine

import (
	"strings"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

// Engine runs one iteration's property set against a formal tool.
type Engine interface {
	Name() string
	ToolVersion() string
	Run(input model.EngineRunInput) (model.FormalResult, error)
}

// Make constructs the engine named by cfg.Kind.
func Make(cfg config.EngineConfig) (Engine, error) {
	switch normalizeKind(cfg.Kind) {
	case "mock":
		return NewMockEngine(cfg.PassAfter), nil
	case "symbiyosys":
		return NewSymbiYosysEngine(cfg.Command, cfg.SBYFile, cfg.TimeoutS), nil
	case "scripted", "vcformal", "jasper", "questa":
		if cfg.Command == "" {
			return nil, model.Errorf("engine.command", "must be set when engine.kind is %q", normalizeKind(cfg.Kind))
		}
		return NewScriptedEngine(normalizeKind(cfg.Kind), cfg.Command, cfg.TimeoutS), nil
	default:
		return nil, model.Errorf("engine.kind", "unsupported engine kind %q", cfg.Kind)
	}
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
