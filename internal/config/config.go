// Package config loads and validates the FormalChip project config
// (TOML, YAML, or JSON) and resolves every relative path against the
// config file's directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ulamai/formalchip/internal/model"
)

type ProjectConfig struct {
	Name             string            `toml:"name" yaml:"name" json:"name"`
	RTLFiles         []string          `toml:"rtl_files" yaml:"rtl_files" json:"rtl_files"`
	TopModule        string            `toml:"top_module" yaml:"top_module" json:"top_module"`
	Clock            string            `toml:"clock" yaml:"clock" json:"clock"`
	Reset            string            `toml:"reset" yaml:"reset" json:"reset"`
	ResetActiveLow   bool              `toml:"reset_active_low" yaml:"reset_active_low" json:"reset_active_low"`
	SignalAliases    map[string]string `toml:"signal_aliases" yaml:"signal_aliases" json:"signal_aliases"`
}

type LLMConfig struct {
	Backend  string `toml:"backend" yaml:"backend" json:"backend"`
	Model    string `toml:"model" yaml:"model" json:"model"`
	Command  string `toml:"command" yaml:"command" json:"command"`
	TimeoutS int    `toml:"timeout_s" yaml:"timeout_s" json:"timeout_s"`
}

type EngineConfig struct {
	Kind      string `toml:"kind" yaml:"kind" json:"kind"`
	Command   string `toml:"command" yaml:"command" json:"command"`
	SBYFile   string `toml:"sby_file" yaml:"sby_file" json:"sby_file"`
	TimeoutS  int    `toml:"timeout_s" yaml:"timeout_s" json:"timeout_s"`
	PassAfter int    `toml:"pass_after" yaml:"pass_after" json:"pass_after"`
}

type LoopConfig struct {
	MaxIterations int    `toml:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
	Workdir       string `toml:"workdir" yaml:"workdir" json:"workdir"`
}

type ConstraintItem struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Expr string `toml:"expr" yaml:"expr" json:"expr"`
	Kind string `toml:"-" yaml:"-" json:"-"`
	When string `toml:"when" yaml:"when" json:"when"`
	Note string `toml:"note" yaml:"note" json:"note"`
}

type ConstraintsConfig struct {
	Assumptions []ConstraintItem `toml:"assumptions" yaml:"assumptions" json:"assumptions"`
	Covers      []ConstraintItem `toml:"covers" yaml:"covers" json:"covers"`
}

type KPIConfig struct {
	MinTimeReductionPercent float64 `toml:"min_time_reduction_percent" yaml:"min_time_reduction_percent" json:"min_time_reduction_percent"`
	RequireBugOrCoverage    bool    `toml:"require_bug_or_coverage" yaml:"require_bug_or_coverage" json:"require_bug_or_coverage"`
}

type SpecInput struct {
	Kind    string                 `toml:"kind" yaml:"kind" json:"kind"`
	Path    string                 `toml:"path" yaml:"path" json:"path"`
	Options map[string]interface{} `toml:"-" yaml:"-" json:"-"`
}

type LibraryPattern struct {
	Kind    string                 `toml:"kind" yaml:"kind" json:"kind"`
	Options map[string]interface{} `toml:"-" yaml:"-" json:"-"`
}

// Config is the fully loaded, path-resolved FormalChip project config.
type Config struct {
	ConfigPath  string
	Project     ProjectConfig
	LLM         LLMConfig
	Engine      EngineConfig
	Loop        LoopConfig
	Constraints ConstraintsConfig
	KPI         KPIConfig
	Specs       []SpecInput
	Libraries   []LibraryPattern
}

func defaults() Config {
	return Config{
		Project: ProjectConfig{
			Name:           "formalchip-project",
			Clock:          "clk",
			Reset:          "rst_n",
			ResetActiveLow: true,
		},
		LLM: LLMConfig{
			Backend:  "deterministic",
			Model:    "formalchip-template-v1",
			TimeoutS: 60,
		},
		Engine: EngineConfig{
			Kind:      "mock",
			TimeoutS:  600,
			PassAfter: 1,
		},
		Loop: LoopConfig{
			MaxIterations: 3,
			Workdir:       ".formalchip/runs",
		},
		KPI: KPIConfig{
			MinTimeReductionPercent: 30.0,
			RequireBugOrCoverage:    true,
		},
	}
}

// rawDoc is the generic shape decoded before field-level resolution, so
// each spec/library entry's extra keys can be captured as Options.
type rawDoc struct {
	Project     ProjectConfig          `toml:"project" yaml:"project" json:"project"`
	LLM         LLMConfig              `toml:"llm" yaml:"llm" json:"llm"`
	Engine      EngineConfig           `toml:"engine" yaml:"engine" json:"engine"`
	Loop        LoopConfig             `toml:"loop" yaml:"loop" json:"loop"`
	Constraints ConstraintsConfig      `toml:"constraints" yaml:"constraints" json:"constraints"`
	KPI         KPIConfig              `toml:"kpi" yaml:"kpi" json:"kpi"`
	Specs       []map[string]interface{} `toml:"specs" yaml:"specs" json:"specs"`
	Libraries   []map[string]interface{} `toml:"libraries" yaml:"libraries" json:"libraries"`
}

// Load reads, decodes, path-resolves, and validates the config at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NewFieldError("config", "file not found").
				WithFile(abs).
				WithSuggestion("create a formalchip.toml or pass --config")
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	raw := rawDoc{
		Project: ProjectConfig{ResetActiveLow: true},
		KPI:     KPIConfig{RequireBugOrCoverage: true},
	}
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, model.NewFieldError("config", "invalid TOML: "+err.Error()).WithFile(abs)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, model.NewFieldError("config", "invalid JSON: "+err.Error()).WithFile(abs)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, model.NewFieldError("config", "invalid YAML: "+err.Error()).WithFile(abs)
		}
	default:
		return nil, model.Errorf("config", "unsupported config extension %q", ext).WithFile(abs)
	}

	base := filepath.Dir(abs)
	cfg := defaults()
	cfg.ConfigPath = abs

	if raw.Project.TopModule == "" {
		return nil, model.NewFieldError("project.top_module", "is required").WithFile(abs)
	}
	if len(raw.Project.RTLFiles) == 0 {
		return nil, model.NewFieldError("project.rtl_files", "is required").WithFile(abs).
			WithSuggestion("list one or more RTL source files under [project]")
	}

	cfg.Project = raw.Project
	cfg.Project.RTLFiles = resolveMany(base, raw.Project.RTLFiles)
	if cfg.Project.Clock == "" {
		cfg.Project.Clock = "clk"
	}
	if cfg.Project.Reset == "" {
		cfg.Project.Reset = "rst_n"
	}

	if raw.LLM.Backend != "" {
		cfg.LLM = raw.LLM
	}
	if cfg.LLM.Backend == "" {
		cfg.LLM.Backend = "deterministic"
	}

	cfg.Engine = raw.Engine
	if cfg.Engine.Kind == "" {
		cfg.Engine.Kind = "mock"
	}
	if cfg.Engine.TimeoutS == 0 {
		cfg.Engine.TimeoutS = 600
	}
	if cfg.Engine.PassAfter == 0 {
		cfg.Engine.PassAfter = 1
	}
	cfg.Engine.SBYFile = resolveOptional(base, raw.Engine.SBYFile)

	cfg.Loop = raw.Loop
	if cfg.Loop.MaxIterations == 0 {
		cfg.Loop.MaxIterations = 3
	}
	if cfg.Loop.Workdir == "" {
		cfg.Loop.Workdir = filepath.Join(base, ".formalchip", "runs")
	} else {
		cfg.Loop.Workdir = resolveOptional(base, cfg.Loop.Workdir)
	}

	assumptions, ferr := buildConstraints(raw.Constraints.Assumptions, "assume", "assumption", "assumptions")
	if ferr != nil {
		return nil, ferr.WithFile(abs)
	}
	covers, ferr := buildConstraints(raw.Constraints.Covers, "cover", "cover", "covers")
	if ferr != nil {
		return nil, ferr.WithFile(abs)
	}
	cfg.Constraints = ConstraintsConfig{Assumptions: assumptions, Covers: covers}

	cfg.KPI = raw.KPI
	if cfg.KPI.MinTimeReductionPercent == 0 {
		cfg.KPI.MinTimeReductionPercent = 30.0
	}

	specs, ferr := buildSpecs(raw.Specs, base)
	if ferr != nil {
		return nil, ferr.WithFile(abs)
	}
	cfg.Specs = specs

	cfg.Libraries = buildLibraries(raw.Libraries)

	return &cfg, nil
}

func resolveOptional(base, value string) string {
	if value == "" {
		return ""
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}

func resolveMany(base string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, resolveOptional(base, v))
	}
	return out
}

func buildConstraints(items []ConstraintItem, kind, namePrefix, fieldName string) ([]ConstraintItem, *model.FieldError) {
	out := make([]ConstraintItem, 0, len(items))
	for idx, item := range items {
		expr := strings.TrimSpace(item.Expr)
		if expr == "" {
			return nil, model.Errorf(fmt.Sprintf("constraints.%s[%d].expr", fieldName, idx), "is required")
		}
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", namePrefix, idx+1)
		}
		out = append(out, ConstraintItem{
			Name: name,
			Expr: expr,
			Kind: kind,
			When: strings.TrimSpace(item.When),
			Note: strings.TrimSpace(item.Note),
		})
	}
	return out, nil
}

func buildSpecs(raw []map[string]interface{}, base string) ([]SpecInput, *model.FieldError) {
	out := make([]SpecInput, 0, len(raw))
	for idx, entry := range raw {
		kind, _ := entry["kind"].(string)
		if kind == "" {
			kind = "text"
		}
		pathVal, ok := entry["path"]
		if !ok {
			return nil, model.Errorf(fmt.Sprintf("specs[%d].path", idx), "is required")
		}
		pathStr, _ := pathVal.(string)
		options := make(map[string]interface{}, len(entry))
		for k, v := range entry {
			if k == "kind" || k == "path" {
				continue
			}
			options[k] = v
		}
		out = append(out, SpecInput{
			Kind:    kind,
			Path:    resolveOptional(base, pathStr),
			Options: options,
		})
	}
	return out, nil
}

func buildLibraries(raw []map[string]interface{}) []LibraryPattern {
	out := make([]LibraryPattern, 0, len(raw))
	for _, entry := range raw {
		kind, _ := entry["kind"].(string)
		if kind == "" {
			kind = "unknown"
		}
		options := make(map[string]interface{}, len(entry))
		for k, v := range entry {
			if k == "kind" {
				continue
			}
			options[k] = v
		}
		out = append(out, LibraryPattern{Kind: kind, Options: options})
	}
	return out
}

// AsModelLibraries converts config-level library patterns into the
// model.LibraryPattern shape the synthesis engine consumes.
func (c *Config) AsModelLibraries() []model.LibraryPattern {
	out := make([]model.LibraryPattern, 0, len(c.Libraries))
	for _, l := range c.Libraries {
		out = append(out, model.LibraryPattern{Kind: l.Kind, Options: l.Options})
	}
	return out
}
