// Package specingest parses heterogeneous spec sources (free text,
// register CSV, IP-XACT, rule-table CSV) into a uniform sequence of
// model.SpecClause. Unknown kinds fail construction.
package specingest

import (
	"fmt"

	"github.com/ulamai/formalchip/internal/model"
)

// Options is the untyped per-spec options mapping from config.SpecInput.
type Options map[string]interface{}

func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return def
}

// Load dispatches to the ingestor named by kind.
func Load(kind, path string, options Options) ([]model.SpecClause, error) {
	switch kind {
	case "text":
		return ParseTextSpec(path, options)
	case "register_csv":
		return ParseRegisterCSV(path, options)
	case "ipxact":
		return ParseIPXACT(path, options)
	case "rule_table":
		return ParseRuleTableCSV(path, options)
	default:
		return nil, model.Errorf("specs.kind", "unsupported spec kind %q", kind).WithFile(path)
	}
}
