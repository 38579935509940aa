// Package synthesis turns normalised spec clauses and reusable library
// patterns into candidate SVA properties.
package synthesis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

var (
	identifierRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)
	tokenRe      = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	baseTailRe   = regexp.MustCompile(`^[dhbo][0-9a-fxz_]+$`)
)

var svKeywords = map[string]bool{
	"if": true, "else": true, "begin": true, "end": true, "disable": true,
	"iff": true, "posedge": true, "negedge": true, "property": true,
	"assert": true, "assume": true, "cover": true, "and": true, "or": true,
	"not": true, "true": true, "false": true,
}

var svSystemFunctions = map[string]bool{
	"past": true, "rose": true, "fell": true, "stable": true, "changed": true,
	"sampled": true, "countones": true, "isunknown": true, "onehot": true,
	"onehot0": true, "clog2": true, "bits": true, "signed": true, "unsigned": true,
}

// SupportedLibraryKinds lists the reusable property templates the engine
// knows how to expand.
var SupportedLibraryKinds = map[string]bool{
	"handshake":       true,
	"fifo_safety":     true,
	"reset_sequence":  true,
	"inline":          true,
	"canonical_10":    true,
}

func sanitizeID(value string) string {
	out := strings.Trim(identifierRe.ReplaceAllString(value, "_"), "_")
	if out == "" {
		return "unnamed"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "p_" + out
	}
	return strings.ToLower(out)
}

func resetDisable(reset string, activeLow bool) string {
	if activeLow {
		return fmt.Sprintf("disable iff(!%s)", reset)
	}
	return fmt.Sprintf("disable iff(%s)", reset)
}

func resetAsserted(reset string, activeLow bool) string {
	if activeLow {
		return "!" + reset
	}
	return reset
}

func constSV(value string, width int) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(v, "0x") {
		return fmt.Sprintf("%d'h%s", width, v[2:])
	}
	if isDigits(v) {
		return fmt.Sprintf("%d'd%s", width, v)
	}
	if strings.Contains(v, "'") {
		return value
	}
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clocking(clock string) string {
	return "posedge " + clock
}

func mkProperty(propID, name, body, kind, sourceClause, notes string) model.PropertyCandidate {
	return model.PropertyCandidate{
		PropID:       propID,
		Name:         sanitizeID(name),
		Body:         body,
		Kind:         kind,
		SourceClause: sourceClause,
		Notes:        notes,
	}
}

func mkAssert(propID, name, body, sourceClause, notes string) model.PropertyCandidate {
	return mkProperty(propID, name, body, model.KindAssert, sourceClause, notes)
}

func placeholderBody(clock, reset string, activeLow bool) string {
	return fmt.Sprintf("@(%s) %s 1'b1 |-> 1'b1;", clocking(clock), resetDisable(reset, activeLow))
}

func missingSignals(required []string, known map[string]bool) []string {
	if len(known) == 0 {
		return nil
	}
	var missing []string
	for _, sig := range required {
		if !known[sig] {
			missing = append(missing, sig)
		}
	}
	return missing
}

func resolveSignalName(name string, inputs *model.SynthesisInputs) string {
	if v, ok := inputs.SignalAliases[name]; ok {
		return v
	}
	low := strings.ToLower(name)
	if v, ok := inputs.SignalAliases[low]; ok {
		return v
	}
	up := strings.ToUpper(name)
	if v, ok := inputs.SignalAliases[up]; ok {
		return v
	}
	return name
}

func applyAliases(expr string, inputs *model.SynthesisInputs) string {
	if len(inputs.SignalAliases) == 0 {
		return expr
	}
	return tokenRe.ReplaceAllStringFunc(expr, func(tok string) string {
		return resolveSignalName(tok, inputs)
	})
}

func requiredSignals(required []string, inputs *model.SynthesisInputs) []string {
	out := make([]string, len(required))
	for i, sig := range required {
		out[i] = resolveSignalName(sig, inputs)
	}
	return out
}

func fallbackAssert(clause model.SpecClause, name, clock, reset string, activeLow bool, reason string) model.PropertyCandidate {
	return mkAssert(clause.ClauseID, name, placeholderBody(clock, reset, activeLow), clause.ClauseID, reason)
}

func extractIdentifiers(expr string) []string {
	var out []string
	for _, tok := range tokenRe.FindAllString(expr, -1) {
		low := strings.ToLower(tok)
		if svKeywords[low] || svSystemFunctions[low] {
			continue
		}
		if baseTailRe.MatchString(low) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func sortedSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func optIntDefault(opts map[string]interface{}, key string, def int) int {
	v, ok := opts[key]
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
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

func optStringDefault(opts map[string]interface{}, key, def string) string {
	v, ok := opts[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
