package synthesis

import (
	"strconv"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// dedupeName appends numeric suffixes until name is unique within seen,
// mutating seen as a side effect.
func dedupeName(name string, seen map[string]bool) string {
	candidate := name
	i := 2
	for seen[candidate] {
		candidate = name + "_" + strconv.Itoa(i)
		i++
	}
	seen[candidate] = true
	return candidate
}

// SynthesizeCandidates expands every spec clause and library pattern into
// property candidates, resolving name collisions by appending a numeric
// suffix in encounter order (clauses first, then libraries).
func SynthesizeCandidates(clauses []model.SpecClause, libraries []model.LibraryPattern, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	var out []model.PropertyCandidate
	seen := make(map[string]bool)

	for _, clause := range clauses {
		var props []model.PropertyCandidate
		switch {
		case clause.HasTag("register") || clause.HasTag("ipxact"):
			props = registerClauseToCandidates(clause, inputs)
		case clause.HasTag("rule_table"):
			props = ruleTableClauseToCandidates(clause, inputs)
		default:
			props = textClauseToCandidates(clause, inputs)
		}
		for _, prop := range props {
			prop.Name = dedupeName(prop.Name, seen)
			out = append(out, prop)
		}
	}

	for _, lib := range libraries {
		for _, prop := range libraryCandidates(lib, inputs) {
			prop.Name = dedupeName(prop.Name, seen)
			out = append(out, prop)
		}
	}

	return out
}

// SerializeSVA renders candidates as an `ifdef FORMAL`-guarded SystemVerilog
// file, one property declaration plus its assert/assume/cover directive
// per candidate.
func SerializeSVA(candidates []model.PropertyCandidate) string {
	var b strings.Builder
	b.WriteString("`ifdef FORMAL\n\n")
	for _, c := range candidates {
		b.WriteString("// FC_ID: " + c.PropID + "\n")
		if c.SourceClause != "" {
			b.WriteString("// SOURCE: " + c.SourceClause + "\n")
		}
		if c.Notes != "" {
			b.WriteString("// NOTE: " + c.Notes + "\n")
		}
		b.WriteString("property " + c.Name + ";\n")
		b.WriteString("  " + c.Body + "\n")
		b.WriteString("endproperty\n")
		b.WriteString(c.Kind + " property (" + c.Name + ");\n\n")
	}
	b.WriteString("`endif\n")
	return b.String()
}

// IsPlaceholderCandidate reports whether a candidate is a filler finding
// rather than a meaningfully synthesised property.
func IsPlaceholderCandidate(c model.PropertyCandidate) bool {
	return c.IsPlaceholder()
}

// OptimizeCandidates removes duplicate (kind, body) pairs and caps the
// number of placeholder candidates retained, preserving encounter order.
func OptimizeCandidates(candidates []model.PropertyCandidate, maxPlaceholders int) []model.PropertyCandidate {
	var out []model.PropertyCandidate
	type sig struct{ kind, body string }
	seen := make(map[sig]bool)
	placeholderCount := 0

	for _, c := range candidates {
		s := sig{c.Kind, strings.TrimSpace(c.Body)}
		if seen[s] {
			continue
		}
		seen[s] = true

		if IsPlaceholderCandidate(c) {
			if placeholderCount >= maxPlaceholders {
				continue
			}
			placeholderCount++
		}

		out = append(out, c)
	}
	return out
}
