package synthesis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

var (
	reIfThenNext  = regexp.MustCompile(`if\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+then\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+next\s+cycle`)
	reNeverAndB   = regexp.MustCompile(`never\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+and\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	reWithinCycle = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s+.*within\s+(\d+)\s+cycles\s+.*\b([a-zA-Z_][a-zA-Z0-9_]*)`)
	reResetLevel  = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s+should\s+be\s+(low|high)\s+right\s+after\s+reset`)
)

// textClauseToCandidates matches one of four literal phrasings against a
// free-text clause and falls back to a placeholder assertion when the
// text doesn't match a known pattern or references unknown signals.
func textClauseToCandidates(clause model.SpecClause, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	text := strings.TrimSpace(clause.Text)
	lower := strings.ToLower(text)
	disable := resetDisable(inputs.Reset, inputs.ResetActiveLow)
	known := inputs.KnownSignalsSet()

	if m := reIfThenNext.FindStringSubmatch(lower); m != nil {
		cond := resolveSignalName(m[1], inputs)
		cons := resolveSignalName(m[2], inputs)
		if missing := missingSignals(requiredSignals([]string{cond, cons}, inputs), known); len(missing) > 0 {
			return []model.PropertyCandidate{fallbackAssert(clause, clause.ClauseID+"_placeholder", inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Signals not found in RTL: "+strings.Join(missing, ", "))}
		}
		body := fmt.Sprintf("@(%s) %s %s |=> %s;", clocking(inputs.Clock), disable, cond, cons)
		return []model.PropertyCandidate{mkAssert(clause.ClauseID, fmt.Sprintf("%s_%s_implies_%s", clause.ClauseID, cond, cons), body, clause.ClauseID, "")}
	}

	if m := reNeverAndB.FindStringSubmatch(lower); m != nil {
		a := resolveSignalName(m[1], inputs)
		b := resolveSignalName(m[2], inputs)
		if missing := missingSignals(requiredSignals([]string{a, b}, inputs), known); len(missing) > 0 {
			return []model.PropertyCandidate{fallbackAssert(clause, clause.ClauseID+"_placeholder", inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Signals not found in RTL: "+strings.Join(missing, ", "))}
		}
		body := fmt.Sprintf("@(%s) %s !(%s && %s);", clocking(inputs.Clock), disable, a, b)
		return []model.PropertyCandidate{mkAssert(clause.ClauseID, fmt.Sprintf("%s_never_%s_%s", clause.ClauseID, a, b), body, clause.ClauseID, "")}
	}

	if m := reWithinCycle.FindStringSubmatch(lower); m != nil {
		req := resolveSignalName(m[1], inputs)
		bound, _ := strconv.Atoi(m[2])
		ack := resolveSignalName(m[3], inputs)
		if missing := missingSignals(requiredSignals([]string{req, ack}, inputs), known); len(missing) > 0 {
			return []model.PropertyCandidate{fallbackAssert(clause, clause.ClauseID+"_placeholder", inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Signals not found in RTL: "+strings.Join(missing, ", "))}
		}
		body := fmt.Sprintf("@(%s) %s %s |-> ##[0:%d] %s;", clocking(inputs.Clock), disable, req, bound, ack)
		return []model.PropertyCandidate{mkAssert(clause.ClauseID, fmt.Sprintf("%s_%s_to_%s_%d", clause.ClauseID, req, ack, bound), body, clause.ClauseID, "")}
	}

	if m := reResetLevel.FindStringSubmatch(lower); m != nil {
		sig := resolveSignalName(m[1], inputs)
		level := m[2]
		if missing := missingSignals(requiredSignals([]string{sig}, inputs), known); len(missing) > 0 {
			return []model.PropertyCandidate{fallbackAssert(clause, clause.ClauseID+"_placeholder", inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Signals not found in RTL: "+strings.Join(missing, ", "))}
		}
		expected := "1'b1"
		if level == "low" {
			expected = "1'b0"
		}
		resetExpr := resetAsserted(inputs.Reset, inputs.ResetActiveLow)
		body := fmt.Sprintf("@(%s) %s |=> (%s == %s);", clocking(inputs.Clock), resetExpr, sig, expected)
		return []model.PropertyCandidate{mkAssert(clause.ClauseID, fmt.Sprintf("%s_%s_reset_%s", clause.ClauseID, sig, level), body, clause.ClauseID, "")}
	}

	return []model.PropertyCandidate{fallbackAssert(clause, clause.ClauseID+"_placeholder", inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Unable to derive strict logic from clause: "+text)}
}
