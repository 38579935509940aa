package synthesis

import (
	"fmt"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// inlineLibraryCandidate expands a user-authored `expr` (optionally guarded
// by a `when` condition) into a single assert/assume/cover property.
func inlineLibraryCandidate(pattern model.LibraryPattern, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	o := pattern.Options
	expr := applyAliases(strings.TrimSpace(optStringDefault(o, "expr", "")), inputs)
	if expr == "" {
		return []model.PropertyCandidate{mkAssert("lib_inline", optStringDefault(o, "name", "lib_inline_placeholder"),
			placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "", "Inline property requires `expr`")}
	}

	when := applyAliases(strings.TrimSpace(optStringDefault(o, "when", "")), inputs)
	required := extractIdentifiers(expr)
	if when != "" {
		required = append(required, extractIdentifiers(when)...)
	}

	if missing := missingSignals(requiredSignals(sortedSet(required), inputs), inputs.KnownSignalsSet()); len(missing) > 0 {
		return []model.PropertyCandidate{mkAssert("lib_inline", optStringDefault(o, "name", "lib_inline_placeholder"),
			placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "", "Inline property references unknown signals: "+strings.Join(missing, ", "))}
	}

	disable := resetDisable(inputs.Reset, inputs.ResetActiveLow)
	var body string
	if when != "" {
		body = fmt.Sprintf("@(%s) %s (%s) |-> (%s);", clocking(inputs.Clock), disable, when, expr)
	} else {
		body = fmt.Sprintf("@(%s) %s (%s);", clocking(inputs.Clock), disable, expr)
	}

	kind := strings.ToLower(optStringDefault(o, "property_kind", model.KindAssert))
	switch kind {
	case model.KindAssert, model.KindAssume, model.KindCover:
	default:
		kind = model.KindAssert
	}

	return []model.PropertyCandidate{mkProperty(
		optStringDefault(o, "id", "lib_inline"),
		optStringDefault(o, "name", "lib_inline"),
		body,
		kind,
		"",
		optStringDefault(o, "note", ""),
	)}
}

type canonicalSpec struct {
	propID string
	name   string
	body   string
	kind   string
	note   string
}

// canonical10Candidates builds the ten-property pilot set: three
// handshake assertions, five FIFO safety/level assertions, one reset
// assertion and one coverage property.
func canonical10Candidates(pattern model.LibraryPattern, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	o := pattern.Options
	req := resolveSignalName(optStringDefault(o, "req", "req"), inputs)
	ack := resolveSignalName(optStringDefault(o, "ack", "ack"), inputs)
	push := resolveSignalName(optStringDefault(o, "push", "push"), inputs)
	pop := resolveSignalName(optStringDefault(o, "pop", "pop"), inputs)
	full := resolveSignalName(optStringDefault(o, "full", "full"), inputs)
	empty := resolveSignalName(optStringDefault(o, "empty", "empty"), inputs)
	level := resolveSignalName(optStringDefault(o, "level", "level"), inputs)
	levelMax := optStringDefault(o, "level_max", "4")
	valid := resolveSignalName(optStringDefault(o, "valid", "valid"), inputs)
	bound := optIntDefault(o, "bound", 4)
	levelWidth := optIntDefault(o, "level_width", 8)

	disable := resetDisable(inputs.Reset, inputs.ResetActiveLow)
	resetAssertedExpr := resetAsserted(inputs.Reset, inputs.ResetActiveLow)
	clk := clocking(inputs.Clock)

	specs := []canonicalSpec{
		{"c10_01_req_ack_within_bound", "c10_01_req_ack_within_bound",
			fmt.Sprintf("@(%s) %s %s |-> ##[0:%d] %s;", clk, disable, req, bound, ack),
			model.KindAssert, "Handshake eventual ack within bound."},
		{"c10_02_ack_has_req", "c10_02_ack_has_req",
			fmt.Sprintf("@(%s) %s %s |-> (%s || $past(%s));", clk, disable, ack, req, req),
			model.KindAssert, "Ack should correspond to a current or prior request."},
		{"c10_03_req_held_until_ack", "c10_03_req_held_until_ack",
			fmt.Sprintf("@(%s) %s (%s && !%s) |=> %s;", clk, disable, req, ack, req),
			model.KindAssert, "Request remains asserted until acknowledged."},
		{"c10_04_no_spurious_push_pop", "c10_04_no_spurious_push_pop",
			fmt.Sprintf("@(%s) %s !(%s && %s && %s);", clk, disable, push, pop, empty),
			model.KindAssert, "Avoid invalid simultaneous pop on empty while push/pop toggles."},
		{"c10_05_no_overflow", "c10_05_no_overflow",
			fmt.Sprintf("@(%s) %s !(%s && %s);", clk, disable, full, push),
			model.KindAssert, "FIFO overflow safety."},
		{"c10_06_no_underflow", "c10_06_no_underflow",
			fmt.Sprintf("@(%s) %s !(%s && %s);", clk, disable, empty, pop),
			model.KindAssert, "FIFO underflow safety."},
		{"c10_07_level_flag_empty", "c10_07_level_flag_empty",
			fmt.Sprintf("@(%s) %s (%s) |-> (%s == %d'd0);", clk, disable, empty, level, levelWidth),
			model.KindAssert, "Empty flag implies level == 0."},
		{"c10_08_level_flag_full", "c10_08_level_flag_full",
			fmt.Sprintf("@(%s) %s (%s) |-> (%s == %s);", clk, disable, full, level, constSV(levelMax, levelWidth)),
			model.KindAssert, "Full flag implies level == max."},
		{"c10_09_reset_valid_low", "c10_09_reset_valid_low",
			fmt.Sprintf("@(%s) %s |=> (%s == 1'b0);", clk, resetAssertedExpr, valid),
			model.KindAssert, "Reset safety on output valid."},
		{"c10_10_cover_req_ack_cycle", "c10_10_cover_req_ack_cycle",
			fmt.Sprintf("@(%s) %s %s ##[1:%d] %s;", clk, disable, req, bound, ack),
			model.KindCover, "Coverage: observe request-to-ack scenario."},
	}

	var out []model.PropertyCandidate
	known := inputs.KnownSignalsSet()
	for _, s := range specs {
		aliasedBody := applyAliases(s.body, inputs)
		required := extractIdentifiers(aliasedBody)
		if missing := missingSignals(requiredSignals(sortedSet(required), inputs), known); len(missing) > 0 {
			out = append(out, mkAssert(s.propID, s.name+"_placeholder",
				placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "",
				"canonical_10 missing signals: "+strings.Join(missing, ", ")))
			continue
		}
		out = append(out, mkProperty(s.propID, s.name, aliasedBody, s.kind, "", s.note))
	}
	return out
}

// libraryCandidates expands one configured library pattern into its
// candidate properties.
func libraryCandidates(pattern model.LibraryPattern, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	disable := resetDisable(inputs.Reset, inputs.ResetActiveLow)
	o := pattern.Options
	known := inputs.KnownSignalsSet()
	var candidates []model.PropertyCandidate

	switch strings.ToLower(pattern.Kind) {
	case "handshake":
		req := resolveSignalName(optStringDefault(o, "req", "req"), inputs)
		ack := resolveSignalName(optStringDefault(o, "ack", "ack"), inputs)
		bound := optIntDefault(o, "bound", 8)
		if missing := missingSignals(requiredSignals([]string{req, ack}, inputs), known); len(missing) > 0 {
			candidates = append(candidates, mkAssert(fmt.Sprintf("lib_hs_%s_%s", req, ack), fmt.Sprintf("lib_hs_%s_%s_placeholder", req, ack),
				placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "", "Handshake mapping missing signals: "+strings.Join(missing, ", ")))
		} else {
			body := fmt.Sprintf("@(%s) %s %s |-> ##[0:%d] %s;", clocking(inputs.Clock), disable, req, bound, ack)
			candidates = append(candidates, mkAssert(fmt.Sprintf("lib_hs_%s_%s", req, ack), fmt.Sprintf("lib_hs_%s_%s_eventual", req, ack),
				body, "", "Reusable handshake liveness/safety intent"))
		}

	case "fifo_safety":
		full := resolveSignalName(optStringDefault(o, "full", "fifo_full"), inputs)
		empty := resolveSignalName(optStringDefault(o, "empty", "fifo_empty"), inputs)
		push := resolveSignalName(optStringDefault(o, "push", "fifo_push"), inputs)
		pop := resolveSignalName(optStringDefault(o, "pop", "fifo_pop"), inputs)

		if missing := missingSignals(requiredSignals([]string{full, empty, push, pop}, inputs), known); len(missing) > 0 {
			candidates = append(candidates, mkAssert("lib_fifo_safety", "lib_fifo_safety_placeholder",
				placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "", "FIFO mapping missing signals: "+strings.Join(missing, ", ")))
		} else {
			candidates = append(candidates,
				mkAssert("lib_fifo_overflow", "lib_fifo_no_overflow",
					fmt.Sprintf("@(%s) %s !(%s && %s);", clocking(inputs.Clock), disable, full, push), "", "Prevent push when FIFO is full"),
				mkAssert("lib_fifo_underflow", "lib_fifo_no_underflow",
					fmt.Sprintf("@(%s) %s !(%s && %s);", clocking(inputs.Clock), disable, empty, pop), "", "Prevent pop when FIFO is empty"),
			)
		}

	case "reset_sequence":
		signal := resolveSignalName(optStringDefault(o, "signal", "valid"), inputs)
		value := optStringDefault(o, "value", "0")
		latency := optIntDefault(o, "latency", 1)

		if missing := missingSignals(requiredSignals([]string{signal}, inputs), known); len(missing) > 0 {
			candidates = append(candidates, mkAssert(fmt.Sprintf("lib_rst_%s", signal), fmt.Sprintf("lib_reset_seq_%s_placeholder", signal),
				placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow), "", "Reset-sequence signal missing: "+strings.Join(missing, ", ")))
		} else {
			resetAssertedExpr := resetAsserted(inputs.Reset, inputs.ResetActiveLow)
			body := fmt.Sprintf("@(%s) %s |=> ##[%d:%d] (%s == %s);", clocking(inputs.Clock), resetAssertedExpr, latency, latency, signal, value)
			candidates = append(candidates, mkAssert(fmt.Sprintf("lib_rst_%s", signal), fmt.Sprintf("lib_reset_seq_%s", signal), body, "", "Reset sequencing rule"))
		}

	case "inline":
		candidates = append(candidates, inlineLibraryCandidate(pattern, inputs)...)
	case "canonical_10":
		candidates = append(candidates, canonical10Candidates(pattern, inputs)...)
	}

	return candidates
}
