package synthesis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

func metaString(md map[string]interface{}, key, def string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func metaInt(md map[string]interface{}, key string, def int) int {
	v, ok := md[key]
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
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// registerClauseToCandidates handles clauses derived from register table
// or IP-XACT ingestion: a reset-value assertion and, for read-only
// registers, a software-interface stability assertion.
func registerClauseToCandidates(clause model.SpecClause, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	md := clause.Metadata
	reg := strings.TrimSpace(metaString(md, "register", "reg"))
	width := metaInt(md, "width", 32)
	regSig := resolveSignalName(metaString(md, "signal", sanitizeID(reg)+"_q"), inputs)

	var candidates []model.PropertyCandidate
	known := inputs.KnownSignalsSet()

	if clause.HasTag("reset") {
		resetValue := metaString(md, "reset", "0")
		if missing := missingSignals(requiredSignals([]string{regSig}, inputs), known); len(missing) > 0 {
			candidates = append(candidates, fallbackAssert(clause, fmt.Sprintf("%s_%s_reset_placeholder", clause.ClauseID, regSig), inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Register signal mapping missing: "+strings.Join(missing, ", ")))
		} else {
			resetExpr := resetAsserted(inputs.Reset, inputs.ResetActiveLow)
			body := fmt.Sprintf("@(%s) %s |=> %s == %s;", clocking(inputs.Clock), resetExpr, regSig, constSV(resetValue, width))
			candidates = append(candidates, mkAssert(clause.ClauseID, fmt.Sprintf("%s_%s_reset", clause.ClauseID, regSig), body, clause.ClauseID, ""))
		}
	}

	if clause.HasTag("read_only") {
		swWeSignal := metaString(md, "sw_we_signal", "")
		swAddrSignal := metaString(md, "sw_addr_signal", "")
		swAddrWidth := metaInt(md, "sw_addr_width", 32)
		address := metaString(md, "address", "")

		if swWeSignal == "" || swAddrSignal == "" || address == "" {
			candidates = append(candidates, fallbackAssert(clause, fmt.Sprintf("%s_%s_ro_placeholder", clause.ClauseID, regSig), inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Read-only check requires sw_we_signal, sw_addr_signal, and register address mapping."))
		} else {
			swWeResolved := resolveSignalName(swWeSignal, inputs)
			swAddrResolved := resolveSignalName(swAddrSignal, inputs)
			required := []string{swWeResolved, swAddrResolved, regSig}
			if missing := missingSignals(requiredSignals(required, inputs), known); len(missing) > 0 {
				candidates = append(candidates, fallbackAssert(clause, fmt.Sprintf("%s_%s_ro_placeholder", clause.ClauseID, regSig), inputs.Clock, inputs.Reset, inputs.ResetActiveLow, "Read-only mapping references unknown signals: "+strings.Join(missing, ", ")))
			} else {
				addrConst := constSV(address, swAddrWidth)
				body := fmt.Sprintf("@(%s) %s (%s && (%s == %s)) |-> $stable(%s);",
					clocking(inputs.Clock), resetDisable(inputs.Reset, inputs.ResetActiveLow), swWeResolved, swAddrResolved, addrConst, regSig)
				candidates = append(candidates, mkAssert(clause.ClauseID, fmt.Sprintf("%s_%s_ro", clause.ClauseID, regSig), body, clause.ClauseID, ""))
			}
		}
	}

	return candidates
}

// ruleTableClauseToCandidates turns a condition/guarantee row into an
// implication assertion, applying signal aliases to both sides.
func ruleTableClauseToCandidates(clause model.SpecClause, inputs *model.SynthesisInputs) []model.PropertyCandidate {
	condition := applyAliases(strings.TrimSpace(metaString(clause.Metadata, "condition", "")), inputs)
	guarantee := applyAliases(strings.TrimSpace(metaString(clause.Metadata, "guarantee", "")), inputs)
	disable := resetDisable(inputs.Reset, inputs.ResetActiveLow)

	var body, note string
	if condition == "" || guarantee == "" {
		body = placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow)
		note = "Rule row missing condition or guarantee"
	} else {
		required := append(extractIdentifiers(condition), extractIdentifiers(guarantee)...)
		if missing := missingSignals(requiredSignals(sortedSet(required), inputs), inputs.KnownSignalsSet()); len(missing) > 0 {
			body = placeholderBody(inputs.Clock, inputs.Reset, inputs.ResetActiveLow)
			note = "Rule references unknown signals: " + strings.Join(missing, ", ")
		} else {
			body = fmt.Sprintf("@(%s) %s (%s) |-> (%s);", clocking(inputs.Clock), disable, condition, guarantee)
		}
	}

	return []model.PropertyCandidate{mkAssert(clause.ClauseID, clause.ClauseID+"_rule", body, clause.ClauseID, note)}
}
