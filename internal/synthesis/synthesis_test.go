package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/model"
)

func baseInputs(known ...string) *model.SynthesisInputs {
	in := &model.SynthesisInputs{
		Clock:          "clk",
		Reset:          "rst_n",
		ResetActiveLow: true,
	}
	in.KnownSignalList = known
	in.KnownSignalsSet()
	return in
}

func TestTextClause_IfThenNextCycle(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack")
	clause := model.SpecClause{ClauseID: "text_001", Text: "If req then ack next cycle.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "@(posedge clk) disable iff(!rst_n) req |=> ack;", candidates[0].Body)
	assert.False(t, candidates[0].IsPlaceholder())
}

func TestTextClause_MissingSignalsFallsBackToPlaceholder(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req")
	clause := model.SpecClause{ClauseID: "text_002", Text: "If req then grant next cycle.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].IsPlaceholder())
	assert.Contains(t, candidates[0].Notes, "grant")
}

func TestTextClause_NeverAAndB(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack")
	clause := model.SpecClause{ClauseID: "text_003", Text: "Never req and ack.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "@(posedge clk) disable iff(!rst_n) !(req && ack);", candidates[0].Body)
}

func TestTextClause_WithinCycles(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack")
	clause := model.SpecClause{ClauseID: "text_004", Text: "req asserted within 5 cycles must see ack.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "@(posedge clk) disable iff(!rst_n) req |-> ##[0:5] ack;", candidates[0].Body)
}

func TestTextClause_ResetLevel(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "valid")
	clause := model.SpecClause{ClauseID: "text_005", Text: "valid should be low right after reset.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "@(posedge clk) !rst_n |=> (valid == 1'b0);", candidates[0].Body)
}

func TestRegisterClause_ResetAndReadOnly(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "status_q", "sw_we", "sw_addr")
	clause := model.SpecClause{
		ClauseID: "reg_001_reset",
		Text:     "Register STATUS resets to 0.",
		Tags:     []string{"register", "reset", "access", "read_only"},
		Metadata: map[string]interface{}{
			"register":       "STATUS",
			"reset":          "0",
			"width":          "32",
			"signal":         "status_q",
			"access":         "ro",
			"address":        "0x00",
			"sw_we_signal":   "sw_we",
			"sw_addr_signal": "sw_addr",
			"sw_addr_width":  32,
		},
	}

	candidates := SynthesizeCandidates([]model.SpecClause{clause}, nil, inputs)
	require.Len(t, candidates, 2)
	assert.Contains(t, candidates[0].Body, "status_q == 32'd0")
	assert.Contains(t, candidates[1].Body, "$stable(status_q)")
}

func TestCanonical10_ProducesTenProperties(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack", "push", "pop", "full", "empty", "level", "valid")
	lib := model.LibraryPattern{Kind: "canonical_10", Options: map[string]interface{}{
		"bound": 4, "level_max": "4", "level_width": 8,
	}}

	candidates := SynthesizeCandidates(nil, []model.LibraryPattern{lib}, inputs)
	require.Len(t, candidates, 10)

	coverCount := 0
	for _, c := range candidates {
		if c.Kind == model.KindCover {
			coverCount++
		}
	}
	assert.Equal(t, 1, coverCount)
}

func TestInlineLibrary_SignalAliases(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack")
	inputs.SignalAliases = map[string]string{"request": "req", "acknowledge": "ack"}
	lib := model.LibraryPattern{Kind: "inline", Options: map[string]interface{}{
		"expr": "request |-> acknowledge",
		"name": "req_ack_inline",
	}}

	candidates := SynthesizeCandidates(nil, []model.LibraryPattern{lib}, inputs)
	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].Body, "req |-> ack")
	assert.False(t, candidates[0].IsPlaceholder())
}

func TestSynthesizeCandidates_DedupesNames(t *testing.T) {
	inputs := baseInputs("clk", "rst_n", "req", "ack")
	c1 := model.SpecClause{ClauseID: "c1", Text: "If req then ack next cycle.", Tags: []string{"text"}}
	c2 := model.SpecClause{ClauseID: "c2", Text: "If req then ack next cycle.", Tags: []string{"text"}}

	candidates := SynthesizeCandidates([]model.SpecClause{c1, c2}, nil, inputs)
	require.Len(t, candidates, 2)
	assert.NotEqual(t, candidates[0].Name, candidates[1].Name)
}

func TestOptimizeCandidates_CapsPlaceholdersAndDedupes(t *testing.T) {
	// Distinct bodies, so the four placeholders survive (kind, body)
	// dedup and only the cap can reduce them.
	placeholder := func(clock string) model.PropertyCandidate {
		return model.PropertyCandidate{Kind: model.KindAssert, Body: "@(posedge " + clock + ") " + model.PlaceholderBody, Notes: "placeholder"}
	}
	real := model.PropertyCandidate{Kind: model.KindAssert, Body: "@(posedge clk) req |=> ack;"}
	dupe := real

	out := OptimizeCandidates([]model.PropertyCandidate{placeholder("clk_a"), placeholder("clk_b"), placeholder("clk_c"), placeholder("clk_d"), real, dupe}, 2)
	placeholderCount := 0
	realCount := 0
	for _, c := range out {
		if c.IsPlaceholder() {
			placeholderCount++
		} else {
			realCount++
		}
	}
	assert.Equal(t, 2, placeholderCount)
	assert.Equal(t, 1, realCount)
}

func TestSerializeSVA_WrapsInFormalIfdef(t *testing.T) {
	c := model.PropertyCandidate{PropID: "p1", Name: "p1", Body: "@(posedge clk) req |=> ack;", Kind: model.KindAssert, SourceClause: "text_001"}
	out := SerializeSVA([]model.PropertyCandidate{c})
	assert.Contains(t, out, "`ifdef FORMAL")
	assert.Contains(t, out, "`endif")
	assert.Contains(t, out, "// FC_ID: p1")
	assert.Contains(t, out, "// SOURCE: text_001")
	assert.Contains(t, out, "property p1;")
	assert.Contains(t, out, "assert property (p1);")
}
