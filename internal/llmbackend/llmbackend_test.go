package llmbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

func TestMake_Deterministic(t *testing.T) {
	backend, err := Make(config.LLMConfig{Backend: "deterministic"})
	require.NoError(t, err)
	_, ok := backend.(*DeterministicBackend)
	assert.True(t, ok)
}

func TestMake_CommandRequiresCommand(t *testing.T) {
	_, err := Make(config.LLMConfig{Backend: "command"})
	require.Error(t, err)
}

func TestMake_UnknownBackend(t *testing.T) {
	_, err := Make(config.LLMConfig{Backend: "mystery"})
	require.Error(t, err)
}

func TestDeterministicBackend_ProposeDelegatesToSynthesis(t *testing.T) {
	backend := &DeterministicBackend{}
	inputs := &model.SynthesisInputs{Clock: "clk", Reset: "rst_n", ResetActiveLow: true}
	inputs.KnownSignalList = []string{"clk", "rst_n", "req", "ack"}

	clause := model.SpecClause{ClauseID: "text_001", Text: "If req then ack next cycle.", Tags: []string{"text"}}
	out, err := backend.Propose([]model.SpecClause{clause}, nil, inputs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Body, "req |=> ack")
}

func TestDeterministicBackend_RepairWidensBoundedWindow(t *testing.T) {
	backend := &DeterministicBackend{}
	inputs := &model.SynthesisInputs{Clock: "clk", Reset: "rst_n", ResetActiveLow: true}

	current := []model.PropertyCandidate{
		{Name: "p1", Kind: model.KindAssert, Body: "@(posedge clk) disable iff(!rst_n) req |-> ##[0:4] ack;"},
	}
	feedback := model.IterationFeedback{Status: model.StatusFail, Summary: "p1 failed", FailedProps: []string{"p1"}}

	out, err := backend.Repair(current, feedback, nil, nil, inputs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out[0].Body, "##[0:6]")
	assert.Contains(t, out[0].Notes, "Auto-repaired")
	assert.Equal(t, model.KindAssume, out[1].Kind)
}

func TestDeterministicBackend_RepairRelaxesNextCycle(t *testing.T) {
	body := repairBody("@(posedge clk) disable iff(!rst_n) req |=> ack;")
	assert.Equal(t, "@(posedge clk) disable iff(!rst_n) req |-> ##[0:1] ack;", body)
}

func TestValidateCandidatesResponse(t *testing.T) {
	ok := map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{"name": "p1", "body": "assert;", "kind": "assert"},
		},
	}
	assert.NoError(t, validateCandidatesResponse(ok))

	bad := map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{"name": "p1"},
		},
	}
	assert.Error(t, validateCandidatesResponse(bad))
}
