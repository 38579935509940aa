package logparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulamai/formalchip/internal/model"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseLog_Passed(t *testing.T) {
	path := writeLog(t, "STATUS: PASSED\nall properties proven\n")
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPass, result.Status)
	assert.Empty(t, result.FailedProps)
}

func TestParseLog_FailedWithAssertionName(t *testing.T) {
	path := writeLog(t, "STATUS: FAILED\nassertion p1 failed\ncounterexample: req=1 ack=0 for 4 cycles\n")
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFail, result.Status)
	assert.Equal(t, []string{"p1"}, result.FailedProps)
	require.Len(t, result.Counterexamples, 1)
	assert.Contains(t, result.Counterexamples[0], "req=1")
}

func TestParseLog_ErrorWhenNoPassFailTokens(t *testing.T) {
	path := writeLog(t, "unexpected tool crash: segmentation fault\nerror code 11\n")
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, result.Status)
}

func TestCollectMatchingLines_CapsAtExcerptLimit(t *testing.T) {
	var content string
	for i := 0; i < 40; i++ {
		content += "unsat core entry\n"
	}
	path := writeLog(t, content)
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Len(t, result.UnsatCores, excerptCap)
}

// TestParseLog_NativeSBYFailureWithoutStatusBanner is the real `sby`
// output convention spec.md §4.6's fail tier names ("assert failed")
// with no "status:"/"done (" banner at all — it must classify as fail
// via the substring ladder, not fall through to the lone-token regex
// (which misses "failed" as a substring of "assert foo failed").
func TestParseLog_NativeSBYFailureWithoutStatusBanner(t *testing.T) {
	path := writeLog(t, "assert failed: p1\nTrace: engine_0/trace.vcd\n")
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFail, result.Status)
	assert.Equal(t, []string{"p1"}, result.FailedProps)
}

// TestClassifyStatus_TieredPrecedence exercises spec.md §4.6's full
// precedence ladder, one substring trigger per tier, in order.
func TestClassifyStatus_TieredPrecedence(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"status error", "STATUS: ERROR", model.StatusError},
		{"done error", "SBY 12 top: DONE (ERROR, rc=2)", model.StatusError},
		{"sby error", "SBY ERROR: unreadable top module", model.StatusError},
		{"status failed", "STATUS: FAILED", model.StatusFail},
		{"done fail", "SBY 12 top: DONE (FAIL, rc=1)", model.StatusFail},
		{"counterexample", "found a counterexample for p1", model.StatusFail},
		{"assert failed", "assert failed for p1", model.StatusFail},
		{"status passed", "STATUS: PASSED", model.StatusPass},
		{"done pass", "SBY 12 top: DONE (PASS, rc=0)", model.StatusPass},
		{"all properties proven", "all properties proven", model.StatusPass},
		{"success", "engine finished: success", model.StatusPass},
		{"status unknown", "STATUS: UNKNOWN", model.StatusUnknown},
		{"done unknown", "SBY 12 top: DONE (UNKNOWN, rc=3)", model.StatusUnknown},
		{"lone fallback fail", "something broke and it did not fail gracefully, fail", model.StatusFail},
		{"no signal at all", "tool started\ntool exited\n", model.StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyStatus(strings.ToLower(tc.text)))
		})
	}
}

// TestClassifyStatus_ErrorTierBeatsFailAndPassSubstrings confirms the
// error tier wins even when fail/pass substrings are also present later
// in the text, per spec.md §4.6's first-match-wins ordering.
func TestClassifyStatus_ErrorTierBeatsFailAndPassSubstrings(t *testing.T) {
	text := "STATUS: ERROR\nthe run also failed and then passed retrying"
	assert.Equal(t, model.StatusError, classifyStatus(strings.ToLower(text)))
}

// TestParseLog_CoverageHitsCountsCoverAndConfirmationWord is spec.md
// §4.6: coverage hits count lines containing "cover" and one of
// reached/passed/triggered/hit.
func TestParseLog_CoverageHitsCountsCoverAndConfirmationWord(t *testing.T) {
	path := writeLog(t, "STATUS: PASSED\n"+
		"cover point cp_req_ack reached\n"+
		"cover point cp_idle triggered\n"+
		"coverage summary: nothing else relevant\n")
	result, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CoverageHits)
}
