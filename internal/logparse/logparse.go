// Package logparse turns raw formal-engine log text into a uniform
// model.FormalResult: status, failed property names, counterexample and
// unsat-core excerpts.
package logparse

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

// excerptCap bounds how many counterexample/unsat-core lines are kept per
// result, preventing a noisy log from bloating the iteration record.
const excerptCap = 30

var failNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)assert(?:ion)?\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+failed`),
	regexp.MustCompile(`(?i)assert(?:ion)?\s+failed\s*[:=]\s*([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`(?i)property\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+failed`),
	regexp.MustCompile(`(?i)property\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+violated`),
	regexp.MustCompile(`(?i)failed\s+property\s*[:=]\s*([a-zA-Z_][a-zA-Z0-9_]*)`),
}

var (
	loneErrorRe = regexp.MustCompile(`(?i)\berror\b`)
	loneFailRe  = regexp.MustCompile(`(?i)\bfail\b`)
	lonePassRe  = regexp.MustCompile(`(?i)\bpass\b`)
)

// coverageHitRe matches a line mentioning "cover" alongside one of the
// hit-confirming words spec.md §4.6 names.
var coverageHitRe = regexp.MustCompile(`(?i)cover.*\b(?:reached|passed|triggered|hit)\b|\b(?:reached|passed|triggered|hit)\b.*cover`)

func collectFailedNames(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range failNamePatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func collectMatchingLines(text string, needles ...string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		lo := strings.ToLower(line)
		for _, n := range needles {
			if strings.Contains(lo, n) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
	}
	if len(out) > excerptCap {
		out = out[:excerptCap]
	}
	return out
}

// countCoverageHits counts lines mentioning "cover" together with one of
// reached/passed/triggered/hit (spec.md §4.6).
func countCoverageHits(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if coverageHitRe.MatchString(line) {
			count++
		}
	}
	return count
}

func summarize(status string, failed, cex, unsat []string) string {
	pieces := []string{fmt.Sprintf("status=%s", status)}
	if len(failed) > 0 {
		pieces = append(pieces, fmt.Sprintf("failed=%d", len(failed)))
	}
	if len(cex) > 0 {
		pieces = append(pieces, fmt.Sprintf("counterexamples=%d", len(cex)))
	}
	if len(unsat) > 0 {
		pieces = append(pieces, fmt.Sprintf("unsat_hints=%d", len(unsat)))
	}
	return strings.Join(pieces, ", ")
}

// classifyStatus runs the tiered substring precedence ladder spec.md §4.6
// specifies over lowercased log text: error, then fail, then pass, then
// unknown, each on its first matching substring — falling back to a
// conservative lone-token scan (same precedence order) only when none of
// the thirteen named substrings appear anywhere in the log.
func classifyStatus(lower string) string {
	switch {
	case strings.Contains(lower, "status: error"),
		strings.Contains(lower, " done (error"),
		strings.Contains(lower, "sby error"):
		return model.StatusError
	case strings.Contains(lower, "status: failed"),
		strings.Contains(lower, " done (fail"),
		strings.Contains(lower, "counterexample"),
		strings.Contains(lower, "assert failed"):
		return model.StatusFail
	case strings.Contains(lower, "status: passed"),
		strings.Contains(lower, " done (pass"),
		strings.Contains(lower, "all properties proven"),
		strings.Contains(lower, "success"):
		return model.StatusPass
	case strings.Contains(lower, "status: unknown"),
		strings.Contains(lower, " done (unknown"):
		return model.StatusUnknown
	}

	switch {
	case loneErrorRe.MatchString(lower):
		return model.StatusError
	case loneFailRe.MatchString(lower):
		return model.StatusFail
	case lonePassRe.MatchString(lower):
		return model.StatusPass
	default:
		return model.StatusUnknown
	}
}

// ParseLog is the single function spec.md §4.6 names: it reads the
// engine log at logPath and derives a FormalResult via the tiered
// status ladder, deduplicated failed-property names, capped
// counterexample/unsat-core excerpts, and a coverage-hit count. Every
// engine adapter (mock, scripted, SymbiYosys) feeds its log through this
// one parser — there is no separate per-engine variant.
func ParseLog(logPath string) (model.FormalResult, error) {
	text, err := readLog(logPath)
	if err != nil {
		return model.FormalResult{}, err
	}
	lower := strings.ToLower(text)

	status := classifyStatus(lower)
	failed := collectFailedNames(text)
	cex := collectMatchingLines(text, "counterexample", "trace")
	unsat := collectMatchingLines(text, "unsat", "core")
	coverageHits := countCoverageHits(text)

	return model.FormalResult{
		Status:          status,
		Summary:         summarize(status, failed, cex, unsat),
		FailedProps:     failed,
		Counterexamples: cex,
		UnsatCores:      unsat,
		CoverageHits:    coverageHits,
	}, nil
}

func readLog(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading engine log %s: %w", path, err)
	}
	return string(data), nil
}
