// Package kpi computes the per-run KPI report: first-iteration property
// metrics, time-to-first-meaningful-properties, and (when a baseline
// study CSV is supplied) the average time-reduction percentage against
// a pre-FormalChip baseline.
package kpi

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ulamai/formalchip/internal/model"
)

var propertyLineRe = regexp.MustCompile(`(?m)^property `)
var placeholderNoteRe = regexp.MustCompile(`(?mi)^// NOTE:.*placeholder`)

// PropertyMetrics counts, within one property file, how many emitted
// properties are placeholders versus meaningfully synthesised.
type PropertyMetrics struct {
	Total       int `json:"total"`
	Placeholder int `json:"placeholder"`
	Meaningful  int `json:"meaningful"`
}

func countPropertyMetrics(propertyFile string) (PropertyMetrics, error) {
	data, err := os.ReadFile(propertyFile)
	if err != nil {
		return PropertyMetrics{}, fmt.Errorf("reading property file %s: %w", propertyFile, err)
	}
	text := string(data)
	total := len(propertyLineRe.FindAllStringIndex(text, -1))
	// Each chunk up to "endproperty" holds one property and the NOTE line
	// written ahead of it; a placeholder is flagged by its note or by the
	// trivial placeholder body.
	placeholder := 0
	for _, chunk := range strings.Split(text, "endproperty") {
		if !propertyLineRe.MatchString(chunk) {
			continue
		}
		if placeholderNoteRe.MatchString(chunk) || strings.Contains(chunk, model.PlaceholderBody) {
			placeholder++
		}
	}
	if placeholder > total {
		placeholder = total
	}
	return PropertyMetrics{Total: total, Placeholder: placeholder, Meaningful: total - placeholder}, nil
}

// firstIterationPropertyMetrics reads the first iteration's property
// file (resolved relative to runDir) and counts its properties.
func firstIterationPropertyMetrics(runDir string, state *model.RunState) (PropertyMetrics, error) {
	if len(state.Iterations) == 0 {
		return PropertyMetrics{}, nil
	}
	first := state.Iterations[0]
	return countPropertyMetrics(filepath.Join(runDir, first.PropertyFile))
}

// timeToFirstMeaningfulPropertiesMin returns the minutes from run start
// to the completion of the first iteration whose property file contains
// at least one meaningful (non-placeholder) property.
func timeToFirstMeaningfulPropertiesMin(runDir string, state *model.RunState) (float64, bool, error) {
	for _, it := range state.Iterations {
		metrics, err := countPropertyMetrics(filepath.Join(runDir, it.PropertyFile))
		if err != nil {
			return 0, false, err
		}
		if metrics.Meaningful > 0 {
			return it.CompletedAt.Sub(state.StartedAt).Minutes(), true, nil
		}
	}
	return 0, false, nil
}

// normalizeColumnKey lower-cases and trims a CSV header for comparison.
func normalizeColumnKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
