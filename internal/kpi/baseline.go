package kpi

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const baselinePrefix = "baseline_minutes"
const formalchipPrefix = "formalchip_minutes"

// parseFloat is a tolerant float parser for baseline-study CSV cells:
// blank cells and parse failures are reported via ok=false rather than
// an error, since a malformed cell should drop that row's reduction,
// not abort the whole study.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BaselineStudy is the result of diffing a baseline CSV against
// FormalChip's own recorded minutes.
type BaselineStudy struct {
	Present                 bool    `json:"present"`
	RowsConsidered          int     `json:"rows_considered"`
	AverageReductionPercent float64 `json:"average_reduction_percent"`
}

// EvaluateBaselineStudy reads a CSV whose header row carries one or more
// baseline_minutes<suffix>/formalchip_minutes<suffix> column pairs,
// computes ((b - p) / b) * 100 per row (only where b > 0), and averages
// across every pair in every row.
func EvaluateBaselineStudy(path string) (BaselineStudy, error) {
	if path == "" {
		return BaselineStudy{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return BaselineStudy{}, fmt.Errorf("opening baseline study %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return BaselineStudy{}, fmt.Errorf("reading baseline study %s: %w", path, err)
	}
	if len(rows) < 2 {
		return BaselineStudy{Present: true}, nil
	}

	header := rows[0]
	pairs := baselineColumnPairs(header)
	if len(pairs) == 0 {
		return BaselineStudy{Present: true}, nil
	}

	var total float64
	count := 0
	for _, row := range rows[1:] {
		for _, p := range pairs {
			if p.baselineIdx >= len(row) || p.formalchipIdx >= len(row) {
				continue
			}
			b, bOK := parseFloat(row[p.baselineIdx])
			fc, fcOK := parseFloat(row[p.formalchipIdx])
			if !bOK || !fcOK || b <= 0 {
				continue
			}
			total += ((b - fc) / b) * 100
			count++
		}
	}

	study := BaselineStudy{Present: true, RowsConsidered: count}
	if count > 0 {
		study.AverageReductionPercent = total / float64(count)
	}
	return study, nil
}

type columnPair struct {
	baselineIdx   int
	formalchipIdx int
}

// baselineColumnPairs matches every "baseline_minutes<suffix>" header to
// its "formalchip_minutes<suffix>" counterpart.
func baselineColumnPairs(header []string) []columnPair {
	indexOf := make(map[string]int, len(header))
	for i, h := range header {
		indexOf[normalizeColumnKey(h)] = i
	}

	var pairs []columnPair
	for key, idx := range indexOf {
		if !strings.HasPrefix(key, baselinePrefix) {
			continue
		}
		suffix := strings.TrimPrefix(key, baselinePrefix)
		counterpart := formalchipPrefix + suffix
		if fcIdx, ok := indexOf[counterpart]; ok {
			pairs = append(pairs, columnPair{baselineIdx: idx, formalchipIdx: fcIdx})
		}
	}
	return pairs
}
