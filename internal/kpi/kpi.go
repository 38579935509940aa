package kpi

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ulamai/formalchip/internal/config"
	"github.com/ulamai/formalchip/internal/model"
)

// Report is the full KPI record written to report/kpi.json.
type Report struct {
	FirstIterationProperties           PropertyMetrics `json:"first_iteration_property_metrics"`
	TimeToFirstMeaningfulPropertiesMin *float64        `json:"time_to_first_meaningful_properties_min,omitempty"`
	Baseline                           BaselineStudy   `json:"baseline_study"`
	MeetsTimeReductionTarget           bool            `json:"meets_time_reduction_target"`
	OverallSuccess                     bool            `json:"overall_success"`
}

// BugOrCoverage is the subset of a report.Summary the KPI layer needs,
// passed in directly rather than importing internal/report so the two
// packages stay free of a dependency cycle.
type BugOrCoverage struct {
	BugFound     bool
	CoverageHits int
}

// Compute builds the full KPI report for a completed run.
func Compute(runDir string, state *model.RunState, bc BugOrCoverage, baselineCSVPath string, policy config.KPIConfig) (*Report, error) {
	firstMetrics, err := firstIterationPropertyMetrics(runDir, state)
	if err != nil {
		return nil, err
	}

	timeToFirst, found, err := timeToFirstMeaningfulPropertiesMin(runDir, state)
	if err != nil {
		return nil, err
	}

	baseline, err := EvaluateBaselineStudy(baselineCSVPath)
	if err != nil {
		return nil, err
	}

	minReduction := policy.MinTimeReductionPercent
	meetsTarget := !baseline.Present || baseline.AverageReductionPercent >= minReduction

	overall := overallSuccess(bc, baseline, meetsTarget, policy)

	report := &Report{
		FirstIterationProperties: firstMetrics,
		Baseline:                 baseline,
		MeetsTimeReductionTarget: meetsTarget,
		OverallSuccess:           overall,
	}
	if found {
		report.TimeToFirstMeaningfulPropertiesMin = &timeToFirst
	}
	return report, nil
}

// overallSuccess fails if the policy requires a bug/coverage hit and
// none was found; otherwise, when a baseline is present, it additionally
// requires the time-reduction target to be met.
func overallSuccess(bc BugOrCoverage, baseline BaselineStudy, meetsTarget bool, policy config.KPIConfig) bool {
	if policy.RequireBugOrCoverage && !(bc.BugFound || bc.CoverageHits > 0) {
		return false
	}
	if baseline.Present {
		return meetsTarget
	}
	return true
}

// Write writes report/kpi.json under runDir and returns its path.
func Write(runDir string, report *Report) (string, error) {
	reportDir := filepath.Join(runDir, "report")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir, "kpi.json")
	return path, os.WriteFile(path, data, 0o644)
}
