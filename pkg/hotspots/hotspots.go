// Package hotspots finds methods whose code quality metrics exceed
// configured thresholds and ranks them by their worst offending metric.
package hotspots

import (
	"slices"

	"github.com/Sumatoshi-tech/coverfang/pkg/model"
)

// Default thresholds per code quality metric.
const (
	DefaultCyclomaticComplexity = 15
	DefaultNPathComplexity      = 200
	DefaultCrapScore            = 15
)

// Thresholds maps a metric name to the value it must not exceed.
// Metrics without an entry are never exceeded.
type Thresholds map[string]float64

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		model.MetricCyclomaticComplexity: DefaultCyclomaticComplexity,
		model.MetricNPathComplexity:      DefaultNPathComplexity,
		model.MetricCrapScore:            DefaultCrapScore,
	}
}

// MetricStatus pairs a metric with whether it exceeded its threshold.
type MetricStatus struct {
	Metric   model.Metric
	Exceeded bool
}

// RiskHotspot is a method with at least one exceeded metric.
type RiskHotspot struct {
	Assembly     *model.Assembly
	Class        *model.Class
	MethodMetric *model.MethodMetric
	// StatusMetrics holds every code quality metric of the method, exceeded or not.
	StatusMetrics []MetricStatus
	// FileIndex is the zero-based position of the file within Class.Files().
	FileIndex int
}

// Rank returns the largest value among the exceeded metrics.
func (h *RiskHotspot) Rank() float64 {
	rank, found := 0.0, false

	for _, s := range h.StatusMetrics {
		if s.Exceeded && (!found || s.Metric.Value > rank) {
			rank, found = s.Metric.Value, true
		}
	}

	return rank
}

// AnalysisResult is the outcome of one analysis.
type AnalysisResult struct {
	// Hotspots are ordered by Rank descending; ties keep discovery order.
	Hotspots []RiskHotspot
	// CodeQualityMetricsAvailable reports whether any method carried a code
	// quality metric, even when none exceeded its threshold.
	CodeQualityMetricsAvailable bool
}

// Analyzer scans assemblies for risk hotspots.
type Analyzer struct {
	thresholds Thresholds
	disabled   bool
}

// NewAnalyzer creates an analyzer. A disabled analyzer always returns an empty result.
func NewAnalyzer(thresholds Thresholds, disabled bool) *Analyzer {
	return &Analyzer{thresholds: thresholds, disabled: disabled}
}

// Analyze walks assemblies, classes, files, and method metrics in order.
func (a *Analyzer) Analyze(assemblies []*model.Assembly) *AnalysisResult {
	result := &AnalysisResult{Hotspots: []RiskHotspot{}}

	if a.disabled {
		return result
	}

	for _, assembly := range assemblies {
		for _, class := range assembly.Classes() {
			for fileIndex, file := range class.Files() {
				for _, mm := range file.MethodMetrics() {
					statuses := a.evaluate(mm)
					if len(statuses) == 0 {
						continue
					}

					result.CodeQualityMetricsAvailable = true

					if !anyExceeded(statuses) {
						continue
					}

					result.Hotspots = append(result.Hotspots, RiskHotspot{
						Assembly:      assembly,
						Class:         class,
						MethodMetric:  mm,
						StatusMetrics: statuses,
						FileIndex:     fileIndex,
					})
				}
			}
		}
	}

	slices.SortStableFunc(result.Hotspots, func(x, y RiskHotspot) int {
		rx, ry := x.Rank(), y.Rank()

		switch {
		case rx > ry:
			return -1
		case rx < ry:
			return 1
		default:
			return 0
		}
	})

	return result
}

func (a *Analyzer) evaluate(mm *model.MethodMetric) []MetricStatus {
	quality := mm.MetricsOfType(model.MetricTypeCodeQuality)
	if len(quality) == 0 {
		return nil
	}

	statuses := make([]MetricStatus, 0, len(quality))

	for _, m := range quality {
		threshold, ok := a.thresholds[m.Name]
		statuses = append(statuses, MetricStatus{Metric: m, Exceeded: ok && m.Value > threshold})
	}

	return statuses
}

func anyExceeded(statuses []MetricStatus) bool {
	return slices.ContainsFunc(statuses, func(s MetricStatus) bool { return s.Exceeded })
}
