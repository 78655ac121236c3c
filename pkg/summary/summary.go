// Package summary turns a parser result and its hotspot analysis into export
// views and terminal tables.
package summary

import (
	"github.com/Sumatoshi-tech/coverfang/pkg/hotspots"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
)

// Report is the serializable view of one analysis run.
type Report struct {
	Parser                      string     `json:"parser"                         yaml:"parser"`
	SupportsBranchCoverage      bool       `json:"supports_branch_coverage"       yaml:"supports_branch_coverage"`
	Lines                       LineStats  `json:"lines"                          yaml:"lines"`
	Assemblies                  []Assembly `json:"assemblies"                     yaml:"assemblies"`
	CodeQualityMetricsAvailable bool       `json:"code_quality_metrics_available" yaml:"code_quality_metrics_available"`
	Hotspots                    []Hotspot  `json:"hotspots"                       yaml:"hotspots"`
}

// LineStats aggregates line coverage.
type LineStats struct {
	Covered   int     `json:"covered"   yaml:"covered"`
	Coverable int     `json:"coverable" yaml:"coverable"`
	Rate      float64 `json:"rate"      yaml:"rate"`
}

// Assembly summarizes one assembly.
type Assembly struct {
	Name    string    `json:"name"    yaml:"name"`
	Lines   LineStats `json:"lines"   yaml:"lines"`
	Classes []Class   `json:"classes" yaml:"classes"`
}

// Class summarizes one class.
type Class struct {
	Name    string    `json:"name"    yaml:"name"`
	Files   []string  `json:"files"   yaml:"files"`
	Methods int       `json:"methods" yaml:"methods"`
	Lines   LineStats `json:"lines"   yaml:"lines"`
}

// Hotspot is the export view of a risk hotspot.
type Hotspot struct {
	Assembly  string          `json:"assembly"   yaml:"assembly"`
	Class     string          `json:"class"      yaml:"class"`
	Method    string          `json:"method"     yaml:"method"`
	File      string          `json:"file"       yaml:"file"`
	FileIndex int             `json:"file_index" yaml:"file_index"`
	Line      int             `json:"line"       yaml:"line"`
	Rank      float64         `json:"rank"       yaml:"rank"`
	Metrics   []HotspotMetric `json:"metrics"    yaml:"metrics"`
}

// HotspotMetric is one metric of a hotspot with its threshold outcome.
type HotspotMetric struct {
	Name     string  `json:"name"     yaml:"name"`
	Value    float64 `json:"value"    yaml:"value"`
	Exceeded bool    `json:"exceeded" yaml:"exceeded"`
}

// Build creates the export view. analysis may be nil.
func Build(result *model.ParserResult, analysis *hotspots.AnalysisResult) *Report {
	report := &Report{
		Parser:                 result.ParserName(),
		SupportsBranchCoverage: result.SupportsBranchCoverage(),
		Assemblies:             []Assembly{},
		Hotspots:               []Hotspot{},
	}

	var covered, coverable int

	for _, assembly := range result.Assemblies() {
		view := Assembly{
			Name:    assembly.Name(),
			Lines:   newLineStats(assembly.CoveredLines(), assembly.CoverableLines()),
			Classes: []Class{},
		}

		for _, class := range assembly.Classes() {
			view.Classes = append(view.Classes, buildClass(class))
		}

		covered += assembly.CoveredLines()
		coverable += assembly.CoverableLines()
		report.Assemblies = append(report.Assemblies, view)
	}

	report.Lines = newLineStats(covered, coverable)

	if analysis == nil {
		return report
	}

	report.CodeQualityMetricsAvailable = analysis.CodeQualityMetricsAvailable

	for i := range analysis.Hotspots {
		report.Hotspots = append(report.Hotspots, buildHotspot(&analysis.Hotspots[i]))
	}

	return report
}

func buildClass(class *model.Class) Class {
	view := Class{
		Name:  class.Name(),
		Files: []string{},
		Lines: newLineStats(class.CoveredLines(), class.CoverableLines()),
	}

	for _, file := range class.Files() {
		view.Files = append(view.Files, file.Path())
		view.Methods += len(file.MethodMetrics())
	}

	return view
}

func buildHotspot(h *hotspots.RiskHotspot) Hotspot {
	view := Hotspot{
		Assembly:  h.Assembly.Name(),
		Class:     h.Class.Name(),
		Method:    h.MethodMetric.ShortName,
		FileIndex: h.FileIndex,
		Line:      h.MethodMetric.Line,
		Rank:      h.Rank(),
	}

	if files := h.Class.Files(); h.FileIndex < len(files) {
		view.File = files[h.FileIndex].Path()
	}

	for _, s := range h.StatusMetrics {
		view.Metrics = append(view.Metrics, HotspotMetric{
			Name:     s.Metric.Name,
			Value:    s.Metric.Value,
			Exceeded: s.Exceeded,
		})
	}

	return view
}

func newLineStats(covered, coverable int) LineStats {
	stats := LineStats{Covered: covered, Coverable: coverable}
	if coverable > 0 {
		stats.Rate = float64(covered) / float64(coverable)
	}

	return stats
}
