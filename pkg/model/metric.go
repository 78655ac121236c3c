// Package model defines the canonical coverage model that every report parser
// produces: assemblies own classes, classes own files, and files carry per-line
// coverage together with method metrics and code elements.
package model

// MetricType distinguishes raw coverage counts from structural quality measures.
type MetricType int

// Metric types.
const (
	// MetricTypeCoverageAbsolute counts covered or uncovered units (blocks, sequence points).
	MetricTypeCoverageAbsolute MetricType = iota
	// MetricTypeCodeQuality measures structural complexity (cyclomatic complexity, CRAP score).
	MetricTypeCodeQuality
)

// String returns the metric type name.
func (t MetricType) String() string {
	if t == MetricTypeCodeQuality {
		return "CodeQuality"
	}

	return "CoverageAbsolute"
}

// MergeOrder tells an external merger which of two values from repeated runs to keep.
type MergeOrder int

// Merge orders.
const (
	HigherIsBetter MergeOrder = iota
	LowerIsBetter
)

// String returns the merge order name.
func (o MergeOrder) String() string {
	if o == LowerIsBetter {
		return "LowerIsBetter"
	}

	return "HigherIsBetter"
}

// Canonical metric names shared by parsers and the risk hotspot thresholds.
const (
	MetricBlocksCovered            = "Blocks covered"
	MetricBlocksNotCovered         = "Blocks not covered"
	MetricSequencePointsCovered    = "Sequence points covered"
	MetricSequencePointsNotCovered = "Sequence points not covered"
	MetricCyclomaticComplexity     = "Cyclomatic complexity"
	MetricNPathComplexity          = "NPath complexity"
	MetricCrapScore                = "CRAP Score"
)

// CodeCoverageURI identifies coverage metrics produced directly by a report parser.
const CodeCoverageURI = "https://en.wikipedia.org/wiki/Code_coverage"

// Metric is a single named measurement attached to a method.
type Metric struct {
	Name       string
	AnalyzerID string
	Type       MetricType
	Value      float64
	MergeOrder MergeOrder
}

// NewMetric creates a metric with the HigherIsBetter merge order.
func NewMetric(name, analyzerID string, metricType MetricType, value float64) Metric {
	return Metric{
		Name:       name,
		AnalyzerID: analyzerID,
		Type:       metricType,
		Value:      value,
		MergeOrder: HigherIsBetter,
	}
}

// WithMergeOrder returns a copy of the metric using the given merge order.
func (m Metric) WithMergeOrder(order MergeOrder) Metric {
	m.MergeOrder = order

	return m
}

// MethodMetric groups the metrics reported for one method.
type MethodMetric struct {
	FullName  string
	ShortName string
	// Line is the declaration line, zero when the report carries none.
	Line    int
	Metrics []Metric
}

// NewMethodMetric creates a method metric with the given metrics in order.
func NewMethodMetric(fullName, shortName string, metrics ...Metric) *MethodMetric {
	return &MethodMetric{
		FullName:  fullName,
		ShortName: shortName,
		Metrics:   metrics,
	}
}

// MetricsOfType returns the metrics of the given type, preserving order.
func (mm *MethodMetric) MetricsOfType(metricType MetricType) []Metric {
	var result []Metric

	for _, m := range mm.Metrics {
		if m.Type == metricType {
			result = append(result, m)
		}
	}

	return result
}

// CodeElementType is the kind of a callable member.
type CodeElementType int

// Code element types.
const (
	CodeElementMethod CodeElementType = iota
	CodeElementProperty
)

// String returns the element type name.
func (t CodeElementType) String() string {
	if t == CodeElementProperty {
		return "Property"
	}

	return "Method"
}

// CodeElement is a callable span inside a file, used to map lines back to members.
type CodeElement struct {
	Name      string
	Type      CodeElementType
	FirstLine int
	LastLine  int
}

// NewCodeElement creates a code element spanning the given inclusive line range.
func NewCodeElement(name string, elementType CodeElementType, firstLine, lastLine int) *CodeElement {
	return &CodeElement{
		Name:      name,
		Type:      elementType,
		FirstLine: firstLine,
		LastLine:  lastLine,
	}
}
