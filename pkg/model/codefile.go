package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrLineLengthMismatch is returned when coverage and status arrays differ in length.
var ErrLineLengthMismatch = errors.New("line coverage and visit status lengths differ")

// NoData marks a line without instrumentation in the coverage array.
const NoData = -1

// LineVisitStatus is the coverage state of a single line.
type LineVisitStatus int

// Line visit states. The zero value marks a line that carries no instrumentation.
const (
	NotCoverable LineVisitStatus = iota
	NotCovered
	Covered
)

// String returns the status name.
func (s LineVisitStatus) String() string {
	switch s {
	case NotCovered:
		return "NotCovered"
	case Covered:
		return "Covered"
	default:
		return "NotCoverable"
	}
}

// CodeFile holds the line coverage and members of one source file within a class.
// Index 0 of both line arrays is unused; line numbers index directly.
type CodeFile struct {
	path            string
	coverage        []int
	lineVisitStatus []LineVisitStatus
	methodMetrics   []*MethodMetric
	codeElements    []*CodeElement
}

// NewCodeFile creates a code file from parallel coverage and status arrays.
func NewCodeFile(path string, coverage []int, lineVisitStatus []LineVisitStatus) (*CodeFile, error) {
	if len(coverage) != len(lineVisitStatus) {
		return nil, fmt.Errorf("%w: %s has %d coverage entries and %d status entries",
			ErrLineLengthMismatch, path, len(coverage), len(lineVisitStatus))
	}

	return &CodeFile{
		path:            path,
		coverage:        coverage,
		lineVisitStatus: lineVisitStatus,
	}, nil
}

// Path returns the file path as written in the report.
func (f *CodeFile) Path() string { return f.path }

// LineCoverage returns a copy of the per-line visit counts; NoData marks uninstrumented lines.
func (f *CodeFile) LineCoverage() []int { return slices.Clone(f.coverage) }

// LineVisitStatus returns a copy of the per-line visit states.
func (f *CodeFile) LineVisitStatus() []LineVisitStatus { return slices.Clone(f.lineVisitStatus) }

// MethodMetrics returns the method metrics in extraction order.
func (f *CodeFile) MethodMetrics() []*MethodMetric { return slices.Clone(f.methodMetrics) }

// CodeElements returns the code elements in extraction order.
func (f *CodeFile) CodeElements() []*CodeElement { return slices.Clone(f.codeElements) }

// AddMethodMetric appends a method metric.
func (f *CodeFile) AddMethodMetric(mm *MethodMetric) {
	f.methodMetrics = append(f.methodMetrics, mm)
}

// AddCodeElement appends a code element.
func (f *CodeFile) AddCodeElement(ce *CodeElement) {
	f.codeElements = append(f.codeElements, ce)
}

// CoverableLines counts lines carrying instrumentation data. Index 0 is not a line.
func (f *CodeFile) CoverableLines() int {
	count := 0

	for _, status := range f.lines() {
		if status != NotCoverable {
			count++
		}
	}

	return count
}

// CoveredLines counts lines visited at least once.
func (f *CodeFile) CoveredLines() int {
	count := 0

	for _, status := range f.lines() {
		if status == Covered {
			count++
		}
	}

	return count
}

// lines returns the statuses of real source lines, skipping index 0.
func (f *CodeFile) lines() []LineVisitStatus {
	if len(f.lineVisitStatus) == 0 {
		return nil
	}

	return f.lineVisitStatus[1:]
}
