package parser

import (
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/safeconv"
)

// HiddenLine is the line number compilers emit for sequence points that map
// to no user-visible source (0xFEEFEE).
const HiddenLine = 0xFEEFEE

// LineRange is one instrumentation record: an inclusive line span and the
// contribution it makes to every line inside it.
type LineRange struct {
	Start  int
	End    int
	Visits int
}

// Aggregator combines the prior value of a line with a new contribution.
type Aggregator func(prior, visits int) int

// SumVisits accumulates visit counts across overlapping ranges, saturating at
// the int maximum.
func SumVisits(prior, visits int) int {
	return safeconv.SaturatingAdd(prior, visits)
}

// BinaryVisits clamps the combined value to 1, so a line stays covered once
// any overlapping range covered it.
func BinaryVisits(prior, visits int) int {
	return min(prior+visits, 1)
}

// BuildLineCoverage folds ranges into per-line visit counts and statuses.
// Both slices have length max(End)+1, or zero when ranges is empty. Lines no
// range touches keep model.NoData and model.NotCoverable. Index 0 is never
// written: a range reaching line 0 contributes from line 1 on.
func BuildLineCoverage(ranges []LineRange, agg Aggregator) ([]int, []model.LineVisitStatus) {
	if len(ranges) == 0 {
		return []int{}, []model.LineVisitStatus{}
	}

	last := 0
	for _, r := range ranges {
		last = max(last, r.End)
	}

	coverage := make([]int, last+1)
	status := make([]model.LineVisitStatus, last+1)

	for i := range coverage {
		coverage[i] = model.NoData
	}

	for _, r := range ranges {
		for line := max(r.Start, 1); line <= r.End; line++ {
			if coverage[line] == model.NoData {
				coverage[line] = r.Visits
			} else {
				coverage[line] = agg(coverage[line], r.Visits)
			}

			if status[line] == model.Covered || r.Visits > 0 {
				status[line] = model.Covered
			} else {
				status[line] = model.NotCovered
			}
		}
	}

	return coverage, status
}

// Span returns the smallest start and largest end over ranges.
// ok is false when ranges is empty.
func Span(ranges []LineRange) (first, last int, ok bool) {
	if len(ranges) == 0 {
		return 0, 0, false
	}

	first, last = ranges[0].Start, ranges[0].End

	for _, r := range ranges[1:] {
		first = min(first, r.Start)
		last = max(last, r.End)
	}

	return first, last, true
}
