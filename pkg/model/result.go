package model

import (
	"slices"
	"strings"
)

// ParserResult is the normalized output of one report parser.
type ParserResult struct {
	assemblies             []*Assembly
	supportsBranchCoverage bool
	parserName             string
}

// NewParserResult creates a result with assemblies ordered by name.
func NewParserResult(assemblies []*Assembly, supportsBranchCoverage bool, parserName string) *ParserResult {
	sorted := slices.Clone(assemblies)
	slices.SortStableFunc(sorted, func(x, y *Assembly) int {
		return strings.Compare(x.name, y.name)
	})

	return &ParserResult{
		assemblies:             sorted,
		supportsBranchCoverage: supportsBranchCoverage,
		parserName:             parserName,
	}
}

// Assemblies returns the assemblies ordered by name.
func (r *ParserResult) Assemblies() []*Assembly { return slices.Clone(r.assemblies) }

// SupportsBranchCoverage reports whether the source format carried branch data.
func (r *ParserResult) SupportsBranchCoverage() bool { return r.supportsBranchCoverage }

// ParserName identifies the parser that produced the result.
func (r *ParserResult) ParserName() string { return r.parserName }
