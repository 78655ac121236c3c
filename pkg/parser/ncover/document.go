// Package ncover parses sequence-point coverage dumps in the NCover XML
// layout: <coverage><module assembly=".."><method class=".." name=".."><seqpnt/>.
// Visit counts of overlapping sequence points are summed per line.
package ncover

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Report is the decoded root element of an NCover report.
type Report struct {
	XMLName xml.Name `xml:"coverage"`
	Modules []Module `xml:"module"`
}

// Module groups the methods of one assembly. Several modules may share an assembly.
type Module struct {
	Assembly string   `xml:"assembly,attr"`
	Methods  []Method `xml:"method"`
}

// Method is one instrumented method.
type Method struct {
	Name     string     `xml:"name,attr"`
	Class    string     `xml:"class,attr"`
	Excluded string     `xml:"excluded,attr"`
	Points   []SeqPoint `xml:"seqpnt"`
}

// SeqPoint is one sequence point. Numeric fields stay textual until parsing
// so malformed values surface as parse errors.
type SeqPoint struct {
	VisitCount string `xml:"visitcount,attr"`
	Line       string `xml:"line,attr"`
	Column     string `xml:"column,attr"`
	EndLine    string `xml:"endline,attr"`
	EndColumn  string `xml:"endcolumn,attr"`
	Excluded   string `xml:"excluded,attr"`
	Document   string `xml:"document,attr"`
}

// Decode reads an NCover report from r.
func Decode(r io.Reader) (*Report, error) {
	var report Report

	err := xml.NewDecoder(r).Decode(&report)
	if err != nil {
		return nil, fmt.Errorf("decode ncover report: %w", err)
	}

	return &report, nil
}
