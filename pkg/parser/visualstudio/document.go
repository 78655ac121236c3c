// Package visualstudio parses block coverage exported by the Visual Studio
// coverage tools (CoverageDSPriv XML). Each line record carries a coverage
// code instead of a visit count; lines are reduced to covered or not covered.
package visualstudio

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Report is the decoded CoverageDSPriv root.
type Report struct {
	XMLName         xml.Name         `xml:"CoverageDSPriv"`
	Modules         []Module         `xml:"Module"`
	SourceFileNames []SourceFileName `xml:"SourceFileNames"`
}

// Module is one instrumented binary.
type Module struct {
	ModuleName      string           `xml:"ModuleName"`
	NamespaceTables []NamespaceTable `xml:"NamespaceTable"`
}

// NamespaceTable groups the classes of one namespace.
type NamespaceTable struct {
	NamespaceName string  `xml:"NamespaceName"`
	Classes       []Class `xml:"Class"`
}

// Class lists methods of a type. Nested types use "Outer.Inner" class names.
type Class struct {
	ClassName string   `xml:"ClassName"`
	Methods   []Method `xml:"Method"`
}

// Method holds block counters and the line records of one method.
type Method struct {
	MethodName       string  `xml:"MethodName"`
	MethodKeyName    string  `xml:"MethodKeyName"`
	BlocksCovered    string  `xml:"BlocksCovered"`
	BlocksNotCovered string  `xml:"BlocksNotCovered"`
	Lines            []Lines `xml:"Lines"`
}

// Lines is one line-range record.
type Lines struct {
	LnStart      string `xml:"LnStart"`
	ColStart     string `xml:"ColStart"`
	LnEnd        string `xml:"LnEnd"`
	ColEnd       string `xml:"ColEnd"`
	Coverage     string `xml:"Coverage"`
	SourceFileID string `xml:"SourceFileID"`
}

// SourceFileName maps a file id to its path.
type SourceFileName struct {
	SourceFileID   string `xml:"SourceFileID"`
	SourceFileName string `xml:"SourceFileName"`
}

// Decode reads a CoverageDSPriv report from r.
func Decode(r io.Reader) (*Report, error) {
	var report Report

	err := xml.NewDecoder(r).Decode(&report)
	if err != nil {
		return nil, fmt.Errorf("decode visual studio report: %w", err)
	}

	return &report, nil
}
