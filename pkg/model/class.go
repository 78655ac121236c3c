package model

import "slices"

// Class is a type within an assembly together with the files it spans.
type Class struct {
	name     string
	assembly *Assembly
	files    []*CodeFile
}

// NewClass creates a class belonging to the given assembly. The assembly
// reference is for navigation only; the assembly owns the class, not the reverse.
func NewClass(name string, assembly *Assembly) *Class {
	return &Class{
		name:     name,
		assembly: assembly,
	}
}

// Name returns the fully qualified class name.
func (c *Class) Name() string { return c.name }

// Assembly returns the owning assembly.
func (c *Class) Assembly() *Assembly { return c.assembly }

// Files returns the class files in insertion order.
func (c *Class) Files() []*CodeFile { return slices.Clone(c.files) }

// AddFile appends a file to the class.
func (c *Class) AddFile(file *CodeFile) {
	c.files = append(c.files, file)
}

// CoverableLines sums coverable lines over all files.
func (c *Class) CoverableLines() int {
	total := 0

	for _, f := range c.files {
		total += f.CoverableLines()
	}

	return total
}

// CoveredLines sums covered lines over all files.
func (c *Class) CoveredLines() int {
	total := 0

	for _, f := range c.files {
		total += f.CoveredLines()
	}

	return total
}
