package model

import (
	"slices"
	"strings"
	"sync"
)

// Assembly is a compiled unit owning a set of classes.
// AddClass is safe for concurrent use; call SortClasses once all writers are done.
type Assembly struct {
	name string

	mu      sync.Mutex
	classes []*Class
}

// NewAssembly creates an empty assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{name: name}
}

// Name returns the assembly name.
func (a *Assembly) Name() string { return a.name }

// AddClass appends a class.
func (a *Assembly) AddClass(c *Class) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.classes = append(a.classes, c)
}

// SortClasses orders the classes by name.
func (a *Assembly) SortClasses() {
	a.mu.Lock()
	defer a.mu.Unlock()

	slices.SortStableFunc(a.classes, func(x, y *Class) int {
		return strings.Compare(x.name, y.name)
	})
}

// Classes returns the classes in their current order.
func (a *Assembly) Classes() []*Class {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.classes)
}

// CoverableLines sums coverable lines over all classes.
func (a *Assembly) CoverableLines() int {
	total := 0

	for _, c := range a.Classes() {
		total += c.CoverableLines()
	}

	return total
}

// CoveredLines sums covered lines over all classes.
func (a *Assembly) CoveredLines() int {
	total := 0

	for _, c := range a.Classes() {
		total += c.CoveredLines()
	}

	return total
}
