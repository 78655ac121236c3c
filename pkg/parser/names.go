package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/coverfang/pkg/filter"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/safeconv"
)

// MaxLineNumber bounds line attributes so a corrupt record cannot force a
// huge per-line allocation.
const MaxLineNumber = 1 << 24

const accessorPrefixLen = len("get_")

// SelectNames deduplicates names, keeps those f includes, and sorts them ascending.
func SelectNames(names []string, f filter.Filter) []string {
	seen := make(map[string]struct{}, len(names))
	selected := make([]string, 0, len(names))

	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		if f.Includes(name) {
			selected = append(selected, name)
		}
	}

	slices.Sort(selected)

	return selected
}

// RetainClass reports whether a class survives file filtering. A class with
// surviving files is kept; a class that never had files is kept only when
// the file filter carries no custom rules.
func RetainClass(candidateFiles, survivingFiles int, files filter.Filter) bool {
	return survivingFiles > 0 || (candidateFiles == 0 && !files.HasCustomFilters())
}

// SplitAccessor strips a case-insensitive get_ or set_ prefix and reports
// whether the member is a property.
func SplitAccessor(name string) (string, model.CodeElementType) {
	if len(name) > accessorPrefixLen {
		prefix := strings.ToLower(name[:accessorPrefixLen])
		if prefix == "get_" || prefix == "set_" {
			return name[accessorPrefixLen:], model.CodeElementProperty
		}
	}

	return name, model.CodeElementMethod
}

// ParseLine parses a line number attribute.
func ParseLine(field, value string) (int, error) {
	line, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || line < 0 || line > MaxLineNumber {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedRecord, field, value)
	}

	return line, nil
}

// ParseCount parses a non-negative counter, saturating values beyond the int range.
func ParseCount(field, value string) (int, error) {
	count, err := safeconv.ParseSaturatingInt(value)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedRecord, field, value)
	}

	return count, nil
}
