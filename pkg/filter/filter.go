// Package filter decides which assemblies, classes and files are included in a report.
//
// Rules are ordered "+pattern" (include) and "-pattern" (exclude) entries where
// "*" matches any run of characters and "?" matches a single character. The last
// rule matching a name decides. A name matching no rule is included unless at
// least one include rule is configured.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRule is returned for a rule without a "+" or "-" prefix or with an empty pattern.
var ErrInvalidRule = errors.New("invalid filter rule")

const (
	includePrefix = '+'
	excludePrefix = '-'
	matchAllRule  = "+*"
)

// Filter answers whether a fully qualified name is part of the report.
type Filter interface {
	Includes(name string) bool
	HasCustomFilters() bool
}

type rule struct {
	include bool
	pattern *regexp.Regexp
}

// DefaultFilter evaluates ordered wildcard rules. It is safe for concurrent use.
type DefaultFilter struct {
	rules          []rule
	hasIncludes    bool
	custom         bool
	normalizePaths bool
}

// New creates a filter from ordered rules. No rules includes everything.
func New(rules []string) (*DefaultFilter, error) {
	return build(rules, false)
}

// NewPathFilter creates a filter for file paths that treats "\" and "/" alike.
func NewPathFilter(rules []string) (*DefaultFilter, error) {
	return build(rules, true)
}

// All returns a filter including every name.
func All() *DefaultFilter {
	return &DefaultFilter{}
}

func build(raw []string, normalizePaths bool) (*DefaultFilter, error) {
	f := &DefaultFilter{normalizePaths: normalizePaths}

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)

		if len(entry) < 2 || (entry[0] != includePrefix && entry[0] != excludePrefix) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRule, entry)
		}

		pattern := entry[1:]
		if normalizePaths {
			pattern = toSlash(pattern)
		}

		re, err := compileWildcard(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRule, entry, err)
		}

		include := entry[0] == includePrefix
		f.rules = append(f.rules, rule{include: include, pattern: re})
		f.hasIncludes = f.hasIncludes || include
		f.custom = f.custom || entry != matchAllRule
	}

	return f, nil
}

// Includes reports whether name passes the rules.
func (f *DefaultFilter) Includes(name string) bool {
	if len(f.rules) == 0 {
		return true
	}

	if f.normalizePaths {
		name = toSlash(name)
	}

	for i := len(f.rules) - 1; i >= 0; i-- {
		if f.rules[i].pattern.MatchString(name) {
			return f.rules[i].include
		}
	}

	return !f.hasIncludes
}

// HasCustomFilters reports whether any rule other than a lone "+*" is configured.
func (f *DefaultFilter) HasCustomFilters() bool {
	return f.custom
}

func compileWildcard(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder

	sb.WriteString("(?i)^")

	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	sb.WriteString("$")

	return regexp.Compile(sb.String())
}

func toSlash(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}
