package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterRole identifies the pipeline stage at which a filter is applied. The
// role is fixed when the filter is constructed; the launcher routes filters
// into the matching stage and never infers the role from the concrete type.
type FilterRole int

const (
	// FilterRoleEngine filters decide which engines participate in
	// discovery at all. They are evaluated against engine ids before any
	// engine is invoked.
	FilterRoleEngine FilterRole = iota

	// FilterRoleDiscovery filters are handed to each engine and applied by
	// the engine itself while it resolves selectors, so that the engine can
	// prune candidates before building descriptor subtrees.
	FilterRoleDiscovery

	// FilterRolePostDiscovery filters are applied by the launcher to the
	// merged descriptor forest after every engine has reported.
	FilterRolePostDiscovery
)

func (r FilterRole) String() string {
	switch r {
	case FilterRoleEngine:
		return "engine"
	case FilterRoleDiscovery:
		return "discovery"
	case FilterRolePostDiscovery:
		return "post-discovery"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// FilterResult is the verdict of applying one filter to one candidate:
// included or excluded, with an optional human-readable reason.
type FilterResult struct {
	included bool
	reason   string
}

// Included creates an inclusion verdict. The reason may be empty.
func Included(reason string) FilterResult {
	return FilterResult{included: true, reason: reason}
}

// Excluded creates an exclusion verdict. The reason may be empty.
func Excluded(reason string) FilterResult {
	return FilterResult{included: false, reason: reason}
}

// IncludedIf creates an inclusion verdict when condition is true and an
// exclusion verdict otherwise, picking the matching reason.
func IncludedIf(condition bool, reasonIncluded, reasonExcluded string) FilterResult {
	if condition {
		return Included(reasonIncluded)
	}
	return Excluded(reasonExcluded)
}

// IsIncluded reports whether the candidate passed the filter.
func (r FilterResult) IsIncluded() bool { return r.included }

// IsExcluded reports whether the candidate was rejected by the filter.
func (r FilterResult) IsExcluded() bool { return !r.included }

// Reason returns the optional explanation attached to the verdict.
func (r FilterResult) Reason() string { return r.reason }

func (r FilterResult) String() string {
	verdict := "excluded"
	if r.included {
		verdict = "included"
	}
	if r.reason == "" {
		return verdict
	}
	return verdict + ": " + r.reason
}

// Filter is the common shape of all filters. Concrete filters additionally
// expose an Apply method whose candidate type depends on the role: engine
// filters apply to engine ids, discovery filters to candidate names, and
// post-discovery filters to descriptor nodes.
type Filter interface {
	fmt.Stringer
	Role() FilterRole
}

// DiscoveryFilter is a filter with FilterRoleDiscovery. Engines call Apply
// with candidate names (for the built-in filters, class or suite names)
// during their own resolution step.
type DiscoveryFilter interface {
	Filter
	Apply(name string) FilterResult
}

type classNamePatternFilter struct {
	patterns []*regexp.Regexp
	include  bool
}

// IncludeClassNamePatterns creates a discovery filter that includes only
// class names fully matching at least one of the given regular expressions.
func IncludeClassNamePatterns(patterns ...string) (DiscoveryFilter, error) {
	return newClassNamePatternFilter(true, patterns)
}

// ExcludeClassNamePatterns creates a discovery filter that excludes class
// names fully matching at least one of the given regular expressions.
func ExcludeClassNamePatterns(patterns ...string) (DiscoveryFilter, error) {
	return newClassNamePatternFilter(false, patterns)
}

func newClassNamePatternFilter(include bool, patterns []string) (DiscoveryFilter, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one pattern is required")
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		rx, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid class name pattern %q: %w", p, err)
		}
		compiled = append(compiled, rx)
	}
	return &classNamePatternFilter{patterns: compiled, include: include}, nil
}

func (f *classNamePatternFilter) Role() FilterRole { return FilterRoleDiscovery }

func (f *classNamePatternFilter) Apply(name string) FilterResult {
	matched := false
	for _, rx := range f.patterns {
		if rx.MatchString(name) {
			matched = true
			break
		}
	}
	if f.include {
		return IncludedIf(matched,
			fmt.Sprintf("class name %q matches an included pattern", name),
			fmt.Sprintf("class name %q matches no included pattern", name))
	}
	return IncludedIf(!matched,
		fmt.Sprintf("class name %q matches no excluded pattern", name),
		fmt.Sprintf("class name %q matches an excluded pattern", name))
}

func (f *classNamePatternFilter) String() string {
	mode := "IncludeClassNamePatterns"
	if !f.include {
		mode = "ExcludeClassNamePatterns"
	}
	patterns := make([]string, 0, len(f.patterns))
	for _, rx := range f.patterns {
		patterns = append(patterns, rx.String())
	}
	return fmt.Sprintf("%s(%s)", mode, strings.Join(patterns, ", "))
}

// ApplyDiscoveryFilters evaluates all of the given filters against one name.
// The name is included only if every filter includes it; the first exclusion
// verdict wins.
func ApplyDiscoveryFilters(filters []DiscoveryFilter, name string) FilterResult {
	for _, f := range filters {
		if result := f.Apply(name); result.IsExcluded() {
			return result
		}
	}
	return Included("")
}
