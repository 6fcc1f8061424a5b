package launcher

import (
	"fmt"
	"strings"

	"github.com/crosstest/crosstest/engine"
)

// EngineFilter decides which engines participate in discovery, by engine id.
//
// Filters on a request combine with AND semantics: an engine is eligible
// only if every filter accepts it. Within one filter the listed ids combine
// with OR. Be cautious when registering multiple competing include filters
// on the same request: IncludeEngines("a") plus IncludeEngines("b") excludes
// every engine, because no engine can satisfy both.
type EngineFilter struct {
	ids     []string
	include bool
}

// IncludeEngines creates a filter that accepts only engines whose id appears
// in the given list.
func IncludeEngines(ids ...string) *EngineFilter {
	return &EngineFilter{ids: append([]string(nil), ids...), include: true}
}

// ExcludeEngines creates a filter that rejects engines whose id appears in
// the given list.
func ExcludeEngines(ids ...string) *EngineFilter {
	return &EngineFilter{ids: append([]string(nil), ids...), include: false}
}

func (f *EngineFilter) Role() engine.FilterRole { return engine.FilterRoleEngine }

// IsInclude reports whether this is an include filter. The registry
// evaluates include filters before exclude filters for each engine.
func (f *EngineFilter) IsInclude() bool { return f.include }

// Apply evaluates the filter against one engine id.
func (f *EngineFilter) Apply(engineID string) engine.FilterResult {
	listed := false
	for _, id := range f.ids {
		if id == engineID {
			listed = true
			break
		}
	}
	if f.include {
		return engine.IncludedIf(listed,
			fmt.Sprintf("engine %q is in the included list", engineID),
			fmt.Sprintf("engine %q is not in the included list", engineID))
	}
	return engine.IncludedIf(!listed,
		fmt.Sprintf("engine %q is not in the excluded list", engineID),
		fmt.Sprintf("engine %q is in the excluded list", engineID))
}

func (f *EngineFilter) String() string {
	mode := "IncludeEngines"
	if !f.include {
		mode = "ExcludeEngines"
	}
	return fmt.Sprintf("%s(%s)", mode, strings.Join(f.ids, ", "))
}
