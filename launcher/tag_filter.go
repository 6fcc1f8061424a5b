package launcher

import (
	"fmt"
	"strings"

	"github.com/crosstest/crosstest/engine"
)

// PostDiscoveryFilter is a filter with engine.FilterRolePostDiscovery. The
// launcher applies it uniformly to the merged descriptor forest after every
// engine has reported, pruning excluded nodes together with their subtrees
// while keeping any container that still has an included descendant.
type PostDiscoveryFilter interface {
	engine.Filter
	Apply(d *engine.TestDescriptor) engine.FilterResult
}

type tagFilter struct {
	tags    []string
	include bool
}

// IncludeTags creates a post-discovery filter that accepts only nodes
// carrying at least one of the given tags, directly or inherited from an
// ancestor.
func IncludeTags(tags ...string) (PostDiscoveryFilter, error) {
	return newTagFilter(true, tags)
}

// ExcludeTags creates a post-discovery filter that rejects nodes carrying
// any of the given tags, directly or inherited from an ancestor.
func ExcludeTags(tags ...string) (PostDiscoveryFilter, error) {
	return newTagFilter(false, tags)
}

func newTagFilter(include bool, tags []string) (PostDiscoveryFilter, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("at least one tag is required")
	}
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" {
			return nil, fmt.Errorf("tag must not be blank")
		}
		trimmed = append(trimmed, t)
	}
	return &tagFilter{tags: trimmed, include: include}, nil
}

func (f *tagFilter) Role() engine.FilterRole { return engine.FilterRolePostDiscovery }

func (f *tagFilter) Apply(d *engine.TestDescriptor) engine.FilterResult {
	tagged := false
	effective := d.EffectiveTags()
outer:
	for _, want := range f.tags {
		for _, have := range effective {
			if want == have {
				tagged = true
				break outer
			}
		}
	}
	if f.include {
		return engine.IncludedIf(tagged,
			fmt.Sprintf("node %s carries an included tag", d.UniqueID()),
			fmt.Sprintf("node %s carries no included tag", d.UniqueID()))
	}
	return engine.IncludedIf(!tagged,
		fmt.Sprintf("node %s carries no excluded tag", d.UniqueID()),
		fmt.Sprintf("node %s carries an excluded tag", d.UniqueID()))
}

func (f *tagFilter) String() string {
	mode := "IncludeTags"
	if !f.include {
		mode = "ExcludeTags"
	}
	return fmt.Sprintf("%s(%s)", mode, strings.Join(f.tags, ", "))
}
