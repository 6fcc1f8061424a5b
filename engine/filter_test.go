package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterResult(t *testing.T) {
	assert.True(t, Included("why").IsIncluded())
	assert.False(t, Included("").IsExcluded())
	assert.True(t, Excluded("why").IsExcluded())
	assert.Equal(t, "why", Excluded("why").Reason())

	assert.True(t, IncludedIf(true, "in", "out").IsIncluded())
	assert.Equal(t, "in", IncludedIf(true, "in", "out").Reason())
	assert.True(t, IncludedIf(false, "in", "out").IsExcluded())
	assert.Equal(t, "out", IncludedIf(false, "in", "out").Reason())
}

type classNamePatternTestParams struct {
	patterns    []string
	name        string
	shouldMatch bool
}

func TestIncludeClassNamePatterns(t *testing.T) {
	allParams := []classNamePatternTestParams{
		{[]string{".*Test"}, "ParserTest", true},
		{[]string{".*Test"}, "ParserTests", false}, // full match only
		{[]string{".*Test"}, "Helper", false},
		{[]string{".*Test", ".*Spec"}, "ParserSpec", true},
		{[]string{"org\\.example\\..*"}, "org.example.OrderTests", true},
		{[]string{"org\\.example\\..*"}, "com.example.OrderTests", false},
	}
	for _, params := range allParams {
		t.Run(fmt.Sprintf("patterns=%v name=%s", params.patterns, params.name), func(t *testing.T) {
			filter, err := IncludeClassNamePatterns(params.patterns...)
			require.NoError(t, err)
			assert.Equal(t, FilterRoleDiscovery, filter.Role())
			assert.Equal(t, params.shouldMatch, filter.Apply(params.name).IsIncluded())
		})
	}
}

func TestExcludeClassNamePatterns(t *testing.T) {
	filter, err := ExcludeClassNamePatterns(".*Slow.*")
	require.NoError(t, err)
	assert.True(t, filter.Apply("FastTest").IsIncluded())
	assert.True(t, filter.Apply("VerySlowTest").IsExcluded())
}

func TestClassNamePatternFilterRejectsBadInput(t *testing.T) {
	_, err := IncludeClassNamePatterns()
	assert.Error(t, err)

	_, err = IncludeClassNamePatterns("(unclosed")
	assert.Error(t, err)
}

func TestApplyDiscoveryFilters(t *testing.T) {
	include, err := IncludeClassNamePatterns(".*Test")
	require.NoError(t, err)
	exclude, err := ExcludeClassNamePatterns("Slow.*")
	require.NoError(t, err)
	filters := []DiscoveryFilter{include, exclude}

	assert.True(t, ApplyDiscoveryFilters(filters, "FastTest").IsIncluded())
	assert.True(t, ApplyDiscoveryFilters(filters, "SlowTest").IsExcluded())
	assert.True(t, ApplyDiscoveryFilters(filters, "Helper").IsExcluded())
	assert.True(t, ApplyDiscoveryFilters(nil, "anything").IsIncluded())
}
