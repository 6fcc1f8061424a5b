package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crosstest/crosstest/engine"
)

func TestIncludeEnginesFilter(t *testing.T) {
	filter := IncludeEngines("a", "b")
	assert.Equal(t, engine.FilterRoleEngine, filter.Role())
	assert.True(t, filter.IsInclude())
	assert.True(t, filter.Apply("a").IsIncluded())
	assert.True(t, filter.Apply("b").IsIncluded())
	assert.True(t, filter.Apply("c").IsExcluded())
	assert.NotEmpty(t, filter.Apply("c").Reason())
}

func TestExcludeEnginesFilter(t *testing.T) {
	filter := ExcludeEngines("legacy")
	assert.False(t, filter.IsInclude())
	assert.True(t, filter.Apply("legacy").IsExcluded())
	assert.True(t, filter.Apply("modern").IsIncluded())
}

func TestEngineFilterString(t *testing.T) {
	assert.Equal(t, "IncludeEngines(a, b)", IncludeEngines("a", "b").String())
	assert.Equal(t, "ExcludeEngines(x)", ExcludeEngines("x").String())
}
