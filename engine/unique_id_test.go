package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueIDStringForm(t *testing.T) {
	id := NewEngineUniqueID("fakeunit").Append("suite", "ParserTests").Append("test", "parses empty input")
	assert.Equal(t, "[engine:fakeunit]/[suite:ParserTests]/[test:parses empty input]", id.String())
}

func TestUniqueIDRoundTrip(t *testing.T) {
	ids := []UniqueID{
		NewEngineUniqueID("fakeunit"),
		NewEngineUniqueID("fakeunit").Append("suite", "A").Append("test", "b"),
		NewEngineUniqueID("e").Append("test", "value with spaces"),
		NewEngineUniqueID("e").Append("test", "weird/value:with[reserved]chars"),
		NewEngineUniqueID("e").Append("test", "100%"),
	}
	for _, id := range ids {
		t.Run(id.String(), func(t *testing.T) {
			parsed, err := ParseUniqueID(id.String())
			require.NoError(t, err)
			assert.True(t, parsed.Equals(id), "parsed %v, want %v", parsed, id)
		})
	}
}

func TestParseUniqueIDRejectsMalformedInput(t *testing.T) {
	badInputs := []string{
		"",
		"engine:x",
		"[engine]",
		"[:x]",
		"[engine:]",
		"[engine:x]/",
		"[engine:x]/oops",
		"[engine:x%]",
		"[engine:x%zz]",
	}
	for _, input := range badInputs {
		t.Run(fmt.Sprintf("input=%q", input), func(t *testing.T) {
			_, err := ParseUniqueID(input)
			assert.Error(t, err)
		})
	}
}

func TestUniqueIDAppendDoesNotMutateReceiver(t *testing.T) {
	base := NewEngineUniqueID("e").Append("suite", "A")
	first := base.Append("test", "one")
	second := base.Append("test", "two")
	assert.Equal(t, "[engine:e]/[suite:A]/[test:one]", first.String())
	assert.Equal(t, "[engine:e]/[suite:A]/[test:two]", second.String())
	assert.Equal(t, "[engine:e]/[suite:A]", base.String())
}

func TestUniqueIDHasPrefix(t *testing.T) {
	root := NewEngineUniqueID("e")
	child := root.Append("suite", "A")
	grandchild := child.Append("test", "b")

	assert.True(t, grandchild.HasPrefix(root))
	assert.True(t, grandchild.HasPrefix(child))
	assert.True(t, grandchild.HasPrefix(grandchild))
	assert.False(t, child.HasPrefix(grandchild))
	assert.False(t, grandchild.HasPrefix(NewEngineUniqueID("other")))
}

func TestUniqueIDEngineID(t *testing.T) {
	engineID, ok := NewEngineUniqueID("fakeunit").Append("test", "x").EngineID()
	require.True(t, ok)
	assert.Equal(t, "fakeunit", engineID)

	_, ok = UniqueID{{Type: "suite", Value: "A"}}.EngineID()
	assert.False(t, ok)
}
