package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorStringForms(t *testing.T) {
	id, err := ParseUniqueID("[engine:e]/[test:t]")
	require.NoError(t, err)

	for _, p := range []struct {
		selector DiscoverySelector
		expected string
	}{
		{SelectPackage("example.users"), "PackageSelector(example.users)"},
		{SelectClass("PaymentTests"), "ClassSelector(PaymentTests)"},
		{SelectMethod("PaymentTests", "refund"), "MethodSelector(PaymentTests#refund)"},
		{SelectUniqueID(id), "UniqueIDSelector([engine:e]/[test:t])"},
		{SelectClasspathRoot("/build/classes"), "ClasspathRootSelector(/build/classes)"},
	} {
		assert.Equal(t, p.expected, p.selector.String())
		assert.NoError(t, ValidateSelector(p.selector))
	}
}

func TestSelectorValidation(t *testing.T) {
	for _, p := range []struct {
		name     string
		selector DiscoverySelector
	}{
		{"blank package", SelectPackage(" ")},
		{"blank class", SelectClass("")},
		{"blank method class", SelectMethod("", "refund")},
		{"blank method name", SelectMethod("PaymentTests", "")},
		{"empty unique id", SelectUniqueID(nil)},
		{"blank classpath root", SelectClasspathRoot("")},
	} {
		t.Run(p.name, func(t *testing.T) {
			assert.Error(t, ValidateSelector(p.selector))
		})
	}
}
