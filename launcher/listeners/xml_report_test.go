package listeners

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writtenReport(t *testing.T, report *XMLReport, path string) xmlDocument {
	t.Helper()
	require.NoError(t, report.Err())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc xmlDocument
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func TestXMLReportWritesOneSuitePerEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")
	report := NewXMLReport(path)
	runScripted(t, mixedOutcomeNodes(), report)

	doc := writtenReport(t, report, path)
	require.Len(t, doc.Suites, 1)

	suite := doc.Suites[0]
	assert.Equal(t, "fakeunit", suite.Name)
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 2, suite.Failures) // failed + aborted

	byName := map[string]xmlTestCase{}
	for _, c := range suite.TestCases {
		byName[c.Name] = c
	}
	require.Len(t, byName, 4)

	passed := byName["[engine:fakeunit]/[suite:Mixed]/[test:passes]"]
	assert.Nil(t, passed.Failure)
	assert.Nil(t, passed.SkipMessage)

	failed := byName["[engine:fakeunit]/[suite:Mixed]/[test:fails]"]
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "failed", failed.Failure.Type)
	assert.Contains(t, failed.Failure.Message, "fails")

	aborted := byName["[engine:fakeunit]/[suite:Mixed]/[test:aborts]"]
	require.NotNil(t, aborted.Failure)
	assert.Equal(t, "aborted", aborted.Failure.Type)

	skipped := byName["[engine:fakeunit]/[suite:Mixed]/[test:skipped]"]
	require.NotNil(t, skipped.SkipMessage)
	assert.Equal(t, "later", skipped.SkipMessage.Message)
	assert.Nil(t, skipped.Failure)
}

func TestXMLReportStampsRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")
	report := NewXMLReport(path)
	require.NotEmpty(t, report.RunID())

	runScripted(t, mixedOutcomeNodes(), report)
	doc := writtenReport(t, report, path)

	require.Len(t, doc.Suites, 1)
	values := map[string]string{}
	for _, p := range doc.Suites[0].Properties {
		values[p.Name] = p.Value
	}
	assert.Equal(t, report.RunID(), values["run.id"])
	assert.NotEmpty(t, values["run.startedAt"])

	other := NewXMLReport(path)
	assert.NotEqual(t, report.RunID(), other.RunID())
}

func TestXMLReportSurfacesWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "report.xml")
	report := NewXMLReport(path)
	runScripted(t, mixedOutcomeNodes(), report)
	assert.Error(t, report.Err())
}
