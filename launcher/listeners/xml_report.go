package listeners

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/launcher"
)

// XMLReport writes a JUnit-style XML document when the run finishes: one
// testsuite per engine root, one testcase per executable node. Create it
// with NewXMLReport and check Err after the run.
type XMLReport struct {
	filePath string
	runID    string

	mu      sync.Mutex
	order   []string // unique ids of executable nodes, in event order
	cases   map[string]*xmlCaseStatus
	started time.Time
	err     error
}

type xmlCaseStatus struct {
	node       launcher.TestNode
	skipReason *string
	result     *engine.ExecutionResult
	startedAt  time.Time
	duration   time.Duration
}

// Struct definitions for the JUnit XML schema.

type xmlDocument struct {
	XMLName xml.Name       `xml:"testsuites"`
	Suites  []xmlTestSuite `xml:"testsuite"`
}

type xmlTestSuite struct {
	XMLName    xml.Name      `xml:"testsuite"`
	Tests      int           `xml:"tests,attr"`
	Failures   int           `xml:"failures,attr"`
	Time       string        `xml:"time,attr"`
	Name       string        `xml:"name,attr"`
	Properties []xmlProperty `xml:"properties>property,omitempty"`
	TestCases  []xmlTestCase `xml:"testcase"`
}

type xmlTestCase struct {
	XMLName     xml.Name        `xml:"testcase"`
	Classname   string          `xml:"classname,attr"`
	Name        string          `xml:"name,attr"`
	Time        string          `xml:"time,attr"`
	SkipMessage *xmlSkipMessage `xml:"skipped,omitempty"`
	Failure     *xmlFailure     `xml:"failure,omitempty"`
}

type xmlSkipMessage struct {
	Message string `xml:"message,attr"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// NewXMLReport creates a listener that writes its report to filePath when
// ExecutionFinished fires. Every report carries a fresh run id so external
// tooling can tell runs apart.
func NewXMLReport(filePath string) *XMLReport {
	return &XMLReport{
		filePath: filePath,
		runID:    uuid.NewString(),
		cases:    make(map[string]*xmlCaseStatus),
	}
}

// RunID returns the identifier stamped into the report's properties.
func (x *XMLReport) RunID() string { return x.runID }

// Err returns the error from writing the report, if any. Valid after
// ExecutionFinished.
func (x *XMLReport) Err() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

func (x *XMLReport) ExecutionStarted(*launcher.TestPlan) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.started = time.Now()
}

func (x *XMLReport) NodeStarted(node launcher.TestNode) {
	if !node.IsTest() {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.caseFor(node).startedAt = time.Now()
}

func (x *XMLReport) NodeSkipped(node launcher.TestNode, reason string) {
	if !node.IsTest() {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	r := reason
	x.caseFor(node).skipReason = &r
}

func (x *XMLReport) NodeFinished(node launcher.TestNode, result engine.ExecutionResult) {
	if !node.IsTest() {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	status := x.caseFor(node)
	status.result = &result
	status.duration = time.Since(status.startedAt)
}

func (x *XMLReport) caseFor(node launcher.TestNode) *xmlCaseStatus {
	key := node.UniqueID().String()
	status, ok := x.cases[key]
	if !ok {
		status = &xmlCaseStatus{node: node}
		x.cases[key] = status
		x.order = append(x.order, key)
	}
	return status
}

func (x *XMLReport) ExecutionFinished(plan *launcher.TestPlan) {
	x.mu.Lock()
	defer x.mu.Unlock()

	properties := []xmlProperty{
		{Name: "run.id", Value: x.runID},
		{Name: "run.startedAt", Value: x.started.Format(time.RFC3339)},
	}

	var doc xmlDocument
	for _, root := range plan.Roots() {
		engineID, _ := root.UniqueID().EngineID()
		suite := xmlTestSuite{
			Name:       engineID,
			Properties: properties,
		}
		suiteDuration := time.Duration(0)
		for _, key := range x.order {
			status := x.cases[key]
			if !underRoot(status.node, root) {
				continue
			}
			suite.Tests++
			suiteDuration += status.duration

			testCase := xmlTestCase{
				Classname: engineID,
				Name:      key,
				Time:      xmlDurationString(status.duration),
			}
			if status.skipReason != nil {
				testCase.SkipMessage = &xmlSkipMessage{Message: *status.skipReason}
			}
			if status.result != nil && status.result.Status() != engine.StatusSuccessful {
				suite.Failures++
				message := ""
				if cause := status.result.Cause(); cause != nil {
					message = cause.Error()
				}
				testCase.Failure = &xmlFailure{
					Message: message,
					Type:    status.result.Status().String(),
				}
			}
			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = xmlDurationString(suiteDuration)
		doc.Suites = append(doc.Suites, suite)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		x.err = err
		return
	}
	data = append(data, '\n')
	x.err = os.WriteFile(x.filePath, data, 0600)
}

func underRoot(node launcher.TestNode, root launcher.TestNode) bool {
	return node.UniqueID().HasPrefix(root.UniqueID())
}

func xmlDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
