// Package listeners provides ready-made TestExecutionListener
// implementations: colored console output, a summary aggregator, an XML
// report writer, and a fan-out combinator.
package listeners

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/launcher"
)

var consoleFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleAbortedColor = color.New(color.FgYellow)            //nolint:gochecknoglobals
var consoleSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consolePassedColor = color.New(color.FgGreen)              //nolint:gochecknoglobals

// Console prints lifecycle events to standard output as they happen.
type Console struct {
	// ShowStarted also prints a line for every started node, not just
	// terminal events.
	ShowStarted bool

	// ShowContainers includes container nodes in the output. By default
	// only executable nodes are printed.
	ShowContainers bool
}

func (c Console) ExecutionStarted(plan *launcher.TestPlan) {
	fmt.Printf("Running %d test plan node(s)\n", plan.Size())
}

func (c Console) ExecutionFinished(*launcher.TestPlan) {}

func (c Console) NodeStarted(node launcher.TestNode) {
	if !c.ShowStarted || !c.wanted(node) {
		return
	}
	fmt.Printf("[%s]\n", node.UniqueID())
}

func (c Console) NodeSkipped(node launcher.TestNode, reason string) {
	if !c.wanted(node) {
		return
	}
	if reason == "" {
		_, _ = consoleSkippedColor.Printf("  SKIPPED: %s\n", node.UniqueID())
	} else {
		_, _ = consoleSkippedColor.Printf("  SKIPPED: %s (%s)\n", node.UniqueID(), reason)
	}
}

func (c Console) NodeFinished(node launcher.TestNode, result engine.ExecutionResult) {
	if !c.wanted(node) {
		return
	}
	switch result.Status() {
	case engine.StatusFailed:
		_, _ = consoleFailedColor.Printf("  FAILED: %s: %s\n", node.UniqueID(), result.Cause())
	case engine.StatusAborted:
		_, _ = consoleAbortedColor.Printf("  ABORTED: %s: %s\n", node.UniqueID(), result.Cause())
	default:
		_, _ = consolePassedColor.Printf("  PASSED: %s\n", node.UniqueID())
	}
}

func (c Console) wanted(node launcher.TestNode) bool {
	return c.ShowContainers || node.IsTest()
}
