package listeners

import (
	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/launcher"
)

// Multi forwards every event to each of the given listeners in order. The
// launcher already broadcasts to all of its registered listeners; Multi is
// for places that accept a single listener value.
type Multi struct {
	Listeners []launcher.TestExecutionListener
}

func (m Multi) ExecutionStarted(plan *launcher.TestPlan) {
	for _, l := range m.Listeners {
		l.ExecutionStarted(plan)
	}
}

func (m Multi) ExecutionFinished(plan *launcher.TestPlan) {
	for _, l := range m.Listeners {
		l.ExecutionFinished(plan)
	}
}

func (m Multi) NodeStarted(node launcher.TestNode) {
	for _, l := range m.Listeners {
		l.NodeStarted(node)
	}
}

func (m Multi) NodeSkipped(node launcher.TestNode, reason string) {
	for _, l := range m.Listeners {
		l.NodeSkipped(node, reason)
	}
}

func (m Multi) NodeFinished(node launcher.TestNode, result engine.ExecutionResult) {
	for _, l := range m.Listeners {
		l.NodeFinished(node, result)
	}
}
