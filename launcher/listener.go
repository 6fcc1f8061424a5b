package launcher

import "github.com/crosstest/crosstest/engine"

// TestExecutionListener observes the lifecycle of one launcher run.
//
// Callbacks for a single event are invoked sequentially across listeners, in
// registration order, and a listener is never invoked concurrently with
// another listener. Within one engine's dispatch window, successive events
// may however originate from different goroutines when the engine
// parallelizes internally, so listener implementations must not assume a
// single calling goroutine for the whole run.
//
// A panic in a listener does not stop delivery to the remaining listeners
// and does not abort the run; the launcher collects such failures and
// reports them after the run completes.
type TestExecutionListener interface {
	// ExecutionStarted is called once before the first engine is dispatched.
	ExecutionStarted(plan *TestPlan)

	// ExecutionFinished is called once after the last engine has returned.
	ExecutionFinished(plan *TestPlan)

	// NodeStarted reports that execution of a plan node has begun.
	NodeStarted(node TestNode)

	// NodeSkipped reports that a node and its subtree were not executed.
	NodeSkipped(node TestNode, reason string)

	// NodeFinished reports the terminal state of a started node.
	NodeFinished(node TestNode, result engine.ExecutionResult)
}

// ListenerFuncs adapts plain functions to the TestExecutionListener
// interface. Nil fields are no-ops.
type ListenerFuncs struct {
	OnExecutionStarted  func(plan *TestPlan)
	OnExecutionFinished func(plan *TestPlan)
	OnNodeStarted       func(node TestNode)
	OnNodeSkipped       func(node TestNode, reason string)
	OnNodeFinished      func(node TestNode, result engine.ExecutionResult)
}

func (l ListenerFuncs) ExecutionStarted(plan *TestPlan) {
	if l.OnExecutionStarted != nil {
		l.OnExecutionStarted(plan)
	}
}

func (l ListenerFuncs) ExecutionFinished(plan *TestPlan) {
	if l.OnExecutionFinished != nil {
		l.OnExecutionFinished(plan)
	}
}

func (l ListenerFuncs) NodeStarted(node TestNode) {
	if l.OnNodeStarted != nil {
		l.OnNodeStarted(node)
	}
}

func (l ListenerFuncs) NodeSkipped(node TestNode, reason string) {
	if l.OnNodeSkipped != nil {
		l.OnNodeSkipped(node, reason)
	}
}

func (l ListenerFuncs) NodeFinished(node TestNode, result engine.ExecutionResult) {
	if l.OnNodeFinished != nil {
		l.OnNodeFinished(node, result)
	}
}
