// Package support provides a ready-made execution walk for engine authors.
// An Executor traverses a descriptor subtree and emits started, skipped, and
// finished events in the nesting order the launcher requires, so an engine
// only has to supply the code that runs a single node.
package support

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/crosstest/crosstest/engine"
)

// Executor walks a descriptor tree depth-first and reports lifecycle events
// for every node. Containers are started before any of their children and
// finished after all of them.
type Executor struct {
	// Sink receives all lifecycle events. Required.
	Sink engine.EventSink

	// Run executes one node whose type is executable and returns its
	// terminal result. When nil, every executable node is reported as
	// successful.
	Run func(*engine.TestDescriptor) engine.ExecutionResult

	// Skip, when non-nil, is consulted before a node runs. Returning true
	// skips the node and its whole subtree with the given reason.
	Skip func(*engine.TestDescriptor) (reason string, skip bool)

	// Parallel caps the number of sibling leaves executed concurrently.
	// Values below 2 mean strictly sequential execution. Concurrent leaves
	// report through the sink from their own goroutines, which the
	// launcher's sinks permit; the nesting guarantee is preserved because
	// the parent finishes only after all leaves are done.
	Parallel int
}

// Execute walks the tree rooted at root. It panics if Sink is nil, since an
// engine without a sink cannot report anything at all.
func (e *Executor) Execute(root *engine.TestDescriptor) {
	if e.Sink == nil {
		panic("support: Executor requires a Sink")
	}
	if root == nil {
		return
	}
	e.walk(root)
}

func (e *Executor) walk(d *engine.TestDescriptor) {
	if e.Skip != nil {
		if reason, skip := e.Skip(d); skip {
			e.Sink.Skipped(d.UniqueID(), reason)
			return
		}
	}

	e.Sink.Started(d.UniqueID())

	children := d.Children()
	if e.Parallel > 1 && allLeaves(children) {
		var group errgroup.Group
		group.SetLimit(e.Parallel)
		for _, child := range children {
			child := child
			group.Go(func() error {
				e.walk(child)
				return nil
			})
		}
		_ = group.Wait() // walk never returns an error
	} else {
		for _, child := range children {
			e.walk(child)
		}
	}

	e.Sink.Finished(d.UniqueID(), e.resultFor(d))
}

func (e *Executor) resultFor(d *engine.TestDescriptor) engine.ExecutionResult {
	if !d.Type().IsTest() {
		return engine.Successful()
	}
	if e.Run == nil {
		return engine.Successful()
	}
	return runProtected(e.Run, d)
}

// runProtected converts a panic in the node function into a failed result so
// that one misbehaving test cannot take down the engine's whole dispatch.
func runProtected(
	run func(*engine.TestDescriptor) engine.ExecutionResult,
	d *engine.TestDescriptor,
) (result engine.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = engine.Failed(fmt.Errorf("panic while executing %s: %v", d.UniqueID(), r))
		}
	}()
	return run(d)
}

func allLeaves(children []*engine.TestDescriptor) bool {
	for _, c := range children {
		if len(c.Children()) != 0 {
			return false
		}
	}
	return true
}
