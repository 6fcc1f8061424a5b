// Package testengine provides a deterministic, scriptable in-memory test
// engine for exercising the launcher in tests. A tree of Node specs declares
// the suites and tests the engine "finds" and the outcome each test reports;
// discovery honors class and unique-id selectors and applies the request's
// discovery filters to suite names, the way a real engine would.
package testengine

import (
	"fmt"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/engine/support"
)

// Outcome is the scripted terminal state of a test node.
type Outcome int

const (
	Pass Outcome = iota
	Fail
	Abort
	Skip
)

// Node declares one suite or test in the engine's scripted tree. A node with
// children is a suite (container); a node without children is a test.
type Node struct {
	Name       string
	Tags       []string
	Outcome    Outcome
	SkipReason string
	Children   []Node
}

// Suite builds a container node.
func Suite(name string, children ...Node) Node {
	return Node{Name: name, Children: children}
}

// Test builds a passing leaf node.
func Test(name string) Node {
	return Node{Name: name}
}

// Engine is the scriptable engine. The zero value is unusable; set EngineID
// and Nodes.
type Engine struct {
	EngineID string

	// Nodes are the top-level suites and tests the engine discovers when no
	// selector narrows them down.
	Nodes []Node

	// DiscoverErr, when set, makes every Discover call fail.
	DiscoverErr error

	// ExecuteErr, when set, is returned from Execute after the engine has
	// reported events for the nodes executed so far (none when
	// FailBeforeEvents is true).
	ExecuteErr       error
	FailBeforeEvents bool

	// Parallel, when above 1, executes sibling leaves concurrently.
	Parallel int
}

func (e *Engine) ID() string { return e.EngineID }

func (e *Engine) Discover(request engine.DiscoveryRequest) (*engine.TestDescriptor, error) {
	if e.DiscoverErr != nil {
		return nil, e.DiscoverErr
	}
	root := engine.NewContainer(engine.NewEngineUniqueID(e.EngineID), e.EngineID)
	filters := request.DiscoveryFilters()
	for _, node := range e.Nodes {
		if !e.selected(node, request.Selectors()) {
			continue
		}
		if engine.ApplyDiscoveryFilters(filters, node.Name).IsExcluded() {
			continue
		}
		child, err := e.describe(node, root.UniqueID())
		if err != nil {
			return nil, err
		}
		if err := root.AddChild(child); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// selected applies the request's selectors to a top-level node. With no
// selectors everything is selected; a class selector matches a node by name,
// and a unique-id selector matches when the requested id is inside the
// node's subtree or above it.
func (e *Engine) selected(node Node, selectors []engine.DiscoverySelector) bool {
	if len(selectors) == 0 {
		return true
	}
	nodeID := engine.NewEngineUniqueID(e.EngineID).Append("suite", node.Name)
	for _, sel := range selectors {
		switch s := sel.(type) {
		case engine.ClassSelector:
			if s.ClassName == node.Name {
				return true
			}
		case engine.UniqueIDSelector:
			if s.ID.HasPrefix(nodeID) || nodeID.HasPrefix(s.ID) {
				return true
			}
		case engine.PackageSelector, engine.ClasspathRootSelector:
			// The scripted tree has no package structure; treat these as
			// selecting everything.
			return true
		case engine.MethodSelector:
			if s.ClassName == node.Name {
				return true
			}
		}
	}
	return false
}

func (e *Engine) describe(node Node, parentID engine.UniqueID) (*engine.TestDescriptor, error) {
	var d *engine.TestDescriptor
	if len(node.Children) == 0 {
		d = engine.NewTest(parentID.Append("test", node.Name), node.Name)
		d.SetSource(engine.MethodSource{ClassName: parentID.Last().Value, MethodName: node.Name})
	} else {
		d = engine.NewContainer(parentID.Append("suite", node.Name), node.Name)
		d.SetSource(engine.ClassSource{ClassName: node.Name})
	}
	d.AddTags(node.Tags...)
	for _, child := range node.Children {
		childDesc, err := e.describe(child, d.UniqueID())
		if err != nil {
			return nil, err
		}
		if err := d.AddChild(childDesc); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (e *Engine) Execute(request engine.ExecutionRequest) error {
	if e.FailBeforeEvents && e.ExecuteErr != nil {
		return e.ExecuteErr
	}
	outcomes := make(map[string]Node)
	e.indexOutcomes(e.Nodes, engine.NewEngineUniqueID(e.EngineID), outcomes)

	executor := &support.Executor{
		Sink:     request.Sink,
		Parallel: e.Parallel,
		Run: func(d *engine.TestDescriptor) engine.ExecutionResult {
			node := outcomes[d.UniqueID().String()]
			switch node.Outcome {
			case Fail:
				return engine.Failed(fmt.Errorf("scripted failure of %s", d.DisplayName()))
			case Abort:
				return engine.Aborted(fmt.Errorf("scripted abort of %s", d.DisplayName()))
			default:
				return engine.Successful()
			}
		},
		Skip: func(d *engine.TestDescriptor) (string, bool) {
			node := outcomes[d.UniqueID().String()]
			if node.Outcome == Skip {
				return node.SkipReason, true
			}
			return "", false
		},
	}
	executor.Execute(request.Root)
	return e.ExecuteErr
}

func (e *Engine) indexOutcomes(nodes []Node, parentID engine.UniqueID, into map[string]Node) {
	for _, node := range nodes {
		segment := "test"
		if len(node.Children) != 0 {
			segment = "suite"
		}
		id := parentID.Append(segment, node.Name)
		into[id.String()] = node
		e.indexOutcomes(node.Children, id, into)
	}
}
