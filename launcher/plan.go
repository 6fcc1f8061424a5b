package launcher

import (
	"fmt"

	"github.com/crosstest/crosstest/engine"
)

// TestPlan is the merged, filtered result of a discovery run: one read-only
// forest with one root per contributing engine, indexed by unique id.
//
// Internally the plan is an arena of nodes whose parent/child relations are
// indices, not pointers, so sharing a plan across concurrent executions is
// safe by construction. The synthetic forest root that discovery merges
// under is not a plan-visible node; Roots returns the engine roots directly.
type TestPlan struct {
	arena  []planNode
	index  map[string]int // UniqueID.String() -> arena index
	roots  []int
	config engine.ConfigurationParameters
}

type planNode struct {
	descriptor *engine.TestDescriptor
	engine     engine.TestEngine // set on engine roots only
	parent     int               // -1 for engine roots
	children   []int
}

// TestNode is a read-only view of one node in a test plan. It is a small
// value; copy it freely.
type TestNode struct {
	plan *TestPlan
	idx  int
}

type engineContribution struct {
	engine engine.TestEngine
	root   *engine.TestDescriptor
}

// newTestPlan indexes the pruned engine root trees into an arena. It fails
// when two nodes anywhere in the forest carry the same unique id.
func newTestPlan(
	contributions []engineContribution,
	config engine.ConfigurationParameters,
) (*TestPlan, error) {
	plan := &TestPlan{
		index:  make(map[string]int),
		config: config,
	}
	for _, c := range contributions {
		rootIdx, err := plan.addSubtree(c.root, -1)
		if err != nil {
			return nil, err
		}
		plan.arena[rootIdx].engine = c.engine
		plan.roots = append(plan.roots, rootIdx)
	}
	return plan, nil
}

func (p *TestPlan) addSubtree(d *engine.TestDescriptor, parent int) (int, error) {
	key := d.UniqueID().String()
	if _, exists := p.index[key]; exists {
		return 0, fmt.Errorf("duplicate unique id %q", key)
	}
	idx := len(p.arena)
	p.arena = append(p.arena, planNode{descriptor: d, parent: parent})
	p.index[key] = idx
	for _, child := range d.Children() {
		childIdx, err := p.addSubtree(child, idx)
		if err != nil {
			return 0, err
		}
		p.arena[idx].children = append(p.arena[idx].children, childIdx)
	}
	return idx, nil
}

// Roots returns the engine root nodes in discovery order.
func (p *TestPlan) Roots() []TestNode {
	nodes := make([]TestNode, 0, len(p.roots))
	for _, idx := range p.roots {
		nodes = append(nodes, TestNode{plan: p, idx: idx})
	}
	return nodes
}

// Get returns the node with the given unique id. The error wraps
// ErrNodeNotFound when the id is not in the plan.
func (p *TestPlan) Get(id engine.UniqueID) (TestNode, error) {
	idx, ok := p.index[id.String()]
	if !ok {
		return TestNode{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return TestNode{plan: p, idx: idx}, nil
}

// Size returns the number of nodes in the plan.
func (p *TestPlan) Size() int { return len(p.arena) }

// ContainsTests reports whether any node in the plan is executable.
func (p *TestPlan) ContainsTests() bool {
	for _, n := range p.arena {
		if n.descriptor.Type().IsTest() {
			return true
		}
	}
	return false
}

// ConfigurationParameters returns the configuration map of the request this
// plan was discovered from.
func (p *TestPlan) ConfigurationParameters() engine.ConfigurationParameters {
	return p.config
}

// Iterator returns a fresh depth-first, pre-order traversal over the whole
// plan. Every call starts over from the first engine root.
func (p *TestPlan) Iterator() *PlanIterator {
	// Roots are pushed in reverse so the first root is popped first.
	stack := make([]int, 0, len(p.roots))
	for i := len(p.roots) - 1; i >= 0; i-- {
		stack = append(stack, p.roots[i])
	}
	return &PlanIterator{plan: p, stack: stack}
}

// PlanIterator lazily walks a test plan depth-first. It is not safe for
// concurrent use; create one iterator per goroutine.
type PlanIterator struct {
	plan  *TestPlan
	stack []int
}

// Next returns the next node, or ok=false when the traversal is exhausted.
func (it *PlanIterator) Next() (TestNode, bool) {
	if len(it.stack) == 0 {
		return TestNode{}, false
	}
	idx := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	children := it.plan.arena[idx].children
	for i := len(children) - 1; i >= 0; i-- {
		it.stack = append(it.stack, children[i])
	}
	return TestNode{plan: it.plan, idx: idx}, true
}

// engineFor returns the engine that contributed the given root node.
func (p *TestPlan) engineFor(root TestNode) engine.TestEngine {
	return p.arena[root.idx].engine
}

// rootDescriptor returns the pruned descriptor tree behind a root node, for
// handing back to its engine at execution time.
func (p *TestPlan) rootDescriptor(root TestNode) *engine.TestDescriptor {
	return p.arena[root.idx].descriptor
}

// UniqueID returns the node's hierarchical identifier.
func (n TestNode) UniqueID() engine.UniqueID {
	return n.plan.arena[n.idx].descriptor.UniqueID()
}

// DisplayName returns the node's human-readable name.
func (n TestNode) DisplayName() string {
	return n.plan.arena[n.idx].descriptor.DisplayName()
}

// Type returns the node's container/test classification.
func (n TestNode) Type() engine.DescriptorType {
	return n.plan.arena[n.idx].descriptor.Type()
}

// IsContainer reports whether the node may have children.
func (n TestNode) IsContainer() bool { return n.Type().IsContainer() }

// IsTest reports whether the node is independently executable.
func (n TestNode) IsTest() bool { return n.Type().IsTest() }

// Tags returns the tags attached directly to the node.
func (n TestNode) Tags() []string {
	return n.plan.arena[n.idx].descriptor.Tags()
}

// Source returns the node's source location, or nil.
func (n TestNode) Source() engine.TestSource {
	return n.plan.arena[n.idx].descriptor.Source()
}

// Parent returns the node's parent, or ok=false for engine roots.
func (n TestNode) Parent() (TestNode, bool) {
	parent := n.plan.arena[n.idx].parent
	if parent < 0 {
		return TestNode{}, false
	}
	return TestNode{plan: n.plan, idx: parent}, true
}

// Children returns the node's ordered children.
func (n TestNode) Children() []TestNode {
	childIdxs := n.plan.arena[n.idx].children
	children := make([]TestNode, 0, len(childIdxs))
	for _, idx := range childIdxs {
		children = append(children, TestNode{plan: n.plan, idx: idx})
	}
	return children
}

func (n TestNode) String() string {
	return n.plan.arena[n.idx].descriptor.String()
}
