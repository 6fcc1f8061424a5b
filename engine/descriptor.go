package engine

import "fmt"

// DescriptorType classifies a descriptor node as a container of other nodes,
// an executable test, or both at once.
type DescriptorType int

const (
	TypeContainer DescriptorType = iota
	TypeTest
	TypeContainerAndTest
)

// IsContainer reports whether nodes of this type may have children.
func (t DescriptorType) IsContainer() bool {
	return t == TypeContainer || t == TypeContainerAndTest
}

// IsTest reports whether nodes of this type are independently executable.
func (t DescriptorType) IsTest() bool {
	return t == TypeTest || t == TypeContainerAndTest
}

func (t DescriptorType) String() string {
	switch t {
	case TypeContainer:
		return "container"
	case TypeTest:
		return "test"
	case TypeContainerAndTest:
		return "container+test"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// TestSource points at where a test or container came from. The launcher
// treats sources as opaque; only engines and listeners interpret them.
type TestSource interface {
	fmt.Stringer
}

// FileSource locates a node in a source file.
type FileSource struct {
	Path string
	Line int
}

func (s FileSource) String() string {
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d", s.Path, s.Line)
	}
	return s.Path
}

// ClassSource locates a node in a class or suite.
type ClassSource struct {
	ClassName string
}

func (s ClassSource) String() string { return s.ClassName }

// MethodSource locates a node in a single method of a class or suite.
type MethodSource struct {
	ClassName  string
	MethodName string
}

func (s MethodSource) String() string { return s.ClassName + "#" + s.MethodName }

// TestDescriptor is one node of the tree an engine produces during
// discovery. The engine that created a descriptor owns it until the launcher
// merges it into a test plan; from then on the tree is read-only.
type TestDescriptor struct {
	id          UniqueID
	displayName string
	dtype       DescriptorType
	tags        []string
	source      TestSource
	parent      *TestDescriptor
	children    []*TestDescriptor
}

// NewContainer creates a descriptor for a node that groups other nodes and is
// not independently executable.
func NewContainer(id UniqueID, displayName string) *TestDescriptor {
	return NewDescriptor(id, displayName, TypeContainer)
}

// NewTest creates a descriptor for an executable leaf.
func NewTest(id UniqueID, displayName string) *TestDescriptor {
	return NewDescriptor(id, displayName, TypeTest)
}

// NewDescriptor creates a descriptor of the given type.
func NewDescriptor(id UniqueID, displayName string, dtype DescriptorType) *TestDescriptor {
	return &TestDescriptor{id: id, displayName: displayName, dtype: dtype}
}

// UniqueID returns the hierarchical identifier of this node.
func (d *TestDescriptor) UniqueID() UniqueID { return d.id }

// DisplayName returns the human-readable name of this node.
func (d *TestDescriptor) DisplayName() string { return d.displayName }

// Type returns the container/test classification of this node.
func (d *TestDescriptor) Type() DescriptorType { return d.dtype }

// Source returns the source location of this node, or nil if the engine did
// not attach one.
func (d *TestDescriptor) Source() TestSource { return d.source }

// SetSource attaches a source location.
func (d *TestDescriptor) SetSource(source TestSource) { d.source = source }

// AddTags appends tags to this node. Blank tags are ignored.
func (d *TestDescriptor) AddTags(tags ...string) {
	for _, tag := range tags {
		if tag != "" {
			d.tags = append(d.tags, tag)
		}
	}
}

// Tags returns the tags attached directly to this node.
func (d *TestDescriptor) Tags() []string {
	return append([]string(nil), d.tags...)
}

// EffectiveTags returns this node's own tags plus all tags inherited from its
// ancestors, in root-first order.
func (d *TestDescriptor) EffectiveTags() []string {
	if d.parent == nil {
		return d.Tags()
	}
	return append(d.parent.EffectiveTags(), d.tags...)
}

// Parent returns the node this descriptor was attached to, or nil for roots.
func (d *TestDescriptor) Parent() *TestDescriptor { return d.parent }

// Children returns the ordered child nodes. The returned slice is a copy.
func (d *TestDescriptor) Children() []*TestDescriptor {
	return append([]*TestDescriptor(nil), d.children...)
}

// AddChild attaches a child node. The child's unique id must extend this
// node's id, and no sibling may already carry the same id; both rules keep
// every descriptor tree consistent with the id hierarchy the test plan is
// indexed by.
func (d *TestDescriptor) AddChild(child *TestDescriptor) error {
	if child == nil {
		return fmt.Errorf("child must not be nil")
	}
	if len(child.id) <= len(d.id) || !child.id.HasPrefix(d.id) {
		return fmt.Errorf("child id %q does not extend parent id %q", child.id, d.id)
	}
	for _, existing := range d.children {
		if existing.id.Equals(child.id) {
			return fmt.Errorf("duplicate child id %q under %q", child.id, d.id)
		}
	}
	child.parent = d
	d.children = append(d.children, child)
	return nil
}

// Prune returns a copy of this tree containing only the nodes that survive
// the keep predicate. A node survives if keep(node) is true or if at least
// one of its children survives; a dropped node drops its entire subtree.
// Prune returns nil when nothing survives. The receiver is not modified.
func (d *TestDescriptor) Prune(keep func(*TestDescriptor) bool) *TestDescriptor {
	var keptChildren []*TestDescriptor
	for _, child := range d.children {
		if kept := child.Prune(keep); kept != nil {
			keptChildren = append(keptChildren, kept)
		}
	}
	if len(keptChildren) == 0 && !keep(d) {
		return nil
	}
	clone := &TestDescriptor{
		id:          d.id,
		displayName: d.displayName,
		dtype:       d.dtype,
		tags:        append([]string(nil), d.tags...),
		source:      d.source,
	}
	for _, child := range keptChildren {
		child.parent = clone
		clone.children = append(clone.children, child)
	}
	return clone
}

func (d *TestDescriptor) String() string {
	return fmt.Sprintf("%s %q (%s)", d.id, d.displayName, d.dtype)
}
