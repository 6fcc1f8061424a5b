// Package engine defines the contract between the launcher and pluggable
// test engines: the selector and filter model that describes what to
// discover, the descriptor trees engines produce, and the event sink through
// which engines report execution lifecycle transitions.
package engine

// DiscoveryRequest is the read-only view of a launcher discovery request
// that an engine receives. Selector order is the order of registration on
// the request builder; engines that resolve incrementally may rely on it.
type DiscoveryRequest interface {
	// Selectors returns the ordered selectors the engine should resolve.
	Selectors() []DiscoverySelector

	// DiscoveryFilters returns the filters the engine must apply during its
	// own resolution step. Applying them early lets the engine prune
	// candidates before building descriptor subtrees.
	DiscoveryFilters() []DiscoveryFilter

	// ConfigurationParameters returns the request's configuration map.
	ConfigurationParameters() ConfigurationParameters
}

// EventSink receives lifecycle transitions while an engine executes its
// subtree. Implementations provided by the launcher are safe for concurrent
// calls, so an engine that parallelizes internally may report from multiple
// goroutines; the engine remains responsible for the nesting order of its
// events (a node starts before any of its children, and finishes after all
// of them).
type EventSink interface {
	// Started reports that execution of a node has begun.
	Started(id UniqueID)

	// Skipped reports that a node and its entire subtree were not executed.
	// No other events may be reported for the node afterwards.
	Skipped(id UniqueID, reason string)

	// Finished reports the terminal state of a node that was started.
	Finished(id UniqueID, result ExecutionResult)
}

// ExecutionRequest is everything an engine needs to execute a previously
// discovered subtree.
type ExecutionRequest struct {
	// Root is the engine's own root descriptor from the test plan, already
	// filtered. Engines must not execute nodes that are no longer in this
	// tree.
	Root *TestDescriptor

	// Sink receives one event per lifecycle transition. Never nil.
	Sink EventSink

	// Config is the configuration map of the originating discovery request.
	Config ConfigurationParameters
}

// TestEngine is a pluggable adapter for one test framework. Implementations
// are registered with the launcher's engine registry at process start and
// must be safe for use by concurrent discovery and execution requests.
type TestEngine interface {
	// ID returns the stable identifier of this engine. It becomes the first
	// segment of every unique id the engine contributes.
	ID() string

	// Discover resolves the request into a descriptor tree. The returned
	// root's unique id must equal NewEngineUniqueID(ID()). A nil root means
	// the engine found nothing. An error discards the engine's contribution
	// for this request without affecting other engines.
	Discover(request DiscoveryRequest) (*TestDescriptor, error)

	// Execute runs the subtree in request.Root, reporting every lifecycle
	// transition through request.Sink. How nodes run, and whether they run
	// concurrently, is entirely up to the engine. A returned error marks
	// the engine's whole subtree as failed.
	Execute(request ExecutionRequest) error
}
