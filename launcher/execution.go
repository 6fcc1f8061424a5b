package launcher

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/logging"
)

// broadcaster relays events to every registered listener in registration
// order. Delivery of one event is serialized under the mutex, so listeners
// never see two events concurrently even when an engine reports from
// several goroutines. A panicking listener is recorded and skipped for that
// event only.
type broadcaster struct {
	listeners []TestExecutionListener
	logger    logging.Logger

	mu   sync.Mutex
	errs *multierror.Error
}

func newBroadcaster(listeners []TestExecutionListener, logger logging.Logger) *broadcaster {
	return &broadcaster{listeners: listeners, logger: logger}
}

func (b *broadcaster) each(event string, deliver func(TestExecutionListener)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		b.deliverProtected(i, event, listener, deliver)
	}
}

func (b *broadcaster) deliverProtected(
	i int,
	event string,
	listener TestExecutionListener,
	deliver func(TestExecutionListener),
) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("listener %d panicked during %s: %v", i, event, r)
			b.logger.Printf("%s", err)
			b.errs = multierror.Append(b.errs, err)
		}
	}()
	deliver(listener)
}

func (b *broadcaster) addFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger.Printf("%s", err)
	b.errs = multierror.Append(b.errs, err)
}

func (b *broadcaster) failures() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errs.ErrorOrNil()
}

func (b *broadcaster) executionStarted(plan *TestPlan) {
	b.each("ExecutionStarted", func(l TestExecutionListener) { l.ExecutionStarted(plan) })
}

func (b *broadcaster) executionFinished(plan *TestPlan) {
	b.each("ExecutionFinished", func(l TestExecutionListener) { l.ExecutionFinished(plan) })
}

func (b *broadcaster) nodeStarted(node TestNode) {
	b.each("NodeStarted", func(l TestExecutionListener) { l.NodeStarted(node) })
}

func (b *broadcaster) nodeSkipped(node TestNode, reason string) {
	b.each("NodeSkipped", func(l TestExecutionListener) { l.NodeSkipped(node, reason) })
}

func (b *broadcaster) nodeFinished(node TestNode, result engine.ExecutionResult) {
	b.each("NodeFinished", func(l TestExecutionListener) { l.NodeFinished(node, result) })
}

// listenerSink is the engine.EventSink handed to one engine's Execute call.
// It resolves reported ids against the plan, tracks which nodes have been
// started and finished, and forwards everything to the broadcaster. Safe
// for concurrent reporting from one engine's internal workers.
type listenerSink struct {
	plan      *TestPlan
	broadcast *broadcaster
	engineID  string

	mu       sync.Mutex
	started  map[string]bool
	finished map[string]bool
}

func newListenerSink(plan *TestPlan, broadcast *broadcaster, engineID string) *listenerSink {
	return &listenerSink{
		plan:      plan,
		broadcast: broadcast,
		engineID:  engineID,
		started:   make(map[string]bool),
		finished:  make(map[string]bool),
	}
}

func (s *listenerSink) Started(id engine.UniqueID) {
	node, ok := s.resolve(id, "started")
	if !ok {
		return
	}
	s.mu.Lock()
	s.started[id.String()] = true
	s.mu.Unlock()
	s.broadcast.nodeStarted(node)
}

func (s *listenerSink) Skipped(id engine.UniqueID, reason string) {
	node, ok := s.resolve(id, "skipped")
	if !ok {
		return
	}
	s.mu.Lock()
	s.finished[id.String()] = true
	s.mu.Unlock()
	s.broadcast.nodeSkipped(node, reason)
}

func (s *listenerSink) Finished(id engine.UniqueID, result engine.ExecutionResult) {
	node, ok := s.resolve(id, "finished")
	if !ok {
		return
	}
	s.mu.Lock()
	s.finished[id.String()] = true
	s.mu.Unlock()
	s.broadcast.nodeFinished(node, result)
}

func (s *listenerSink) resolve(id engine.UniqueID, event string) (TestNode, bool) {
	node, err := s.plan.Get(id)
	if err != nil {
		s.broadcast.addFailure(fmt.Errorf(
			"engine %q reported a %s event for a node that is not in the plan: %s",
			s.engineID, event, id))
		return TestNode{}, false
	}
	return node, true
}

// engineFailed converts an error returned by an engine's Execute call into
// terminal lifecycle events for the engine's root, unless the engine already
// reported the root terminal itself.
func (s *listenerSink) engineFailed(root TestNode, cause error) {
	key := root.UniqueID().String()
	s.mu.Lock()
	alreadyStarted := s.started[key]
	alreadyFinished := s.finished[key]
	s.mu.Unlock()

	if alreadyFinished {
		s.broadcast.addFailure(fmt.Errorf(
			"engine %q failed after reporting its root terminal: %w", s.engineID, cause))
		return
	}
	if !alreadyStarted {
		s.Started(root.UniqueID())
	}
	s.Finished(root.UniqueID(), engine.Failed(cause))
}
