// Package launcher discovers and executes tests across independent test
// engines. It turns a declarative DiscoveryRequest into a read-only TestPlan
// by asking every eligible registered engine to resolve the request, merging
// the per-engine descriptor trees, and applying post-discovery filters; it
// then drives execution of a plan engine by engine, relaying every lifecycle
// event to registered listeners.
//
// The launcher never interprets selectors and never runs test code itself;
// both are entirely engine concerns.
package launcher

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/logging"
)

// Config carries the collaborators of a Launcher.
type Config struct {
	// Registry holds the available engines. Required.
	Registry *EngineRegistry

	// Listeners are notified of every lifecycle event of every execution
	// run. More may be added with RegisterListeners before Execute.
	Listeners []TestExecutionListener

	// Logger receives orchestration tracing. Defaults to a null logger.
	Logger logging.Logger
}

// Launcher is the orchestration entry point. It is safe for concurrent use
// once constructed, as long as RegisterListeners is not called while an
// execution is in flight.
type Launcher struct {
	registry  *EngineRegistry
	listeners []TestExecutionListener
	logger    logging.Logger
}

// New creates a Launcher.
func New(config Config) (*Launcher, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("launcher requires an engine registry")
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Launcher{
		registry:  config.Registry,
		listeners: append([]TestExecutionListener(nil), config.Listeners...),
		logger:    logger,
	}, nil
}

// RegisterListeners adds listeners that will observe subsequent executions.
// Registering a listener while an execution is in flight has undefined
// effect on that run.
func (l *Launcher) RegisterListeners(listeners ...TestExecutionListener) {
	l.listeners = append(l.listeners, listeners...)
}

// Discover resolves the request with every eligible engine and returns the
// merged, filtered plan. The returned plan is always usable; the error, if
// any, aggregates the failures of individual engines whose contributions
// were discarded.
func (l *Launcher) Discover(request *DiscoveryRequest) (*TestPlan, error) {
	if request == nil {
		return nil, fmt.Errorf("discovery request must not be nil")
	}
	return discoverPlan(l.registry, request, l.logger)
}

// Execute discovers a fresh plan from the request and executes it. Engines
// whose discovery failed contribute nothing to the run; their failures are
// aggregated into the returned error together with any execution-time
// listener failures.
func (l *Launcher) Execute(request *DiscoveryRequest, extraListeners ...TestExecutionListener) error {
	plan, discoveryErr := l.Discover(request)
	if plan == nil {
		return discoveryErr
	}
	var errs *multierror.Error
	errs = multierror.Append(errs, discoveryErr)
	errs = multierror.Append(errs, l.ExecutePlan(plan, extraListeners...))
	return errs.ErrorOrNil()
}

// ExecutePlan executes a previously discovered plan exactly as it is: no
// re-discovery, no re-filtering. Each engine subtree is dispatched to its
// engine sequentially, in the plan's engine order; the launcher blocks until
// each engine returns.
//
// The returned error aggregates listener failures and engine protocol
// violations observed during the run. Test failures are not errors here;
// they are reported through the listeners' terminal events.
func (l *Launcher) ExecutePlan(plan *TestPlan, extraListeners ...TestExecutionListener) error {
	if plan == nil {
		return fmt.Errorf("test plan must not be nil")
	}
	listeners := append(append([]TestExecutionListener(nil), l.listeners...), extraListeners...)
	broadcast := newBroadcaster(listeners, l.logger)

	roots := plan.Roots()
	l.logger.Printf("executing test plan: %d node(s) across %d engine(s)", plan.Size(), len(roots))

	broadcast.executionStarted(plan)
	for _, root := range roots {
		eng := plan.engineFor(root)
		sink := newListenerSink(plan, broadcast, eng.ID())
		l.logger.Printf("dispatching subtree %s to engine %q", root.UniqueID(), eng.ID())
		if err := executeWithEngine(eng, engine.ExecutionRequest{
			Root:   plan.rootDescriptor(root),
			Sink:   sink,
			Config: plan.ConfigurationParameters(),
		}); err != nil {
			sink.engineFailed(root, err)
		}
	}
	broadcast.executionFinished(plan)

	return broadcast.failures()
}

// executeWithEngine invokes one engine's execution operation, converting a
// panic into an error so a misbehaving engine cannot abort the whole run.
func executeWithEngine(eng engine.TestEngine, request engine.ExecutionRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("execution panicked: %v", r)
		}
	}()
	return eng.Execute(request)
}
