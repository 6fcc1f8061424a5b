package launcher

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/internal/testengine"
)

// recordingListener captures the ordered event stream of a run.
type recordingListener struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingListener) record(format string, args ...interface{}) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recordingListener) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingListener) ExecutionStarted(plan *TestPlan)  { r.record("run started") }
func (r *recordingListener) ExecutionFinished(plan *TestPlan) { r.record("run finished") }
func (r *recordingListener) NodeStarted(node TestNode) {
	r.record("started %s", node.UniqueID())
}
func (r *recordingListener) NodeSkipped(node TestNode, reason string) {
	r.record("skipped %s (%s)", node.UniqueID(), reason)
}
func (r *recordingListener) NodeFinished(node TestNode, result engine.ExecutionResult) {
	r.record("finished %s: %s", node.UniqueID(), result.Status())
}

func fixtureEngine() *testengine.Engine {
	return &testengine.Engine{
		EngineID: "fakeunit",
		Nodes: []testengine.Node{
			testengine.Suite("ParserTests",
				testengine.Test("ok"),
				testengine.Node{Name: "bad", Outcome: testengine.Fail},
				testengine.Node{Name: "later", Outcome: testengine.Skip, SkipReason: "flaky"},
			),
		},
	}
}

func TestExecuteReportsFullLifecycle(t *testing.T) {
	listener := &recordingListener{}
	l := newLauncher(t, nil, fixtureEngine())
	l.RegisterListeners(listener)

	require.NoError(t, l.Execute(mustBuild(t, NewRequestBuilder())))

	assert.Equal(t, []string{
		"run started",
		"started [engine:fakeunit]",
		"started [engine:fakeunit]/[suite:ParserTests]",
		"started [engine:fakeunit]/[suite:ParserTests]/[test:ok]",
		"finished [engine:fakeunit]/[suite:ParserTests]/[test:ok]: successful",
		"started [engine:fakeunit]/[suite:ParserTests]/[test:bad]",
		"finished [engine:fakeunit]/[suite:ParserTests]/[test:bad]: failed",
		"skipped [engine:fakeunit]/[suite:ParserTests]/[test:later] (flaky)",
		"finished [engine:fakeunit]/[suite:ParserTests]: successful",
		"finished [engine:fakeunit]: successful",
		"run finished",
	}, listener.Events())
}

func TestExecutePlanMatchesExecuteRequest(t *testing.T) {
	request := mustBuild(t, NewRequestBuilder())

	direct := &recordingListener{}
	l1 := newLauncher(t, nil, fixtureEngine())
	require.NoError(t, l1.Execute(request, direct))

	viaPlan := &recordingListener{}
	l2 := newLauncher(t, nil, fixtureEngine())
	plan, err := l2.Discover(request)
	require.NoError(t, err)
	require.NoError(t, l2.ExecutePlan(plan, viaPlan))

	assert.Equal(t, direct.Events(), viaPlan.Events())
}

func TestAllListenersReceiveIdenticalSequences(t *testing.T) {
	first := &recordingListener{}
	second := &recordingListener{}
	l := newLauncher(t, nil, fixtureEngine())
	l.RegisterListeners(first, second)

	require.NoError(t, l.Execute(mustBuild(t, NewRequestBuilder())))

	assert.NotEmpty(t, first.Events())
	assert.Equal(t, first.Events(), second.Events())
}

// failingListener panics on every node event.
type failingListener struct{ ListenerFuncs }

func (f failingListener) NodeStarted(TestNode) { panic("listener bug") }

func TestListenerFailureDoesNotBlockOthers(t *testing.T) {
	healthy := &recordingListener{}
	l := newLauncher(t, nil, fixtureEngine())
	l.RegisterListeners(failingListener{}, healthy)

	err := l.Execute(mustBuild(t, NewRequestBuilder()))

	// The failure is reported after the run, and the healthy listener saw
	// the complete sequence.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener bug")
	assert.Contains(t, healthy.Events(), "run finished")
	assert.Contains(t, healthy.Events(), "finished [engine:fakeunit]: successful")
}

func TestEngineExecutionFailureMarksRootFailed(t *testing.T) {
	listener := &recordingListener{}
	l := newLauncher(t, nil, &testengine.Engine{
		EngineID:         "broken",
		Nodes:            []testengine.Node{testengine.Test("t")},
		ExecuteErr:       errors.New("engine crashed"),
		FailBeforeEvents: true,
	})
	l.RegisterListeners(listener)

	require.NoError(t, l.Execute(mustBuild(t, NewRequestBuilder())))

	assert.Equal(t, []string{
		"run started",
		"started [engine:broken]",
		"finished [engine:broken]: failed",
		"run finished",
	}, listener.Events())
}

func TestPanickingEngineExecutionMarksRootFailed(t *testing.T) {
	listener := &recordingListener{}
	l := newLauncher(t, nil, &executePanicEngine{})
	l.RegisterListeners(listener)

	require.NoError(t, l.Execute(mustBuild(t, NewRequestBuilder())))
	assert.Contains(t, listener.Events(), "finished [engine:volatile]: failed")
}

type executePanicEngine struct{}

func (e *executePanicEngine) ID() string { return "volatile" }
func (e *executePanicEngine) Discover(engine.DiscoveryRequest) (*engine.TestDescriptor, error) {
	root := engine.NewContainer(engine.NewEngineUniqueID("volatile"), "volatile")
	test := engine.NewTest(root.UniqueID().Append("test", "t"), "t")
	if err := root.AddChild(test); err != nil {
		return nil, err
	}
	return root, nil
}
func (e *executePanicEngine) Execute(engine.ExecutionRequest) error {
	panic("engine exploded")
}

func TestUnknownNodeEventsAreReportedNotDelivered(t *testing.T) {
	listener := &recordingListener{}
	l := newLauncher(t, nil, &rogueReportingEngine{})
	l.RegisterListeners(listener)

	err := l.Execute(mustBuild(t, NewRequestBuilder()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the plan")
	for _, event := range listener.Events() {
		assert.NotContains(t, event, "phantom")
	}
}

// rogueReportingEngine reports an event for a node it never discovered.
type rogueReportingEngine struct{}

func (e *rogueReportingEngine) ID() string { return "rogue" }
func (e *rogueReportingEngine) Discover(engine.DiscoveryRequest) (*engine.TestDescriptor, error) {
	root := engine.NewContainer(engine.NewEngineUniqueID("rogue"), "rogue")
	test := engine.NewTest(root.UniqueID().Append("test", "t"), "t")
	if err := root.AddChild(test); err != nil {
		return nil, err
	}
	return root, nil
}
func (e *rogueReportingEngine) Execute(request engine.ExecutionRequest) error {
	request.Sink.Started(request.Root.UniqueID())
	request.Sink.Started(engine.NewEngineUniqueID("rogue").Append("test", "phantom"))
	request.Sink.Finished(request.Root.UniqueID(), engine.Successful())
	return nil
}

func TestExecutionEventNestingWithParallelEngine(t *testing.T) {
	listener := &recordingListener{}
	eng := fixtureEngine()
	eng.Parallel = 4
	l := newLauncher(t, nil, eng)
	l.RegisterListeners(listener)

	require.NoError(t, l.Execute(mustBuild(t, NewRequestBuilder())))

	events := listener.Events()
	indexOf := func(needle string) int {
		for i, e := range events {
			if e == needle {
				return i
			}
		}
		t.Fatalf("event %q not found in %v", needle, events)
		return -1
	}

	rootStarted := indexOf("started [engine:fakeunit]")
	rootFinished := indexOf("finished [engine:fakeunit]: successful")
	suiteStarted := indexOf("started [engine:fakeunit]/[suite:ParserTests]")
	suiteFinished := indexOf("finished [engine:fakeunit]/[suite:ParserTests]: successful")
	okStarted := indexOf("started [engine:fakeunit]/[suite:ParserTests]/[test:ok]")
	okFinished := indexOf("finished [engine:fakeunit]/[suite:ParserTests]/[test:ok]: successful")

	assert.Less(t, rootStarted, suiteStarted)
	assert.Less(t, suiteStarted, okStarted)
	assert.Less(t, okStarted, okFinished)
	assert.Less(t, okFinished, suiteFinished)
	assert.Less(t, suiteFinished, rootFinished)
}

func TestExecuteAggregatesDiscoveryFailures(t *testing.T) {
	listener := &recordingListener{}
	l := newLauncher(t, nil,
		&testengine.Engine{EngineID: "sick", DiscoverErr: errors.New("no metadata")},
		fixtureEngine(),
	)
	l.RegisterListeners(listener)

	err := l.Execute(mustBuild(t, NewRequestBuilder()))

	// The healthy engine ran to completion; the sick one is in the error.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sick")
	assert.Contains(t, listener.Events(), "finished [engine:fakeunit]: successful")
}

func TestLauncherRequiresRegistry(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestExecutePlanRejectsNilPlan(t *testing.T) {
	l := newLauncher(t, nil, fixtureEngine())
	assert.Error(t, l.ExecutePlan(nil))
}
