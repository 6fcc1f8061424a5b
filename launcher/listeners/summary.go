package listeners

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/launcher"
)

// Summary aggregates the outcome of a run. The launcher core never builds a
// result object of its own; counting is a listener concern, and Summary is
// the stock implementation of it.
//
// Safe for concurrent events within an engine's dispatch window.
type Summary struct {
	mu        sync.Mutex
	startedAt time.Time
	duration  time.Duration

	TestsStarted    int
	TestsSucceeded  int
	TestsFailed     int
	TestsAborted    int
	TestsSkipped    int
	ContainersRun   int
	Failures        []Failure
}

// Failure records one failed or aborted executable node.
type Failure struct {
	ID     engine.UniqueID
	Result engine.ExecutionResult
}

func (s *Summary) ExecutionStarted(*launcher.TestPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = time.Now()
}

func (s *Summary) ExecutionFinished(*launcher.TestPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = time.Since(s.startedAt)
}

func (s *Summary) NodeStarted(node launcher.TestNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if node.IsTest() {
		s.TestsStarted++
	} else {
		s.ContainersRun++
	}
}

func (s *Summary) NodeSkipped(node launcher.TestNode, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if node.IsTest() {
		s.TestsSkipped++
	}
}

func (s *Summary) NodeFinished(node launcher.TestNode, result engine.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !node.IsTest() {
		return
	}
	switch result.Status() {
	case engine.StatusSuccessful:
		s.TestsSucceeded++
	case engine.StatusFailed:
		s.TestsFailed++
		s.Failures = append(s.Failures, Failure{ID: node.UniqueID(), Result: result})
	case engine.StatusAborted:
		s.TestsAborted++
		s.Failures = append(s.Failures, Failure{ID: node.UniqueID(), Result: result})
	}
}

// OK reports whether the run had no failed and no aborted tests.
func (s *Summary) OK() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TestsFailed == 0 && s.TestsAborted == 0
}

// Duration returns the wall-clock time between ExecutionStarted and
// ExecutionFinished.
func (s *Summary) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// WriteTable renders the counters as a table.
func (s *Summary) WriteTable(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "Count"})
	t.AppendRows([]table.Row{
		{"Tests started", s.TestsStarted},
		{"Tests succeeded", s.TestsSucceeded},
		{"Tests failed", s.TestsFailed},
		{"Tests aborted", s.TestsAborted},
		{"Tests skipped", s.TestsSkipped},
		{"Containers run", s.ContainersRun},
	})
	t.Render()

	if len(s.Failures) != 0 {
		f := table.NewWriter()
		f.SetOutputMirror(w)
		f.AppendHeader(table.Row{"Failed node", "Result"})
		for _, failure := range s.Failures {
			f.AppendRow(table.Row{failure.ID.String(), failure.Result.String()})
		}
		f.Render()
	}
}
