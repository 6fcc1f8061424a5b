package engine

import "fmt"

// Status is the terminal state of one executed node.
type Status int

const (
	StatusSuccessful Status = iota
	StatusFailed
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusSuccessful:
		return "successful"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ExecutionResult is the payload of a finished event: a terminal status plus
// an optional cause for failed or aborted nodes.
type ExecutionResult struct {
	status Status
	cause  error
}

// Successful creates a result for a node that completed normally.
func Successful() ExecutionResult {
	return ExecutionResult{status: StatusSuccessful}
}

// Failed creates a result for a node that failed.
func Failed(cause error) ExecutionResult {
	return ExecutionResult{status: StatusFailed, cause: cause}
}

// Aborted creates a result for a node whose execution was given up on before
// a verdict could be reached, for example because a precondition did not
// hold.
func Aborted(cause error) ExecutionResult {
	return ExecutionResult{status: StatusAborted, cause: cause}
}

// Status returns the terminal status.
func (r ExecutionResult) Status() Status { return r.status }

// Cause returns the error behind a failed or aborted result, or nil.
func (r ExecutionResult) Cause() error { return r.cause }

func (r ExecutionResult) String() string {
	if r.cause == nil {
		return r.status.String()
	}
	return fmt.Sprintf("%s: %s", r.status, r.cause)
}
