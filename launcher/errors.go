package launcher

import "errors"

// ErrPreconditionViolation marks malformed input to the request builder,
// such as a blank configuration key or a filter that carries none of the
// recognized roles. Errors returned by RequestBuilder.Build wrap it.
var ErrPreconditionViolation = errors.New("precondition violation")

// ErrNodeNotFound is wrapped by TestPlan.Get when no node carries the
// requested unique id.
var ErrNodeNotFound = errors.New("no such node in test plan")
