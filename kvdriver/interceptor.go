package kvdriver

import (
	"time"
)

// Interceptor is a per-call hook around command execution.
//
// Before runs ahead of execution and may substitute the call's result via
// the CallContext; After observes the single CallOutcome of the call. An
// Interceptor instance lives for exactly one call: it is constructed from
// its factory at the start of the Before stage, receives exactly one After
// invocation, and is then discarded. It is never shared across calls.
type Interceptor interface {
	Before(call *CallContext)
	After(outcome Outcome, elapsed time.Duration)
}

// InterceptorFactory constructs a fresh Interceptor instance for one call.
// Factories are invoked in registration order on every instrumented call.
type InterceptorFactory func() Interceptor

// CallContext is the mutable context handed to an Interceptor's Before
// hook. It exposes the command being executed and a settable slot for a
// substitute result.
type CallContext struct {
	Command *Command

	result    any
	resultSet bool
}

// SetResult fills the substitute-value slot. If the value's type matches
// the call's expected result type, execution is skipped and the value
// becomes the call's outcome. A later interceptor in the same call may
// overwrite the slot; the last successful assignment wins.
func (cc *CallContext) SetResult(v any) {
	cc.result = v
	cc.resultSet = true
}

// Result returns the substitute value and whether the slot was set.
func (cc *CallContext) Result() (any, bool) {
	return cc.result, cc.resultSet
}

// Outcome is the single result of one call: either a value or an error,
// never both. It is produced once by the execution stage and observed by
// every interceptor's After hook and by the notification stream.
type Outcome struct {
	Value any
	Err   error
}
