package clientengine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

// runFunc is the wrapped execution function: it dispatches the command and
// parses the reply into the call's result value.
type runFunc func(ctx context.Context, cmd *kvdriver.Command) (any, error)

// liveInterceptor pairs a per-call interceptor instance with its timer.
type liveInterceptor struct {
	instance kvdriver.Interceptor
	started  time.Time
}

// execute runs one command through the pipeline: prefixing, interceptor
// Before hooks, the dispatch itself (skipped when an interceptor
// substituted the result), interceptor After hooks, and the trace
// notification. The execution error, if any, is returned to the caller as
// the same value the interceptors observed.
func (c *Client) execute(
	ctx context.Context,
	cmd *kvdriver.Command,
	resultType reflect.Type,
	run runFunc,
) (any, error) {

	cmd.SetKeyPrefix(c.keyPrefix)

	factories := c.interceptorFactories()
	traced := c.traces.HasSubscribers()

	// Hot path for the default configuration: one bare dispatch, no timers,
	// no per-call bookkeeping.
	if len(factories) == 0 && !traced && !c.observed() {
		return run(ctx, cmd)
	}

	return c.executeInstrumented(ctx, cmd, resultType, run, factories, traced)
}

// executeInstrumented is the slow path of execute; see there.
func (c *Client) executeInstrumented(
	ctx context.Context,
	cmd *kvdriver.Command,
	resultType reflect.Type,
	run runFunc,
	factories []kvdriver.InterceptorFactory,
	traced bool,
) (any, error) {

	started := time.Now()
	ctx, span := c.startCommandSpan(ctx, cmd)

	live := make([]liveInterceptor, 0, len(factories))
	var substitute any
	intercepted := false

	for _, factory := range factories {
		instance := factory()
		instanceStarted := time.Now()

		call := &kvdriver.CallContext{Command: cmd}
		instance.Before(call)

		// Every Before hook runs; the last type-matching assignment wins.
		if v, set := call.Result(); set && matchesResultType(v, resultType) {
			substitute = v
			intercepted = true
		}

		live = append(live, liveInterceptor{instance: instance, started: instanceStarted})
	}

	var value any
	var runErr error

	if intercepted {
		value = substitute
	} else {
		value, runErr = run(ctx, cmd)
	}

	outcome := kvdriver.Outcome{Value: value, Err: runErr}

	// Exactly one After per instance, in Before order, error or not.
	for _, l := range live {
		l.instance.After(outcome, time.Since(l.started))
	}

	elapsed := time.Since(started)

	if traced {
		c.traces.Publish(kvdriver.CommandTrace{
			Host:    hostLabel(cmd),
			Elapsed: elapsed,
			Command: cmd.String(),
			Result:  renderOutcome(outcome),
		})
	}

	c.logCommand(ctx, cmd, elapsed, runErr)
	c.recordCommandMetrics(ctx, cmd, elapsed, runErr)
	c.finishCommandSpan(span, runErr)

	if runErr != nil {
		return nil, runErr
	}

	return value, nil
}

// matchesResultType reports whether a substitute value satisfies the
// call's expected result type.
func matchesResultType(v any, resultType reflect.Type) bool {
	if v == nil || resultType == nil {
		return false
	}

	return reflect.TypeOf(v).AssignableTo(resultType)
}

// hostLabel returns the command's destination host for traces.
func hostLabel(cmd *kvdriver.Command) string {
	if host := cmd.Host(); host != "" {
		return host
	}

	return kvdriver.NotConnectedHost
}

// renderOutcome renders a call outcome for the trace record: the error
// message for failures, a bracketed comma-joined list for array results,
// and the plain textual form otherwise. A byte-slice payload is a single
// wire value, not an array of elements, so it renders as its text.
func renderOutcome(outcome kvdriver.Outcome) string {
	if outcome.Err != nil {
		return outcome.Err.Error()
	}

	if data, ok := outcome.Value.([]byte); ok {
		return string(data)
	}

	rv := reflect.ValueOf(outcome.Value)
	if outcome.Value != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		var b strings.Builder
		b.WriteByte('[')

		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(fmt.Sprint(rv.Index(i).Interface()))
		}

		b.WriteByte(']')

		return b.String()
	}

	return fmt.Sprint(outcome.Value)
}
