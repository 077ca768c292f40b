package clientengine

import (
	"context"
	"math"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

// observed reports whether any observability collaborator is configured;
// if none is, the pipeline takes its fast path.
func (c *Client) observed() bool {
	return c.logger != nil || c.contextualLogger != nil || c.metricsCollector != nil || c.tracingCollector != nil
}

// logCommand logs one completed command at debug level, or at error level
// when the dispatch failed.
func (c *Client) logCommand(ctx context.Context, cmd *kvdriver.Command, elapsed time.Duration, err error) {
	if err != nil {
		c.logError(ctx, logMsgCommandFailed, err, logAttrCommand, cmd.String(), logAttrHost, hostLabel(cmd))
		return
	}

	args := []any{
		logAttrDurationMS, toMilliseconds(elapsed),
		logAttrCommand, cmd.String(),
	}

	if c.logger != nil {
		c.logger.Debug(logMsgCommandExecuted+cmd.Name(), args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, logMsgCommandExecuted+cmd.Name(), args...)
	}
}

// logError logs error information if a logger is configured.
func (c *Client) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.logger != nil {
		c.logger.Error(message, allArgs...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// logWarn logs non-critical issues if a logger is configured.
func (c *Client) logWarn(message string, err error) {
	if c.logger != nil {
		c.logger.Warn(message, logAttrError, err.Error())
	}

	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(context.Background(), message, logAttrError, err.Error())
	}
}

// recordCommandMetrics records the duration histogram and, on failure, the
// error counter for one command, if a collector is configured.
func (c *Client) recordCommandMetrics(ctx context.Context, cmd *kvdriver.Command, elapsed time.Duration, err error) {
	if c.metricsCollector == nil {
		return
	}

	status := statusSuccess
	if err != nil {
		status = statusError
	}

	labels := map[string]string{
		spanAttrCommand: cmd.Name(),
		spanAttrStatus:  status,
	}

	if contextual, ok := c.metricsCollector.(kvdriver.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricCommandDuration, elapsed, labels)
	} else {
		c.metricsCollector.RecordDuration(metricCommandDuration, elapsed, labels)
	}

	if err == nil {
		return
	}

	if contextual, ok := c.metricsCollector.(kvdriver.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricCommandErrors, labels)
	} else {
		c.metricsCollector.IncrementCounter(metricCommandErrors, labels)
	}
}

// startCommandSpan starts a tracing span if a tracing collector is
// configured.
func (c *Client) startCommandSpan(ctx context.Context, cmd *kvdriver.Command) (context.Context, kvdriver.SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, spanNameCommand, map[string]string{
		spanAttrCommand: cmd.Name(),
	})
}

// finishCommandSpan finishes a tracing span with the call's final status.
func (c *Client) finishCommandSpan(span kvdriver.SpanContext, err error) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		span.SetStatus(statusError)
		c.tracingCollector.FinishSpan(span, statusError, map[string]string{spanAttrErrorType: err.Error()})

		return
	}

	span.SetStatus(statusSuccess)
	c.tracingCollector.FinishSpan(span, statusSuccess, nil)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3
// decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
