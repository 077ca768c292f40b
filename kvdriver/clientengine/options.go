package clientengine

import (
	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

// Option defines a functional option for configuring a Client.
type Option func(*Client) error

// WithTableName sets the name of the key-value table for the SQL-backed
// constructors.
func WithTableName(tableName string) Option {
	return func(c *Client) error {
		if tableName == "" {
			return kvdriver.ErrEmptyKeyTableName
		}

		c.keyTableName = tableName

		return nil
	}
}

// WithKeyPrefix sets a prefix the pipeline prepends to every command key.
func WithKeyPrefix(prefix string) Option {
	return func(c *Client) error {
		c.keyPrefix = prefix
		return nil
	}
}

// WithReadOnlyMode puts the client into read-only connection mode: write
// commands fail with kvdriver.ErrClientReadOnly before the pipeline runs.
func WithReadOnlyMode() Option {
	return func(c *Client) error {
		c.readOnly = true
		return nil
	}
}

// WithCodec replaces the default wire codec, e.g. to install serialize and
// deserialize hooks or a non-UTF-8 text encoding.
func WithCodec(codec *kvdriver.Codec) Option {
	return func(c *Client) error {
		if codec == nil {
			return kvdriver.ErrNilCodec
		}

		c.codec = codec

		return nil
	}
}

// WithLogger sets the logger for the Client.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: executed commands with timing (development use)
// Warn level: non-critical issues like dispatcher close failures
// Error level: command dispatch failures.
func WithLogger(logger kvdriver.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Client. It
// receives the same messages as the plain logger plus the call context,
// enabling automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger kvdriver.ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Client. It receives
// per-command duration histograms and error counters.
func WithMetrics(collector kvdriver.MetricsCollector) Option {
	return func(c *Client) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Client. It receives one
// span per instrumented call, carrying the command name and final status.
func WithTracing(collector kvdriver.TracingCollector) Option {
	return func(c *Client) error {
		c.tracingCollector = collector
		return nil
	}
}

// WithInterceptorFactory registers an interceptor factory at construction
// time; equivalent to calling RegisterInterceptor on the built client.
func WithInterceptorFactory(factory kvdriver.InterceptorFactory) Option {
	return func(c *Client) error {
		c.RegisterInterceptor(factory)
		return nil
	}
}
