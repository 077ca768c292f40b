package clientengine

import (
	"database/sql"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver/clientengine/internal/adapters"
)

const (
	defaultKeyTableName = "keyvalue"

	logMsgCommandExecuted     = "executed command: "
	logMsgCommandFailed       = "command dispatch failed"
	logMsgCloseDispatcherWarn = "failed to close dispatcher"

	logAttrError      = "error"
	logAttrCommand    = "command"
	logAttrHost       = "host"
	logAttrDurationMS = "duration_ms"

	metricCommandDuration = "kvdriver_command_duration"
	metricCommandErrors   = "kvdriver_command_errors"

	spanNameCommand   = "kvdriver.command"
	spanAttrCommand   = "command"
	spanAttrStatus    = "status"
	spanAttrErrorType = "error_type"

	statusSuccess = "success"
	statusError   = "error"
)

// Client is the execution layer of the key-value driver. It encodes
// values, runs every command through the instrumentation pipeline, and
// decodes replies.
//
// A Client is safe for concurrent use; registration of interceptors and
// trace subscribers may happen while calls are in flight.
type Client struct {
	db           kvdriver.Dispatcher
	keyTableName string
	keyPrefix    string
	readOnly     bool
	codec        *kvdriver.Codec

	logger           kvdriver.Logger
	contextualLogger kvdriver.ContextualLogger
	metricsCollector kvdriver.MetricsCollector
	tracingCollector kvdriver.TracingCollector

	traces *kvdriver.TraceHub

	interceptorsMu sync.Mutex
	interceptors   atomic.Pointer[[]kvdriver.InterceptorFactory]

	closed atomic.Bool
}

// newClient builds a Client with defaults; the dispatcher is attached by
// the public constructors after all options were applied.
func newClient(options ...Option) (*Client, error) {
	c := &Client{
		keyTableName: defaultKeyTableName,
		codec:        kvdriver.DefaultCodec(),
		traces:       kvdriver.NewTraceHub(),
	}
	c.interceptors.Store(&[]kvdriver.InterceptorFactory{})

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewClientFromPGXPool creates a Client backed by a Postgres key-value
// table accessed through a pgx pool, with optional configuration.
func NewClientFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Client, error) {
	if pool == nil {
		return nil, kvdriver.ErrNilDatabaseConnection
	}

	c, err := newClient(options...)
	if err != nil {
		return nil, err
	}

	c.db = adapters.NewKeyValueDispatcher(adapters.NewPGXAdapter(pool), c.keyTableName)

	return c, nil
}

// NewClientFromSQLDB creates a Client backed by a Postgres key-value table
// accessed through a sql.DB, with optional configuration.
func NewClientFromSQLDB(db *sql.DB, options ...Option) (*Client, error) {
	if db == nil {
		return nil, kvdriver.ErrNilDatabaseConnection
	}

	c, err := newClient(options...)
	if err != nil {
		return nil, err
	}

	c.db = adapters.NewKeyValueDispatcher(adapters.NewSQLAdapter(db), c.keyTableName)

	return c, nil
}

// NewClientFromSQLX creates a Client backed by a Postgres key-value table
// accessed through a sqlx.DB, with optional configuration.
func NewClientFromSQLX(db *sqlx.DB, options ...Option) (*Client, error) {
	if db == nil {
		return nil, kvdriver.ErrNilDatabaseConnection
	}

	c, err := newClient(options...)
	if err != nil {
		return nil, err
	}

	c.db = adapters.NewKeyValueDispatcher(adapters.NewSQLXAdapter(db), c.keyTableName)

	return c, nil
}

// NewClientFromDispatcher creates a Client on top of any transport that
// implements the kvdriver.Dispatcher contract. WithTableName has no effect
// with this constructor; table handling belongs to the dispatcher.
func NewClientFromDispatcher(dispatcher kvdriver.Dispatcher, options ...Option) (*Client, error) {
	if dispatcher == nil {
		return nil, kvdriver.ErrNilDispatcher
	}

	c, err := newClient(options...)
	if err != nil {
		return nil, err
	}

	c.db = dispatcher

	return c, nil
}

// Codec returns the wire codec the client encodes and decodes with.
func (c *Client) Codec() *kvdriver.Codec {
	return c.codec
}

// RegisterInterceptor appends a factory to the interceptor list. The
// factory is invoked once per subsequent call to construct a fresh
// interceptor instance for that call.
func (c *Client) RegisterInterceptor(factory kvdriver.InterceptorFactory) {
	if factory == nil {
		return
	}

	c.interceptorsMu.Lock()
	defer c.interceptorsMu.Unlock()

	current := *c.interceptors.Load()
	next := make([]kvdriver.InterceptorFactory, len(current), len(current)+1)
	copy(next, current)
	next = append(next, factory)
	c.interceptors.Store(&next)
}

// interceptorFactories returns the current factory list without locking.
func (c *Client) interceptorFactories() []kvdriver.InterceptorFactory {
	return *c.interceptors.Load()
}

// SubscribeTraces registers a subscriber for post-call trace records and
// returns its subscription id.
func (c *Client) SubscribeTraces(fn kvdriver.TraceFunc) uint64 {
	return c.traces.Subscribe(fn)
}

// UnsubscribeTraces removes a trace subscription.
func (c *Client) UnsubscribeTraces(id uint64) bool {
	return c.traces.Unsubscribe(id)
}

// Close releases the underlying dispatcher exactly once; further calls are
// no-ops. In-flight calls are not aborted, they complete per the
// dispatcher's own guarantees. Close never fails; a dispatcher close error
// is logged at warn level.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	if err := c.db.Close(); err != nil {
		c.logWarn(logMsgCloseDispatcherWarn, err)
	}
}

// ensureOpen is the usage check run before the pipeline is entered.
func (c *Client) ensureOpen() error {
	if c.closed.Load() {
		return kvdriver.ErrClientClosed
	}

	return nil
}

// ensureWritable rejects write commands on closed or read-only clients.
func (c *Client) ensureWritable() error {
	if err := c.ensureOpen(); err != nil {
		return err
	}

	if c.readOnly {
		return kvdriver.ErrClientReadOnly
	}

	return nil
}
