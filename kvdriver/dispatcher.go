package kvdriver

import (
	"context"
)

// ReplyKind discriminates the shapes a Dispatcher reply can take.
type ReplyKind int

const (
	// ReplyNil signals the absence of a value, e.g. a GET on a missing key.
	ReplyNil ReplyKind = iota

	// ReplyPayload carries a single raw payload.
	ReplyPayload

	// ReplyInteger carries an integer result, e.g. a deletion count.
	ReplyInteger

	// ReplyArray carries a list of raw payloads, e.g. a KEYS result.
	ReplyArray
)

// Reply is the wire-level result of dispatching one Command.
type Reply struct {
	Kind     ReplyKind
	Payload  []byte
	Integer  int64
	Elements [][]byte
}

// Dispatcher executes prepared commands against a backing store.
//
// Implementations own connection handling, pooling, and routing; the engine
// treats them as opaque. A Dispatcher must set the Command's destination
// host while executing it and must be safe for concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd *Command) (Reply, error)
	Close() error
}
