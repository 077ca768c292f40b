package kvdriver

import (
	"strings"
)

// NotConnectedHost is the destination rendered in command traces for a
// Command that was never routed to a host.
const NotConnectedHost = "Not connected"

// Command names understood by the engine and its dispatchers.
const (
	CmdGet    = "GET"
	CmdSet    = "SET"
	CmdDel    = "DEL"
	CmdExists = "EXISTS"
	CmdExpire = "EXPIRE"
	CmdTTL    = "TTL"
	CmdKeys   = "KEYS"
	CmdPing   = "PING"
)

// argRenderLimit caps how many bytes of a single argument appear in the
// textual rendering of a Command.
const argRenderLimit = 32

// Command is a prepared operation handed to a Dispatcher for execution.
//
// A Command is owned by the caller and mutated in place: the pipeline
// annotates it with the client's key prefix, and the transport sets the
// destination host while executing it. It must not be shared across calls.
type Command struct {
	name     string
	keys     []string
	args     [][]byte
	host     string
	prefixed bool
}

// NewCommand builds a Command for the given name, keys, and pre-encoded
// arguments.
func NewCommand(name string, keys []string, args ...[]byte) *Command {
	return &Command{
		name: name,
		keys: keys,
		args: args,
	}
}

// Name returns the command name, e.g. "GET".
func (c *Command) Name() string {
	return c.name
}

// Keys returns the keys the command operates on.
func (c *Command) Keys() []string {
	return c.keys
}

// Key returns the first key, or the empty string for key-less commands.
func (c *Command) Key() string {
	if len(c.keys) == 0 {
		return ""
	}

	return c.keys[0]
}

// Args returns the pre-encoded command arguments.
func (c *Command) Args() [][]byte {
	return c.args
}

// SetKeyPrefix prepends prefix to every key of the command.
// Applying a prefix is idempotent, a second call is a no-op.
func (c *Command) SetKeyPrefix(prefix string) {
	if prefix == "" || c.prefixed {
		return
	}

	for i := range c.keys {
		c.keys[i] = prefix + c.keys[i]
	}

	c.prefixed = true
}

// SetHost records the destination host; it is set by the transport while
// the command executes.
func (c *Command) SetHost(host string) {
	c.host = host
}

// Host returns the destination host, or the empty string before the
// command was routed anywhere.
func (c *Command) Host() string {
	return c.host
}

// String renders the command as "NAME key ... arg ..." with long arguments
// truncated, suitable for traces and logs.
func (c *Command) String() string {
	var b strings.Builder
	b.WriteString(c.name)

	for _, key := range c.keys {
		b.WriteByte(' ')
		b.WriteString(key)
	}

	for _, arg := range c.args {
		b.WriteByte(' ')

		if len(arg) > argRenderLimit {
			b.Write(arg[:argRenderLimit])
			b.WriteString("...")
			continue
		}

		b.Write(arg)
	}

	return b.String()
}
