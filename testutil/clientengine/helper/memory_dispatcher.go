package helper

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

const memoryHost = "memory"

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryDispatcher is a kvdriver.Dispatcher implementation backed by an
// in-memory map. It supports the full command vocabulary including TTL
// semantics, so engine and operation tests can run without a database.
type MemoryDispatcher struct {
	mu            sync.Mutex
	entries       map[string]memoryEntry
	nextErr       error
	dispatchCount int
	closeCount    int
}

// NewMemoryDispatcher creates an empty in-memory dispatcher.
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{entries: make(map[string]memoryEntry)}
}

// FailNext makes the next Dispatch call return the given error instead of
// executing the command.
func (d *MemoryDispatcher) FailNext(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextErr = err
}

// GetDispatchCount returns how many times Dispatch was called.
func (d *MemoryDispatcher) GetDispatchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dispatchCount
}

// GetCloseCount returns how many times Close was called.
func (d *MemoryDispatcher) GetCloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closeCount
}

// Dispatch executes one command against the in-memory store.
func (d *MemoryDispatcher) Dispatch(_ context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	cmd.SetHost(memoryHost)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.dispatchCount++

	if d.nextErr != nil {
		err := d.nextErr
		d.nextErr = nil

		return kvdriver.Reply{}, err
	}

	switch cmd.Name() {
	case kvdriver.CmdGet:
		return d.get(cmd), nil
	case kvdriver.CmdSet:
		return d.set(cmd)
	case kvdriver.CmdDel:
		return d.del(cmd), nil
	case kvdriver.CmdExists:
		return d.exists(cmd), nil
	case kvdriver.CmdExpire:
		return d.expire(cmd)
	case kvdriver.CmdTTL:
		return d.ttl(cmd), nil
	case kvdriver.CmdKeys:
		return d.keys(cmd), nil
	case kvdriver.CmdPing:
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: 1}, nil
	default:
		return kvdriver.Reply{}, fmt.Errorf("%w: %s", kvdriver.ErrUnsupportedCommand, cmd.Name())
	}
}

// Close counts invocations so tests can assert single-fire close behavior.
func (d *MemoryDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeCount++

	return nil
}

func (d *MemoryDispatcher) get(cmd *kvdriver.Command) kvdriver.Reply {
	entry, ok := d.liveEntry(cmd.Key())
	if !ok {
		return kvdriver.Reply{Kind: kvdriver.ReplyNil}
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyPayload, Payload: entry.value}
}

func (d *MemoryDispatcher) set(cmd *kvdriver.Command) (kvdriver.Reply, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return kvdriver.Reply{}, fmt.Errorf("%w: SET requires a payload argument", kvdriver.ErrUnsupportedCommand)
	}

	entry := memoryEntry{value: args[0]}

	if len(args) > 1 {
		ms, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return kvdriver.Reply{}, err
		}

		entry.expiresAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
	}

	d.entries[cmd.Key()] = entry

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: 1}, nil
}

func (d *MemoryDispatcher) del(cmd *kvdriver.Command) kvdriver.Reply {
	var deleted int64

	for _, key := range cmd.Keys() {
		if _, ok := d.liveEntry(key); ok {
			delete(d.entries, key)
			deleted++
		}
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: deleted}
}

func (d *MemoryDispatcher) exists(cmd *kvdriver.Command) kvdriver.Reply {
	var count int64
	if _, ok := d.liveEntry(cmd.Key()); ok {
		count = 1
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: count}
}

func (d *MemoryDispatcher) expire(cmd *kvdriver.Command) (kvdriver.Reply, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return kvdriver.Reply{}, fmt.Errorf("%w: EXPIRE requires a ttl argument", kvdriver.ErrUnsupportedCommand)
	}

	ms, err := strconv.ParseInt(string(args[0]), 10, 64)
	if err != nil {
		return kvdriver.Reply{}, err
	}

	entry, ok := d.liveEntry(cmd.Key())
	if !ok {
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: 0}, nil
	}

	entry.expiresAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
	d.entries[cmd.Key()] = entry

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: 1}, nil
}

func (d *MemoryDispatcher) ttl(cmd *kvdriver.Command) kvdriver.Reply {
	entry, ok := d.liveEntry(cmd.Key())
	if !ok {
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: -2}
	}

	if entry.expiresAt.IsZero() {
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: -1}
	}

	remaining := time.Until(entry.expiresAt).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: remaining}
}

func (d *MemoryDispatcher) keys(cmd *kvdriver.Command) kvdriver.Reply {
	pattern := "*"
	if args := cmd.Args(); len(args) > 0 {
		pattern = string(args[0])
	}

	matched := make([]string, 0)

	for key := range d.entries {
		if _, ok := d.liveEntry(key); !ok {
			continue
		}

		if ok, _ := path.Match(pattern, key); ok {
			matched = append(matched, key)
		}
	}

	sort.Strings(matched)

	elements := make([][]byte, 0, len(matched))
	for _, key := range matched {
		elements = append(elements, []byte(key))
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyArray, Elements: elements}
}

// liveEntry returns the entry for key if it exists and has not expired.
// Expired entries are purged lazily.
func (d *MemoryDispatcher) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := d.entries[key]
	if !ok {
		return memoryEntry{}, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(d.entries, key)

		return memoryEntry{}, false
	}

	return entry, true
}

// Ensure MemoryDispatcher implements kvdriver.Dispatcher.
var _ kvdriver.Dispatcher = (*MemoryDispatcher)(nil)
