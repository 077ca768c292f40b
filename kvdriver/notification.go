package kvdriver

import (
	"sync"
	"sync/atomic"
	"time"
)

// CommandTrace is the record published for one completed call when at
// least one trace subscriber is registered.
type CommandTrace struct {
	Host    string
	Elapsed time.Duration
	Command string
	Result  string
}

// TraceFunc receives one CommandTrace per completed call.
type TraceFunc func(trace CommandTrace)

type traceSubscription struct {
	id uint64
	fn TraceFunc
}

// TraceHub is an optional multicast list of trace subscribers.
//
// Dispatch is synchronous, in subscriber-registration order, on the
// calling goroutine. The subscriber slice is copy-on-write: registration
// mutates under a lock while Publish and HasSubscribers only perform an
// atomic load, so concurrent calls are never serialized against each
// other.
type TraceHub struct {
	mu     sync.Mutex
	nextID uint64
	subs   atomic.Pointer[[]traceSubscription]
}

// NewTraceHub creates an empty TraceHub.
func NewTraceHub() *TraceHub {
	h := &TraceHub{}
	h.subs.Store(&[]traceSubscription{})

	return h
}

// Subscribe registers fn and returns its subscription id.
// A nil fn is ignored and yields id 0.
func (h *TraceHub) Subscribe(fn TraceFunc) uint64 {
	if fn == nil {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	current := *h.subs.Load()
	next := make([]traceSubscription, len(current), len(current)+1)
	copy(next, current)
	next = append(next, traceSubscription{id: id, fn: fn})
	h.subs.Store(&next)

	return id
}

// Unsubscribe removes the subscription with the given id and reports
// whether it was registered.
func (h *TraceHub) Unsubscribe(id uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := *h.subs.Load()
	next := make([]traceSubscription, 0, len(current))
	found := false

	for _, sub := range current {
		if sub.id == id {
			found = true
			continue
		}

		next = append(next, sub)
	}

	if found {
		h.subs.Store(&next)
	}

	return found
}

// HasSubscribers reports cheaply whether any subscriber is registered,
// so callers can skip building traces entirely when nobody listens.
func (h *TraceHub) HasSubscribers() bool {
	return len(*h.subs.Load()) > 0
}

// Publish dispatches the trace to every subscriber, synchronously and in
// registration order.
func (h *TraceHub) Publish(trace CommandTrace) {
	for _, sub := range *h.subs.Load() {
		sub.fn(trace)
	}
}
