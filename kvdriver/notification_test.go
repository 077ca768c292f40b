package kvdriver_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

func Test_TraceHub_PublishesInRegistrationOrder(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	var order []string
	hub.Subscribe(func(kvdriver.CommandTrace) { order = append(order, "first") })
	hub.Subscribe(func(kvdriver.CommandTrace) { order = append(order, "second") })
	hub.Subscribe(func(kvdriver.CommandTrace) { order = append(order, "third") })

	hub.Publish(kvdriver.CommandTrace{Command: "PING"})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func Test_TraceHub_DeliversTheTraceUnmodified(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	var received kvdriver.CommandTrace
	hub.Subscribe(func(trace kvdriver.CommandTrace) { received = trace })

	published := kvdriver.CommandTrace{
		Host:    "db-1:5432",
		Elapsed: 42 * time.Millisecond,
		Command: "GET greeting",
		Result:  "hello",
	}
	hub.Publish(published)

	assert.Equal(t, published, received)
}

func Test_TraceHub_Unsubscribe(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	calls := 0
	id := hub.Subscribe(func(kvdriver.CommandTrace) { calls++ })

	require.True(t, hub.Unsubscribe(id))
	hub.Publish(kvdriver.CommandTrace{})

	assert.Equal(t, 0, calls)
	assert.False(t, hub.Unsubscribe(id), "second unsubscribe should report not found")
}

func Test_TraceHub_HasSubscribers(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	assert.False(t, hub.HasSubscribers())

	id := hub.Subscribe(func(kvdriver.CommandTrace) {})
	assert.True(t, hub.HasSubscribers())

	hub.Unsubscribe(id)
	assert.False(t, hub.HasSubscribers())
}

func Test_TraceHub_NilSubscriberIsIgnored(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	id := hub.Subscribe(nil)

	assert.Equal(t, uint64(0), id)
	assert.False(t, hub.HasSubscribers())
}

func Test_TraceHub_ConcurrentSubscribeAndPublish(t *testing.T) {
	hub := kvdriver.NewTraceHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			hub.Subscribe(func(kvdriver.CommandTrace) {})
		}()

		go func() {
			defer wg.Done()
			hub.Publish(kvdriver.CommandTrace{Command: "PING"})
		}()
	}
	wg.Wait()

	assert.True(t, hub.HasSubscribers())
}
