package clientengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver/clientengine"
	"github.com/AntonStoeckl/keyvalue-driver-go/testutil/clientengine/helper"
)

func Test_Client_SetAndGet_RoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "greeting", "hello world"))

	data, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)
}

func Test_Client_Get_MissingKeyYieldsNil(t *testing.T) {
	client, _ := newTestClient(t)

	data, err := client.Get(context.Background(), "nothing here")

	require.NoError(t, err)
	assert.Nil(t, data)
}

func Test_Client_GetAs_DecodesTypedValues(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	t.Run("int_round_trip", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "answer", 42))

		answer, err := clientengine.GetAs[int](ctx, client, "answer")
		require.NoError(t, err)
		assert.Equal(t, 42, answer)
	})

	t.Run("bool_round_trip", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "enabled", true))

		enabled, err := clientengine.GetAs[bool](ctx, client, "enabled")
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("time_round_trip", func(t *testing.T) {
		instant := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
		require.NoError(t, client.Set(ctx, "deadline", instant))

		deadline, err := clientengine.GetAs[time.Time](ctx, client, "deadline")
		require.NoError(t, err)
		assert.True(t, instant.Equal(deadline))
	})

	t.Run("missing_key_yields_zero_value", func(t *testing.T) {
		n, err := clientengine.GetAs[int](ctx, client, "nothing here")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func Test_Client_Del_ReturnsHowManyExisted(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "one", "1"))
	require.NoError(t, client.Set(ctx, "two", "2"))

	deleted, err := client.Del(ctx, "one", "two", "three")

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	exists, err := client.Exists(ctx, "one")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_Client_Exists(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	exists, err := client.Exists(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.Set(ctx, "greeting", "hello"))

	exists, err = client.Exists(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, exists)
}

func Test_Client_TTL_Sentinels(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	t.Run("missing_key", func(t *testing.T) {
		ttl, err := client.TTL(ctx, "nothing here")
		require.NoError(t, err)
		assert.Equal(t, clientengine.TTLMissingKey, ttl)
	})

	t.Run("key_without_expiry", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "durable", "forever"))

		ttl, err := client.TTL(ctx, "durable")
		require.NoError(t, err)
		assert.Equal(t, clientengine.TTLNoExpiry, ttl)
	})

	t.Run("key_with_expiry", func(t *testing.T) {
		require.NoError(t, client.SetWithTTL(ctx, "session", "token", time.Minute))

		ttl, err := client.TTL(ctx, "session")
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}

func Test_Client_Expire_SetsATimeToLive(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "session", "token"))

	applied, err := client.Expire(ctx, "session", time.Minute)
	require.NoError(t, err)
	assert.True(t, applied)

	ttl, err := client.TTL(ctx, "session")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	applied, err = client.Expire(ctx, "nothing here", time.Minute)
	require.NoError(t, err)
	assert.False(t, applied)
}

func Test_Client_Keys_MatchesGlobPatterns(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "user:1", "alice"))
	require.NoError(t, client.Set(ctx, "user:2", "bob"))
	require.NoError(t, client.Set(ctx, "order:1", "pending"))

	keys, err := client.Keys(ctx, "user:*")

	require.NoError(t, err)
	assert.Equal(t, []string{"user:1", "user:2"}, keys)
}

func Test_Client_Ping(t *testing.T) {
	client, _ := newTestClient(t)

	assert.NoError(t, client.Ping(context.Background()))
}

func Test_Client_KeyPrefix_IsAppliedBeforeDispatch(t *testing.T) {
	dispatcher := helper.NewMemoryDispatcher()

	prefixed, err := clientengine.NewClientFromDispatcher(dispatcher, clientengine.WithKeyPrefix("app:"))
	require.NoError(t, err)

	plain, err := clientengine.NewClientFromDispatcher(dispatcher)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, prefixed.Set(ctx, "greeting", "hello"))

	data, err := plain.Get(ctx, "app:greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data, "the dispatcher must see the prefixed key")

	data, err = prefixed.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func Test_Client_WithCodec_InstallsJSONHooks(t *testing.T) {
	serialize, deserialize := kvdriver.JSONHooks()
	codec, err := kvdriver.NewCodec(
		kvdriver.WithSerializeHook(serialize),
		kvdriver.WithDeserializeHook(deserialize),
	)
	require.NoError(t, err)

	client, err := clientengine.NewClientFromDispatcher(
		helper.NewMemoryDispatcher(),
		clientengine.WithCodec(codec),
	)
	require.NoError(t, err)

	type session struct {
		User  string `json:"user"`
		Admin bool   `json:"admin"`
	}

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "session", session{User: "alice", Admin: true}))

	decoded, err := clientengine.GetAs[session](ctx, client, "session")
	require.NoError(t, err)
	assert.Equal(t, session{User: "alice", Admin: true}, decoded)
}
