package clientengine

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

// Sentinel TTL results, mirroring the usual key-value store conventions.
const (
	// TTLMissingKey is returned by TTL when the key does not exist.
	TTLMissingKey = time.Duration(-2)

	// TTLNoExpiry is returned by TTL when the key exists without expiry.
	TTLNoExpiry = time.Duration(-1)
)

var (
	typeBytes       = reflect.TypeFor[[]byte]()
	typeBool        = reflect.TypeFor[bool]()
	typeInt64       = reflect.TypeFor[int64]()
	typeDuration    = reflect.TypeFor[time.Duration]()
	typeStringSlice = reflect.TypeFor[[]string]()
)

// Set stores a value under key. The value is converted to its wire form by
// the client's codec.
func (c *Client) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value under key with a time-to-live; a zero or
// negative ttl stores the value without expiry.
func (c *Client) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.ensureWritable(); err != nil {
		return err
	}

	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}

	args := [][]byte{payload}
	if ttl > 0 {
		args = append(args, []byte(strconv.FormatInt(ttl.Milliseconds(), 10)))
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdSet, []string{key}, args...)

	_, err = c.execute(ctx, cmd, typeBool, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		n, parseErr := integerFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		return n > 0, nil
	})

	return err
}

// Get returns the raw payload stored under key, or nil when the key is
// missing or expired.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdGet, []string{key})

	value, err := c.execute(ctx, cmd, typeBytes, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		return payloadFromReply(reply)
	})
	if err != nil {
		return nil, err
	}

	data, _ := value.([]byte)

	return data, nil
}

// GetAs returns the value stored under key decoded into T via the client's
// codec. A missing key yields T's zero value, per the decode contract.
func GetAs[T any](ctx context.Context, c *Client, key string) (T, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	return kvdriver.DecodeAs[T](c.codec, data)
}

// Del removes the given keys and returns how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := c.ensureWritable(); err != nil {
		return 0, err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdDel, keys)

	value, err := c.execute(ctx, cmd, typeInt64, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		return integerFromReply(reply)
	})
	if err != nil {
		return 0, err
	}

	n, _ := value.(int64)

	return n, nil
}

// Exists reports whether key holds a live value.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.ensureOpen(); err != nil {
		return false, err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdExists, []string{key})

	value, err := c.execute(ctx, cmd, typeBool, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		n, parseErr := integerFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		return n > 0, nil
	})
	if err != nil {
		return false, err
	}

	exists, _ := value.(bool)

	return exists, nil
}

// Expire sets a time-to-live on an existing key and reports whether the
// key existed.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := c.ensureWritable(); err != nil {
		return false, err
	}

	cmd := kvdriver.NewCommand(
		kvdriver.CmdExpire,
		[]string{key},
		[]byte(strconv.FormatInt(ttl.Milliseconds(), 10)),
	)

	value, err := c.execute(ctx, cmd, typeBool, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		n, parseErr := integerFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		return n > 0, nil
	})
	if err != nil {
		return false, err
	}

	applied, _ := value.(bool)

	return applied, nil
}

// TTL returns the remaining time-to-live of key, TTLNoExpiry for a key
// without expiry, or TTLMissingKey for a missing key.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdTTL, []string{key})

	value, err := c.execute(ctx, cmd, typeDuration, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		ms, parseErr := integerFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		if ms < 0 {
			return time.Duration(ms), nil
		}

		return time.Duration(ms) * time.Millisecond, nil
	})
	if err != nil {
		return 0, err
	}

	ttl, _ := value.(time.Duration)

	return ttl, nil
}

// Keys returns all live keys matching the glob-style pattern.
func (c *Client) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdKeys, nil, []byte(pattern))

	value, err := c.execute(ctx, cmd, typeStringSlice, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		elements, parseErr := elementsFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		keys := make([]string, 0, len(elements))
		for _, element := range elements {
			key, decodeErr := kvdriver.DecodeAs[string](c.codec, element)
			if decodeErr != nil {
				return nil, decodeErr
			}

			keys = append(keys, key)
		}

		return keys, nil
	})
	if err != nil {
		return nil, err
	}

	keys, _ := value.([]string)

	return keys, nil
}

// Ping checks that the backing store answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}

	cmd := kvdriver.NewCommand(kvdriver.CmdPing, nil)

	_, err := c.execute(ctx, cmd, typeBool, func(ctx context.Context, cmd *kvdriver.Command) (any, error) {
		reply, dispatchErr := c.db.Dispatch(ctx, cmd)
		if dispatchErr != nil {
			return nil, errors.Join(kvdriver.ErrCommandFailed, dispatchErr)
		}

		n, parseErr := integerFromReply(reply)
		if parseErr != nil {
			return nil, parseErr
		}

		return n > 0, nil
	})

	return err
}

// payloadFromReply extracts a single payload; a nil reply yields nil.
func payloadFromReply(reply kvdriver.Reply) (any, error) {
	switch reply.Kind {
	case kvdriver.ReplyNil:
		return []byte(nil), nil
	case kvdriver.ReplyPayload:
		return reply.Payload, nil
	default:
		return nil, kvdriver.ErrUnexpectedReply
	}
}

// integerFromReply extracts an integer result.
func integerFromReply(reply kvdriver.Reply) (int64, error) {
	if reply.Kind != kvdriver.ReplyInteger {
		return 0, kvdriver.ErrUnexpectedReply
	}

	return reply.Integer, nil
}

// elementsFromReply extracts an array result; a nil reply yields no
// elements.
func elementsFromReply(reply kvdriver.Reply) ([][]byte, error) {
	switch reply.Kind {
	case kvdriver.ReplyNil:
		return nil, nil
	case kvdriver.ReplyArray:
		return reply.Elements, nil
	default:
		return nil, kvdriver.ErrUnexpectedReply
	}
}
