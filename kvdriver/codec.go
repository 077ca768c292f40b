package kvdriver

import (
	"reflect"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// nanosPerTick is the size of one tick (100 nanoseconds), the wire unit
// for durations.
const nanosPerTick = 100

// wireTimeLayout is the exact wire format for date-time values
// (YYYY-MM-DDThh:mm:ss±hh:mm). It must not change, stored values depend
// on it.
const wireTimeLayout = "2006-01-02T15:04:05-07:00"

// Char represents a single character value. It is a distinct type so the
// codec can tell character payloads apart from plain int32 values.
type Char rune

// SerializeFunc is a user-supplied hook converting a value to its textual
// wire form. It is consulted after all built-in encode rules.
type SerializeFunc func(v any) (string, error)

// DeserializeFunc is a user-supplied hook converting wire text into a value
// of the target type. It is consulted after all built-in decode rules.
type DeserializeFunc func(text string, target reflect.Type) (any, error)

// Codec converts native values to and from wire-safe payloads.
//
// Precedence on both paths: built-in per-type rule, then the registered
// text parsers / parse capability (decode only), then the user hook, then
// the generic fallback. The absence of hooks never causes a failure.
type Codec struct {
	textEncoding encoding.Encoding
	serialize    SerializeFunc
	deserialize  DeserializeFunc
}

// CodecOption defines a functional option for configuring a Codec.
type CodecOption func(*Codec) error

// WithTextEncoding sets the text encoding used to decode payload bytes.
// The default is UTF-8.
func WithTextEncoding(enc encoding.Encoding) CodecOption {
	return func(c *Codec) error {
		if enc == nil {
			return ErrNilTextEncoding
		}

		c.textEncoding = enc

		return nil
	}
}

// WithSerializeHook sets the custom serializer consulted for values no
// built-in encode rule covers. Errors returned by the hook propagate
// unmodified to the caller.
func WithSerializeHook(fn SerializeFunc) CodecOption {
	return func(c *Codec) error {
		c.serialize = fn
		return nil
	}
}

// WithDeserializeHook sets the custom deserializer consulted for target
// types no built-in decode rule covers.
func WithDeserializeHook(fn DeserializeFunc) CodecOption {
	return func(c *Codec) error {
		c.deserialize = fn
		return nil
	}
}

// NewCodec creates a Codec with optional configuration.
func NewCodec(options ...CodecOption) (*Codec, error) {
	c := &Codec{
		textEncoding: unicode.UTF8,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// DefaultCodec returns a Codec with UTF-8 text encoding and no hooks.
func DefaultCodec() *Codec {
	c, _ := NewCodec() // cannot fail without options
	return c
}

// decodeText converts payload bytes to a string using the configured
// text encoding.
func (c *Codec) decodeText(data []byte) (string, error) {
	out, err := c.textEncoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}

	return string(out), nil
}
