package kvdriver

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var (
	typeBytes           = reflect.TypeFor[[]byte]()
	typeBoolFlags       = reflect.TypeFor[[]bool]()
	typeChar            = reflect.TypeFor[Char]()
	typeDuration        = reflect.TypeFor[time.Duration]()
	typeTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Decode converts a raw payload into a value of the target type.
//
// Decode never fails on malformed input: a nil payload, empty text, or
// unparsable text yields the target type's zero value. A pointer target is
// treated as optional-of-T and unwrapped before dispatch; its soft failures
// yield a nil pointer. The only hard errors are those raised by a
// user-supplied deserialize hook and ErrNoConversion for a target with no
// viable conversion at all.
func (c *Codec) Decode(data []byte, target reflect.Type) (any, error) {
	if target == nil {
		return nil, ErrNilTargetType
	}

	if data == nil {
		return zeroOf(target), nil
	}

	if target == typeBytes {
		return data, nil
	}

	if target.Kind() == reflect.String {
		text, err := c.decodeText(data)
		if err != nil {
			return zeroOf(target), nil
		}

		return reflect.ValueOf(text).Convert(target).Interface(), nil
	}

	if target == typeBoolFlags {
		flags := make([]bool, len(data))
		for i, b := range data {
			flags[i] = b == '1'
		}

		return flags, nil
	}

	text, err := c.decodeText(data)
	if err != nil || text == "" {
		return zeroOf(target), nil
	}

	if target.Kind() == reflect.Pointer {
		elem, parsed, decodeErr := c.decodeScalar(text, target.Elem())
		if decodeErr != nil {
			return zeroOf(target), decodeErr
		}

		if !parsed {
			// A soft failure on the unwrapped type surfaces as absence.
			return zeroOf(target), nil
		}

		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(reflect.ValueOf(elem))

		return ptr.Interface(), nil
	}

	value, parsed, decodeErr := c.decodeScalar(text, target)
	if decodeErr != nil {
		return zeroOf(target), decodeErr
	}

	if !parsed {
		return zeroOf(target), nil
	}

	return value, nil
}

// DecodeAs decodes a raw payload into T using the given Codec.
func DecodeAs[T any](c *Codec, data []byte) (T, error) {
	v, err := c.Decode(data, reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		var zero T
		return zero, nil
	}

	return value, nil
}

// decodeScalar resolves non-empty text into a value of the (unwrapped)
// target type. The second return value reports whether the text was
// actually resolved; false means the caller should fall back to the
// target's zero value.
func (c *Codec) decodeScalar(text string, target reflect.Type) (any, bool, error) {
	if target.Kind() == reflect.Bool {
		return reflect.ValueOf(text == "1").Convert(target).Interface(), true, nil
	}

	if target.Kind() == reflect.String {
		return reflect.ValueOf(text).Convert(target).Interface(), true, nil
	}

	if target == typeChar {
		for _, r := range text {
			return Char(r), true, nil
		}

		return Char(0), false, nil
	}

	if target == typeDuration {
		ticks, parseErr := strconv.ParseInt(text, 10, 64)
		if parseErr != nil {
			return time.Duration(0), false, nil
		}

		return time.Duration(ticks * nanosPerTick), true, nil
	}

	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, parseErr := strconv.ParseInt(text, 10, target.Bits())
		if parseErr != nil {
			return zeroOf(target), false, nil
		}

		return reflect.ValueOf(n).Convert(target).Interface(), true, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, parseErr := strconv.ParseUint(text, 10, target.Bits())
		if parseErr != nil {
			return zeroOf(target), false, nil
		}

		return reflect.ValueOf(n).Convert(target).Interface(), true, nil

	case reflect.Float32, reflect.Float64:
		f, parseErr := strconv.ParseFloat(text, target.Bits())
		if parseErr != nil {
			return zeroOf(target), false, nil
		}

		return reflect.ValueOf(f).Convert(target).Interface(), true, nil

	default:
		// fall through to the parse capability lookups below
	}

	if parse, ok := lookupTextParser(target); ok {
		if v, parsed := parse(text); parsed {
			return v, true, nil
		}

		return zeroOf(target), false, nil
	}

	if reflect.PointerTo(target).Implements(typeTextUnmarshaler) {
		ptr := reflect.New(target)
		if unmarshalErr := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); unmarshalErr != nil {
			return zeroOf(target), false, nil
		}

		return ptr.Elem().Interface(), true, nil
	}

	if c.deserialize != nil {
		v, hookErr := c.deserialize(text, target)
		if hookErr != nil {
			return zeroOf(target), false, hookErr
		}

		return v, true, nil
	}

	return zeroOf(target), false, fmt.Errorf("%w: %s", ErrNoConversion, target)
}

// zeroOf returns the zero value of target as an interface value.
func zeroOf(target reflect.Type) any {
	return reflect.Zero(target).Interface()
}
