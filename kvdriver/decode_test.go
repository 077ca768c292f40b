package kvdriver_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

type label string

type temperature struct {
	celsius int
}

func Test_Codec_Decode_BuiltInRules(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	t.Run("nil_payload_yields_zero_value", func(t *testing.T) {
		n, err := kvdriver.DecodeAs[int](codec, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		s, err := kvdriver.DecodeAs[string](codec, nil)
		require.NoError(t, err)
		assert.Equal(t, "", s)
	})

	t.Run("byte_slice_passes_through", func(t *testing.T) {
		raw := []byte{0x01, 0x02, 0xFF}

		data, err := kvdriver.DecodeAs[[]byte](codec, raw)

		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("string_target_gets_decoded_text", func(t *testing.T) {
		s, err := kvdriver.DecodeAs[string](codec, []byte("hello"))

		require.NoError(t, err)
		assert.Equal(t, "hello", s)
	})

	t.Run("named_string_type_is_converted", func(t *testing.T) {
		l, err := kvdriver.DecodeAs[label](codec, []byte("tagged"))

		require.NoError(t, err)
		assert.Equal(t, label("tagged"), l)
	})

	t.Run("only_the_digit_one_is_true", func(t *testing.T) {
		yes, err := kvdriver.DecodeAs[bool](codec, []byte("1"))
		require.NoError(t, err)
		assert.True(t, yes)

		no, err := kvdriver.DecodeAs[bool](codec, []byte("0"))
		require.NoError(t, err)
		assert.False(t, no)

		alsoNo, err := kvdriver.DecodeAs[bool](codec, []byte("true"))
		require.NoError(t, err)
		assert.False(t, alsoNo)
	})

	t.Run("bool_slice_decodes_one_flag_per_byte", func(t *testing.T) {
		flags, err := kvdriver.DecodeAs[[]bool](codec, []byte("101"))

		require.NoError(t, err)
		assert.Equal(t, []bool{true, false, true}, flags)
	})

	t.Run("character_takes_the_first_rune", func(t *testing.T) {
		c, err := kvdriver.DecodeAs[kvdriver.Char](codec, []byte("äbc"))

		require.NoError(t, err)
		assert.Equal(t, kvdriver.Char('ä'), c)
	})

	t.Run("duration_parses_tick_counts", func(t *testing.T) {
		d, err := kvdriver.DecodeAs[time.Duration](codec, []byte("15"))

		require.NoError(t, err)
		assert.Equal(t, 1500*time.Nanosecond, d)
	})

	t.Run("numeric_targets_parse_decimal_text", func(t *testing.T) {
		n, err := kvdriver.DecodeAs[int](codec, []byte("-42"))
		require.NoError(t, err)
		assert.Equal(t, -42, n)

		u, err := kvdriver.DecodeAs[uint16](codec, []byte("65535"))
		require.NoError(t, err)
		assert.Equal(t, uint16(65535), u)

		f, err := kvdriver.DecodeAs[float64](codec, []byte("1.5"))
		require.NoError(t, err)
		assert.InDelta(t, 1.5, f, 0.0001)
	})
}

func Test_Codec_Decode_MalformedInputYieldsZeroValue(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	t.Run("garbage_int_text", func(t *testing.T) {
		n, err := kvdriver.DecodeAs[int](codec, []byte("not a number"))

		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("int8_overflow", func(t *testing.T) {
		n, err := kvdriver.DecodeAs[int8](codec, []byte("300"))

		require.NoError(t, err)
		assert.Equal(t, int8(0), n)
	})

	t.Run("garbage_duration_text", func(t *testing.T) {
		d, err := kvdriver.DecodeAs[time.Duration](codec, []byte("soon"))

		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), d)
	})

	t.Run("empty_payload_for_numeric_target", func(t *testing.T) {
		n, err := kvdriver.DecodeAs[int64](codec, []byte{})

		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("garbage_uuid_text", func(t *testing.T) {
		id, err := kvdriver.DecodeAs[uuid.UUID](codec, []byte("not-a-uuid"))

		require.NoError(t, err)
		assert.Equal(t, uuid.UUID{}, id)
	})
}

func Test_Codec_Decode_PointerTargetIsOptional(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	t.Run("parsable_text_yields_pointer_to_value", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*int](codec, []byte("42"))

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 42, *p)
	})

	t.Run("legitimate_zero_yields_pointer_to_zero", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*int](codec, []byte("0"))

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 0, *p)
	})

	t.Run("unparsable_text_yields_nil_pointer", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*int](codec, []byte("not a number"))

		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("nil_payload_yields_nil_pointer", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*int](codec, nil)

		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("text_yields_pointer_to_text", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*string](codec, []byte("hello"))

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "hello", *p)
	})

	t.Run("named_text_yields_pointer_to_named_value", func(t *testing.T) {
		p, err := kvdriver.DecodeAs[*label](codec, []byte("urgent"))

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, label("urgent"), *p)
	})
}

func Test_Codec_Decode_RoundTripsEncodedValues(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	t.Run("time_round_trips_through_wire_layout", func(t *testing.T) {
		instant := time.Date(2024, 6, 1, 12, 30, 45, 0, time.FixedZone("CEST", 2*3600))

		payload, err := codec.Encode(instant)
		require.NoError(t, err)

		decoded, err := kvdriver.DecodeAs[time.Time](codec, payload)
		require.NoError(t, err)
		assert.True(t, instant.Equal(decoded))
	})

	t.Run("uuid_round_trips_through_canonical_form", func(t *testing.T) {
		id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		payload, err := codec.Encode(id)
		require.NoError(t, err)

		decoded, err := kvdriver.DecodeAs[uuid.UUID](codec, payload)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	})

	t.Run("duration_round_trips_through_ticks", func(t *testing.T) {
		payload, err := codec.Encode(90 * time.Second)
		require.NoError(t, err)

		decoded, err := kvdriver.DecodeAs[time.Duration](codec, payload)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, decoded)
	})
}

func Test_Codec_Decode_RegisteredTextParserTakesPrecedence(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	kvdriver.RegisterTextParser(reflect.TypeFor[temperature](), func(text string) (any, bool) {
		digits, found := strings.CutSuffix(text, "C")
		if !found {
			return nil, false
		}

		celsius := 0
		for _, r := range digits {
			if r < '0' || r > '9' {
				return nil, false
			}
			celsius = celsius*10 + int(r-'0')
		}

		return temperature{celsius: celsius}, true
	})

	t.Run("parser_resolves_matching_text", func(t *testing.T) {
		temp, err := kvdriver.DecodeAs[temperature](codec, []byte("21C"))

		require.NoError(t, err)
		assert.Equal(t, temperature{celsius: 21}, temp)
	})

	t.Run("parser_rejection_yields_zero_value", func(t *testing.T) {
		temp, err := kvdriver.DecodeAs[temperature](codec, []byte("very warm"))

		require.NoError(t, err)
		assert.Equal(t, temperature{}, temp)
	})
}

func Test_Codec_Decode_JSONHooks(t *testing.T) {
	serialize, deserialize := kvdriver.JSONHooks()
	codec, err := kvdriver.NewCodec(
		kvdriver.WithSerializeHook(serialize),
		kvdriver.WithDeserializeHook(deserialize),
	)
	require.NoError(t, err)

	t.Run("struct_round_trips_as_json", func(t *testing.T) {
		payload, encodeErr := codec.Encode(wirePoint{X: 3, Y: 4})
		require.NoError(t, encodeErr)

		decoded, decodeErr := kvdriver.DecodeAs[wirePoint](codec, payload)
		require.NoError(t, decodeErr)
		assert.Equal(t, wirePoint{X: 3, Y: 4}, decoded)
	})

	t.Run("hook_error_is_a_hard_failure", func(t *testing.T) {
		decoded, decodeErr := kvdriver.DecodeAs[wirePoint](codec, []byte("{broken json"))

		assert.Error(t, decodeErr)
		assert.Equal(t, wirePoint{}, decoded)
	})
}

func Test_Codec_Decode_HardErrors(t *testing.T) {
	codec := kvdriver.DefaultCodec()

	t.Run("nil_target_type", func(t *testing.T) {
		_, err := codec.Decode([]byte("x"), nil)

		assert.ErrorIs(t, err, kvdriver.ErrNilTargetType)
	})

	t.Run("no_viable_conversion", func(t *testing.T) {
		type opaque struct{ hidden chan int }

		v, err := codec.Decode([]byte("x"), reflect.TypeFor[opaque]())

		assert.ErrorIs(t, err, kvdriver.ErrNoConversion)
		assert.Equal(t, opaque{}, v)
	})

	t.Run("deserialize_hook_error_propagates_unmodified", func(t *testing.T) {
		hookErr := errors.New("deserialize exploded")
		hooked, newErr := kvdriver.NewCodec(kvdriver.WithDeserializeHook(
			func(string, reflect.Type) (any, error) { return nil, hookErr },
		))
		require.NoError(t, newErr)

		_, err := kvdriver.DecodeAs[wirePoint](hooked, []byte("anything"))

		assert.Equal(t, hookErr, err)
	})
}
