package kvdriver

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Encode converts a native value into its wire-safe payload.
//
// Dispatch order: nil, byte/string/character passthrough, booleans as
// "1"/"0", date-times in the fixed wire layout, durations as tick counts,
// unique identifiers and numeric primitives in their canonical invariant
// form, then the serialize hook, then a generic string conversion.
//
// Encode performs no I/O and returns an error only when a user-supplied
// hook fails; that error propagates unmodified.
func (c *Codec) Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	case Char:
		return []byte(string(rune(val))), nil
	case bool:
		if val {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case time.Time:
		return []byte(val.Format(wireTimeLayout)), nil
	case time.Duration:
		return []byte(strconv.FormatInt(val.Nanoseconds()/nanosPerTick, 10)), nil
	case uuid.UUID:
		return []byte(val.String()), nil
	case int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(val, 10)), nil
	case float32:
		return []byte(strconv.FormatFloat(float64(val), 'g', -1, 32)), nil
	case float64:
		return []byte(strconv.FormatFloat(val, 'g', -1, 64)), nil
	}

	if c.serialize != nil {
		text, err := c.serialize(v)
		if err != nil {
			return nil, err
		}

		return []byte(text), nil
	}

	return []byte(fmt.Sprint(v)), nil
}
