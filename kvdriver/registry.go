package kvdriver

import (
	"reflect"
	"sync"
)

// TextParserFunc resolves wire text into a value of a specific type.
// The second return value reports whether the text could be parsed;
// returning false makes the decoder fall back to the type's zero value.
type TextParserFunc func(text string) (any, bool)

var textParsersMu sync.RWMutex
var textParsers = make(map[reflect.Type]TextParserFunc)

// RegisterTextParser registers a parser for the given target type.
// Registered parsers take precedence over the encoding.TextUnmarshaler
// capability and over the deserialize hook. Registration is intended to
// happen at startup; a later registration for the same type replaces the
// earlier one.
func RegisterTextParser(target reflect.Type, parse TextParserFunc) {
	if target == nil || parse == nil {
		return
	}

	textParsersMu.Lock()
	defer textParsersMu.Unlock()

	textParsers[target] = parse
}

// lookupTextParser returns the registered parser for target, if any.
func lookupTextParser(target reflect.Type) (TextParserFunc, bool) {
	textParsersMu.RLock()
	defer textParsersMu.RUnlock()

	parse, ok := textParsers[target]

	return parse, ok
}
