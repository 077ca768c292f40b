package kvdriver

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONSerializeHook returns a SerializeFunc that renders values as JSON.
// It is the ready-made hook for storing structured values (structs, maps,
// slices) that no built-in encode rule covers.
func JSONSerializeHook() SerializeFunc {
	return func(v any) (string, error) {
		return jsonAPI.MarshalToString(v)
	}
}

// JSONDeserializeHook returns a DeserializeFunc that parses JSON wire text
// into the target type. It is the counterpart of JSONSerializeHook.
func JSONDeserializeHook() DeserializeFunc {
	return func(text string, target reflect.Type) (any, error) {
		ptr := reflect.New(target)
		if err := jsonAPI.UnmarshalFromString(text, ptr.Interface()); err != nil {
			return nil, err
		}

		return ptr.Elem().Interface(), nil
	}
}

// JSONHooks returns both JSON codec hooks, for use with WithSerializeHook
// and WithDeserializeHook.
func JSONHooks() (SerializeFunc, DeserializeFunc) {
	return JSONSerializeHook(), JSONDeserializeHook()
}
