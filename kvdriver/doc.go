// Package kvdriver provides the core abstractions of the key-value driver:
// prepared commands, the wire codec, interceptor contracts, the trace
// notification hub, and the dispatcher contract implemented by transports.
//
// This package defines the fundamental types used by the client engine and
// by adapter/transport implementations:
//   - Command: a prepared operation handed to a Dispatcher
//   - Codec: converts native values to and from wire-safe payloads
//   - Interceptor / InterceptorFactory: per-call Before/After hooks that may
//     observe or substitute a call's outcome
//   - TraceHub: the optional post-call notification stream
//   - Dispatcher / Reply: the transport contract consumed by the engine
//
// Common usage pattern:
//
//	codec := kvdriver.DefaultCodec()
//	payload, err := codec.Encode(someValue)
//	if err != nil {
//		// handle error
//	}
//
//	value, err := kvdriver.DecodeAs[int64](codec, payload)
//	if err != nil {
//		// handle error
//	}
//
// The decode path is deliberately forgiving: a nil payload, empty text, or
// unparsable text yields the target type's zero value instead of an error.
// Only a user-supplied hook or a target with no viable conversion produces
// a hard error.
package kvdriver
