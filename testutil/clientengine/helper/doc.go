// Package helper provides test doubles for client engine tests: an in-memory
// dispatcher that implements the full command vocabulary without a database,
// and spies that capture logging, metrics, and tracing calls for inspection.
package helper
