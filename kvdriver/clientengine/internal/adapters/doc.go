// Package adapters provides database-backed dispatcher implementations for
// the key-value client engine.
//
// The package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgxpool.Pool, sql.DB, and sqlx.DB. All adapters expose
// equivalent functionality through a common DBAdapter interface; the
// KeyValueDispatcher translates driver commands into SQL against a
// key-value table (key, value, expires_at) on top of any of them.
package adapters
