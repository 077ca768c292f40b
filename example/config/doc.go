// Package config provides database configuration helpers for PostgreSQL
// connections for the examples.
//
// This package contains factory functions for creating database connections
// using different PostgreSQL drivers (pgxpool.Pool, sql.DB, sqlx.DB) with a
// pre-configured demo database DSN.
package config
