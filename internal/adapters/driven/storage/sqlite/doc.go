// Package sqlite provides the durable key-value store for notebooks.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. A Store owns one database
// connection and hands out KeyValueStore views that share it.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.marinebook/data/notebooks.db
//
// # Thread Safety
//
// All operations are thread-safe. Quota checks and writes run in one
// transaction; SQLite in WAL mode serialises writers.
package sqlite
