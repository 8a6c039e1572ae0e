// Package memory provides in-memory implementations of driven ports.
//
// KVStore backs the session fallback for notebook persistence and the
// "memory" storage backend. ConfigStore backs tests and one-off runs.
package memory
