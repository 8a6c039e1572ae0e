// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KeyValueStore: Durable primary store and session fallback store for notebooks
//   - ScriptRuntime: Interprets code cell source with the marine helpers loaded
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FileSink: Writes exported notebooks to disk. Without it, exports are returned as text only.
//   - ConfigWatcher: Reports configuration file changes. Without it, settings apply on restart.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
