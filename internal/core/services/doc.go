// Package services implements the driving port interfaces.
//
// NotebookStorage persists the collection through a primary and a fallback
// KeyValueStore. ExecutionEngine runs cell source on a ScriptRuntime.
// Workspace owns the collection and opens an Editor per notebook; editors
// autosave through the workspace after a quiet period.
package services
