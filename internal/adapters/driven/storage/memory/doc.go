// Package memory provides in-memory implementations of the storage ports.
// They back tests and the `memory` store backend, where nothing outlives
// the process.
package memory
