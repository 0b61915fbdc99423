// Package sqlite provides the offline implementation of the driven store
// ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file serves:
//
//   - Store: the settings, ledger, rules and name cache collections, kept
//     as individual cells so reads and writes behave like spreadsheet ranges
//   - SchedulerStore: scheduled task state and run history
//   - Provisioner: seeds headers and default settings on first use
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.omniticket/data/omniticket.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
