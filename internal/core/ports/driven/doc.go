// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Mailbox: Discovers receipt emails and marks them processed (Gmail)
//   - Model: Structured inference over text (Anthropic)
//   - Store: Spreadsheet-shaped persistence for settings, ledger, rules and
//     the name cache (Google Sheets, SQLite, memory)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Provisioner: Creates the store on first run. Without it, `init` fails.
//   - SchedulerStore: Scheduler state. Only needed by `serve`.
//   - SessionStore: Token and spreadsheet id persistence.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
