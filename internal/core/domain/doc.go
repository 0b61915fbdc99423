// Package domain defines the core business entities for OmniTicket.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Ticket: One purchase event with its line items and total
//   - LedgerRow: The flattened, persisted form of a ticket
//   - Rule: A user-authored substring override for product names
//   - NameMapping: A learned raw-to-simplified product name pair
//   - Settings: Remote configuration kept alongside the ledger
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library and value-type libraries
//     (shopspring/decimal for amounts, x/text for case folding)
//   - Cannot Import: Any internal/ package, any I/O library
package domain
