package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// Store is the spreadsheet-shaped persistence collaborator. Every logical
// collection (settings, ledger, rules, mapping cache) lives in one store.
// Rows are slices of text or number cells.
type Store interface {
	// AppendRows adds rows after the last non-empty row of the collection.
	AppendRows(ctx context.Context, rng domain.Range, rows [][]any) error

	// ReadRange returns the rows inside the range, starting at its first
	// row. Empty rows between data rows are returned as empty slices;
	// trailing empty rows and trailing empty cells are omitted.
	ReadRange(ctx context.Context, rng domain.Range) ([][]any, error)

	// WriteRange overwrites cells starting at the top-left corner of the
	// range. Rows outside the written block are left untouched.
	WriteRange(ctx context.Context, rng domain.Range, rows [][]any) error
}

// Exporter renders a table of cells as a downloadable document.
type Exporter interface {
	Export(w io.Writer, sheet string, header []any, rows [][]any) error
}

// Metrics observes pipeline activity. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// SyncItem counts one processed mailbox item by outcome.
	SyncItem(outcome domain.SyncOutcome)

	// SyncRun counts a finished run.
	SyncRun(failed bool)

	// ResolveBatch counts one AI normalisation batch.
	ResolveBatch(sent, learned int)
}

// Provisioner creates the store's collections and header rows on first use.
type Provisioner interface {
	// Ensure locates the store by title, creating and seeding it when it does
	// not exist. It returns the store id and whether it was created.
	Ensure(ctx context.Context, title string) (id string, created bool, err error)
}
