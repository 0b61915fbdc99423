package driving

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// LedgerService reads the persisted ledger.
type LedgerService interface {
	// History lists tickets, most recent date first.
	History(ctx context.Context) ([]domain.HistoryTicket, error)

	// Insights computes stats and one lens aggregation for tickets dated
	// within [from, to]. Zero times leave that side open.
	Insights(ctx context.Context, from, to time.Time, lens domain.Lens) (*domain.Insights, error)

	// Export writes the whole ledger as a spreadsheet file.
	Export(ctx context.Context, w io.Writer) error
}
