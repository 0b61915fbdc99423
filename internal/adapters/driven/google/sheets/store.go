package sheets

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Value input options.
const (
	inputUserEntered = "USER_ENTERED"
	inputRaw         = "RAW"
)

// Store reads and writes cell ranges of one spreadsheet.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	limiter       *google.RateLimiter
}

// New creates a Store bound to spreadsheetID. A nil limiter uses the
// Sheets defaults.
func New(svc *sheets.Service, spreadsheetID string, limiter *google.RateLimiter) *Store {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceSheets)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		limiter:       limiter,
	}
}

// SpreadsheetID returns the bound spreadsheet.
func (s *Store) SpreadsheetID() string {
	return s.spreadsheetID
}

// AppendRows appends after the last row of the collection's table.
// Ledger rows are user-entered so Sheets types dates and amounts; every
// other collection is written raw.
func (s *Store) AppendRows(ctx context.Context, rng domain.Range, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng.A1(), &sheets.ValueRange{Values: rows}).
		ValueInputOption(inputOption(rng.Collection)).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return eris.Wrapf(s.wrap(err), "sheets: append %s", rng.A1())
	}
	return nil
}

// ReadRange returns unformatted cell values; dates come back as their
// displayed text.
func (s *Store) ReadRange(ctx context.Context, rng domain.Range) ([][]any, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng.A1()).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrapf(s.wrap(err), "sheets: read %s", rng.A1())
	}
	return resp.Values, nil
}

// WriteRange overwrites cells from the range's top-left corner.
func (s *Store) WriteRange(ctx context.Context, rng domain.Range, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng.A1(), &sheets.ValueRange{Values: rows}).
		ValueInputOption(inputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return eris.Wrapf(s.wrap(err), "sheets: write %s", rng.A1())
	}
	return nil
}

func (s *Store) wrap(err error) error {
	return google.WrapError(s.limiter.Observe(err))
}

func inputOption(c domain.Collection) string {
	if c == domain.CollectionLedger {
		return inputUserEntered
	}
	return inputRaw
}
