package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Ensure Provisioner implements the interface.
var _ driven.Provisioner = (*Provisioner)(nil)

const spreadsheetMIME = "application/vnd.google-apps.spreadsheet"

// Provisioner finds the ledger spreadsheet by title, creating and seeding it
// when the account has none.
type Provisioner struct {
	sheets  *sheets.Service
	drive   *drive.Service
	limiter *google.RateLimiter
}

// NewProvisioner creates a Provisioner. A nil limiter uses the Drive
// defaults.
func NewProvisioner(sheetsSvc *sheets.Service, driveSvc *drive.Service, limiter *google.RateLimiter) *Provisioner {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceDrive)
	}
	return &Provisioner{
		sheets:  sheetsSvc,
		drive:   driveSvc,
		limiter: limiter,
	}
}

// Ensure returns the id of the spreadsheet named title. When none exists it
// creates one with a tab per collection, frozen header rows on the ledger
// and rules tabs, headers and default settings.
func (p *Provisioner) Ensure(ctx context.Context, title string) (string, bool, error) {
	id, err := p.find(ctx, title)
	if err != nil {
		return "", false, err
	}
	if id != "" {
		logger.Debug("Found spreadsheet %q (%s)", title, id)
		return id, false, nil
	}

	id, err = p.create(ctx, title)
	if err != nil {
		return "", false, err
	}
	if err := p.seed(ctx, id); err != nil {
		return id, true, err
	}

	logger.Info("Created spreadsheet %q (%s)", title, id)
	return id, true, nil
}

func (p *Provisioner) find(ctx context.Context, title string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(title), spreadsheetMIME)
	resp, err := p.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", eris.Wrap(google.WrapError(p.limiter.Observe(err)), "drive: find spreadsheet")
	}
	if len(resp.Files) == 0 {
		return "", nil
	}
	if len(resp.Files) > 1 {
		logger.Warn("Found %d spreadsheets named %q, using the first", len(resp.Files), title)
	}
	return resp.Files[0].Id, nil
}

func (p *Provisioner) create(ctx context.Context, title string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	tabs := make([]*sheets.Sheet, 0, len(domain.AllCollections()))
	for _, c := range domain.AllCollections() {
		props := &sheets.SheetProperties{Title: string(c)}
		if c == domain.CollectionLedger || c == domain.CollectionRules {
			props.GridProperties = &sheets.GridProperties{FrozenRowCount: 1}
		}
		tabs = append(tabs, &sheets.Sheet{Properties: props})
	}

	created, err := p.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets:     tabs,
	}).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrap(google.WrapError(p.limiter.Observe(err)), "sheets: create spreadsheet")
	}
	return created.SpreadsheetId, nil
}

func (p *Provisioner) seed(ctx context.Context, id string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	var data []*sheets.ValueRange
	for _, block := range domain.Seed() {
		data = append(data, &sheets.ValueRange{Range: block.Range.A1(), Values: block.Rows})
	}
	_, err := p.sheets.Spreadsheets.Values.BatchUpdate(id, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: inputRaw,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return eris.Wrap(google.WrapError(p.limiter.Observe(err)), "sheets: seed spreadsheet")
	}
	return nil
}

// escapeQuery escapes a value for a single-quoted Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
