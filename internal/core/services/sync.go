package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// ticketNamespace scopes ticket ids derived from mailbox item ids.
var ticketNamespace = uuid.MustParse("6f1e8d2a-4c3b-5a79-9e0d-2b7c4f1a8e63")

const extractionSystem = `You are an expert bookkeeping assistant. Extract structured data from purchase receipts (supermarkets, shops and similar).
Rules:
1. tienda: the clean trading name of the store.
2. fecha: YYYY-MM-DD. If the year is missing, assume the most recent plausible year.
3. items: one entry per product line. Tidy odd names (for example "PROD 250G" becomes "Producto 250g").
4. categoria must be one of: Lácteos, Carne, Fruta/Verdura, Limpieza, Bebidas, Higiene, Otros.
5. total_ticket is the amount paid. Make the item totals add up to it.
6. Put discounts in descuento as a positive amount.
Answer with JSON only.`

const extractionPrompt = `Read this email and extract the purchase receipt.
Ticket id: %s

EMAIL CONTENT:
---
%s
---`

// extractionSchema describes the ticket object the model must return.
const extractionSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "tienda": {"type": "string"},
    "fecha": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "nombre": {"type": "string"},
          "categoria": {"type": "string"},
          "precio_unitario": {"type": "number"},
          "cantidad": {"type": "number"},
          "descuento": {"type": "number"},
          "precio_total_linea": {"type": "number"}
        },
        "required": ["nombre", "categoria", "precio_unitario", "cantidad", "precio_total_linea"]
      }
    },
    "total_ticket": {"type": "number"}
  },
  "required": ["id", "tienda", "fecha", "items", "total_ticket"]
}`

// SyncConfig tunes the orchestrator.
type SyncConfig struct {
	// DeterministicIDs derives each ticket id from its mailbox item id, so
	// a retried item reuses its id and is not appended twice.
	DeterministicIDs bool
}

// SyncOrchestrator drives one mailbox-to-ledger run.
type SyncOrchestrator struct {
	settings driving.SettingsService
	mailbox  driven.Mailbox
	model    driven.Model
	store    driven.Store
	metrics  driven.Metrics
	config   SyncConfig

	now func() time.Time

	// Status tracking
	mu     sync.RWMutex
	active *driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator. metrics may be nil.
func NewSyncOrchestrator(
	settings driving.SettingsService,
	mailbox driven.Mailbox,
	model driven.Model,
	store driven.Store,
	metrics driven.Metrics,
	config SyncConfig,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		settings: settings,
		mailbox:  mailbox,
		model:    model,
		store:    store,
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
}

// Run processes every pending mailbox item, strictly one after another.
//
// Loading settings and discovering items are fatal on failure. From then
// on each item is isolated: any failure while fetching, extracting,
// persisting or marking it is recorded as that item's error result and
// the run moves on. Results follow discovery order.
func (o *SyncOrchestrator) Run(ctx context.Context, progress driving.ProgressFunc) ([]domain.SyncResult, error) {
	if err := o.checkDependencies(); err != nil {
		return nil, err
	}

	status, err := o.begin()
	if err != nil {
		return nil, err
	}
	defer o.end()

	// 1. INIT
	progress.Report("Checking the ticket database...")
	settings, err := o.settings.Get(ctx)
	if err != nil {
		o.observeRun(true)
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// 2. DISCOVER
	progress.Report("Searching the mailbox for new tickets...")
	ids, err := o.mailbox.Search(ctx, settings.PendingQuery())
	if err != nil {
		o.observeRun(true)
		return nil, fmt.Errorf("discover: %w", err)
	}

	if len(ids) == 0 {
		progress.Report("All caught up. No pending tickets.")
		o.finalize(ctx)
		o.observeRun(false)
		return []domain.SyncResult{}, nil
	}

	o.mu.Lock()
	status.Pending = len(ids)
	o.mu.Unlock()

	logger.Info("Starting ticket sync: %d pending", len(ids))

	// 3. PER-ITEM
	run := &syncRun{settings: settings, total: len(ids), progress: progress}
	results := make([]domain.SyncResult, 0, len(ids))
	for i, sourceID := range ids {
		run.index = i + 1
		result := o.processItem(ctx, run, sourceID)
		results = append(results, result)

		o.mu.Lock()
		if result.Succeeded() {
			status.ItemsProcessed++
		} else {
			status.ErrorCount++
		}
		o.mu.Unlock()

		if o.metrics != nil {
			o.metrics.SyncItem(result.Outcome)
		}
	}

	// 4. FINALIZE
	o.finalize(ctx)

	succeeded, failed := domain.CountOutcomes(results)
	logger.Info("Ticket sync complete: %d succeeded, %d failed", succeeded, failed)
	progress.Report(fmt.Sprintf("Sync finished: %d saved, %d failed.", succeeded, failed))
	o.observeRun(false)

	return results, nil
}

// Status returns the state of the active run, or an idle status.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return &driving.SyncStatus{Running: false}, nil
	}
	// Return a copy to avoid race conditions
	status := *o.active
	return &status, nil
}

// syncRun carries per-run state through the item loop.
type syncRun struct {
	settings *domain.Settings
	progress driving.ProgressFunc
	index    int
	total    int

	// ledgerIDs is loaded on first use when ids are deterministic.
	ledgerIDs map[string]struct{}
}

// processItem runs EXTRACT, INFER, PERSIST and MARK for one item and
// converts any failure into an error result.
func (o *SyncOrchestrator) processItem(ctx context.Context, run *syncRun, sourceID string) domain.SyncResult {
	ticketID, err := o.processOne(ctx, run, sourceID)
	if err != nil {
		logger.Debug("Failed to process %s: %v", sourceID, err)
		return domain.SyncResult{
			SourceID: sourceID,
			TicketID: ticketID,
			Outcome:  domain.OutcomeError,
			Error:    err.Error(),
		}
	}
	return domain.SyncResult{
		SourceID: sourceID,
		TicketID: ticketID,
		Outcome:  domain.OutcomeSuccess,
	}
}

func (o *SyncOrchestrator) processOne(ctx context.Context, run *syncRun, sourceID string) (string, error) {
	run.progress.Report(fmt.Sprintf("Processing ticket %d of %d...", run.index, run.total))

	// 1. ID
	ticketID := o.ticketID(sourceID)

	if o.config.DeterministicIDs {
		persisted, err := o.alreadyPersisted(ctx, run, ticketID)
		if err != nil {
			return ticketID, err
		}
		if persisted {
			logger.Debug("Ticket %s already in ledger, marking %s", ticketID, sourceID)
			return ticketID, o.mark(ctx, run, sourceID)
		}
	}

	// 2. EXTRACT
	content, err := o.mailbox.FetchContent(ctx, sourceID)
	if err != nil {
		return ticketID, fmt.Errorf("fetch content: %w", err)
	}

	// 3. INFER
	run.progress.Report(fmt.Sprintf("Extracting ticket data with AI (%d/%d)...", run.index, run.total))
	ticket, err := o.extract(ctx, content, ticketID)
	if err != nil {
		return ticketID, err
	}

	// 4. PERSIST
	run.progress.Report("Saving ticket to the ledger...")
	if err := o.persist(ctx, ticket); err != nil {
		return ticketID, err
	}
	if run.ledgerIDs != nil {
		run.ledgerIDs[ticketID] = struct{}{}
	}

	// 5. MARK
	return ticketID, o.mark(ctx, run, sourceID)
}

func (o *SyncOrchestrator) extract(ctx context.Context, content, ticketID string) (*domain.Ticket, error) {
	raw, err := o.model.Infer(ctx, driven.InferRequest{
		System: extractionSystem,
		Prompt: fmt.Sprintf(extractionPrompt, ticketID, content),
		Schema: extractionSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	ticket, err := ValidateTicket([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid AI data: %w", err)
	}
	ticket.ID = ticketID
	return ticket, nil
}

// persist appends the item rows and the single Total Row in one call.
func (o *SyncOrchestrator) persist(ctx context.Context, ticket *domain.Ticket) error {
	ledger := ticket.Rows()
	rows := make([][]any, len(ledger))
	for i, row := range ledger {
		rows[i] = row.Cells()
	}
	if err := o.store.AppendRows(ctx, domain.LedgerAppendRange, rows); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func (o *SyncOrchestrator) mark(ctx context.Context, run *syncRun, sourceID string) error {
	if err := o.mailbox.ApplyLabel(ctx, sourceID, run.settings.ProcessedLabel); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

func (o *SyncOrchestrator) alreadyPersisted(ctx context.Context, run *syncRun, ticketID string) (bool, error) {
	if run.ledgerIDs == nil {
		rows, err := loadLedger(ctx, o.store)
		if err != nil {
			return false, err
		}
		run.ledgerIDs = make(map[string]struct{}, len(rows))
		for _, row := range rows {
			run.ledgerIDs[row.TicketID] = struct{}{}
		}
	}
	_, ok := run.ledgerIDs[ticketID]
	return ok, nil
}

func (o *SyncOrchestrator) ticketID(sourceID string) string {
	if o.config.DeterministicIDs {
		return uuid.NewSHA1(ticketNamespace, []byte(sourceID)).String()
	}
	return uuid.NewString()
}

// finalize records the run time. Failure is logged, not returned.
func (o *SyncOrchestrator) finalize(ctx context.Context) {
	if err := o.settings.UpdateLastSync(ctx, o.now()); err != nil {
		logger.Warn("Failed to update last sync time: %v", err)
	}
}

func (o *SyncOrchestrator) checkDependencies() error {
	switch {
	case o.settings == nil || o.store == nil:
		return domain.ErrStoreNotConfigured
	case o.mailbox == nil:
		return domain.ErrMailboxNotConfigured
	case o.model == nil:
		return domain.ErrModelUnavailable
	}
	return nil
}

func (o *SyncOrchestrator) begin() (*driving.SyncStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		return nil, domain.ErrSyncInProgress
	}
	o.active = &driving.SyncStatus{Running: true}
	return o.active, nil
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

func (o *SyncOrchestrator) observeRun(failed bool) {
	if o.metrics != nil {
		o.metrics.SyncRun(failed)
	}
}
