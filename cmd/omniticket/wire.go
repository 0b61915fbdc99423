package main

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/anthropic"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/export"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google/gmail"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google/sheets"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/session"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/omniticket-cli/internal/config"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/services"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
	"github.com/custodia-labs/omniticket-cli/internal/metrics"
)

// backend is the store chosen by store.backend.
type backend struct {
	store       driven.Store
	provisioner driven.Provisioner
	scheduler   driven.SchedulerStore
	close       func() error
}

// bootstrap loads configuration and wires every adapter and service.
func bootstrap(configPath string, verbose bool) (*cli.Services, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := config.InitLogger(cfg.Log, verbose); err != nil {
		return nil, nil, err
	}

	ctx := context.Background()

	sessions, err := session.NewFileStore(cfg.Google.TokenFile)
	if err != nil {
		return nil, nil, err
	}
	tokens := session.NewTokenProvider(sessions, session.OAuthClient{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
	})
	ts := google.NewTokenSource(ctx, tokens)

	gmailSvc, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "creating gmail service")
	}
	mailbox := gmail.New(gmailSvc, google.NewRateLimiter(google.ServiceGmail))

	b, err := openBackend(ctx, cfg, sessions, ts)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Using %s store backend", cfg.Store.Backend)

	reg := metrics.NewRegistry()
	settings := services.NewSettingsService(b.store)

	model := anthropic.NewKeyed(anthropic.Config{
		APIKey:    cfg.Anthropic.Key,
		BaseURL:   cfg.Anthropic.BaseURL,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	}, storedKey(settings))

	orch := services.NewSyncOrchestrator(settings, mailbox, model, b.store, reg, services.SyncConfig{
		DeterministicIDs: cfg.Sync.DeterministicIDs,
	})

	schedCfg := domain.DefaultSchedulerConfig()
	schedCfg.TaskConfigs[domain.TaskIDTicketSync] = domain.TaskConfig{
		Enabled:  true,
		Interval: cfg.Sync.Interval,
	}

	svc := &cli.Services{
		Sync:             orch,
		Resolver:         services.NewNameResolver(model, b.store, reg, cfg.Resolver.BatchSize),
		Rules:            services.NewRuleService(b.store),
		Ledger:           services.NewLedgerService(b.store, export.NewXLSX()),
		Settings:         settings,
		Provisioner:      b.provisioner,
		Session:          sessions,
		Scheduler:        services.NewScheduler(schedCfg, b.scheduler, orch),
		SchedulerEnabled: schedCfg.Enabled,
		Metrics:          reg.Handler(),
		MetricsAddr:      cfg.Metrics.Addr,
		LedgerTitle:      cfg.Store.SpreadsheetName,
	}

	cleanup := func() {
		if b.close != nil {
			if err := b.close(); err != nil {
				logger.Warn("closing store: %v", err)
			}
		}
		_ = zap.L().Sync()
	}
	return svc, cleanup, nil
}

// openBackend builds the store selected by the configuration. A Sheets
// ledger without a known spreadsheet id leaves the store unset until
// "omniticket init" records one.
func openBackend(ctx context.Context, cfg *config.Config, sessions *session.FileStore, ts oauth2.TokenSource) (*backend, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := sqlite.NewStore(cfg.Store.SQLiteDir)
		if err != nil {
			return nil, err
		}
		return &backend{store: db, provisioner: db, scheduler: db.SchedulerStore(), close: db.Close}, nil

	case config.BackendMemory:
		mem := memory.NewStore()
		return &backend{store: mem, provisioner: mem, scheduler: memory.NewSchedulerStore()}, nil
	}

	sheetsSvc, err := google.NewSheetsService(ctx, ts)
	if err != nil {
		return nil, eris.Wrap(err, "creating sheets service")
	}
	driveSvc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, eris.Wrap(err, "creating drive service")
	}
	limiter := google.NewRateLimiter(google.ServiceSheets)

	b := &backend{
		provisioner: sheets.NewProvisioner(sheetsSvc, driveSvc, limiter),
		scheduler:   memory.NewSchedulerStore(),
	}

	id := cfg.Store.SpreadsheetID
	if id == "" {
		saved, err := sessions.Load()
		if err != nil {
			return nil, err
		}
		if saved != nil {
			id = saved.SpreadsheetID
		}
	}
	if id != "" {
		b.store = sheets.New(sheetsSvc, id, limiter)
	}
	return b, nil
}

// storedKey reads the AI key saved in the ledger settings. A ledger that
// is not configured yet has no key.
func storedKey(settings *services.SettingsService) anthropic.KeyFunc {
	return func(ctx context.Context) (string, error) {
		s, err := settings.Get(ctx)
		if errors.Is(err, domain.ErrStoreNotConfigured) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return s.AIAPIKey, nil
	}
}
