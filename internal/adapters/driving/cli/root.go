// Package cli implements the omniticket command line.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services used by the commands. Nil services make their commands fail
// with a "not configured" error.
var (
	syncOrchestrator driving.SyncOrchestrator
	nameResolver     driving.NameResolver
	ruleService      driving.RuleService
	ledgerService    driving.LedgerService
	settingsService  driving.SettingsService
	provisioner      driven.Provisioner
	sessionStore     driven.SessionStore
	scheduler        driving.Scheduler
	metricsHandler   http.Handler
	metricsAddr      string

	ledgerTitle      = "OmniTicket_DB"
	schedulerEnabled bool
)

// Services carries the wired application for the commands.
type Services struct {
	Sync        driving.SyncOrchestrator
	Resolver    driving.NameResolver
	Rules       driving.RuleService
	Ledger      driving.LedgerService
	Settings    driving.SettingsService
	Provisioner driven.Provisioner
	Session     driven.SessionStore

	// Scheduler runs the periodic sync while serve is running.
	Scheduler        driving.Scheduler
	SchedulerEnabled bool

	// Metrics serves prometheus metrics when serve is given --metrics-addr.
	Metrics http.Handler

	// MetricsAddr is the default for --metrics-addr.
	MetricsAddr string

	// LedgerTitle is the spreadsheet name init looks up or creates.
	LedgerTitle string
}

// Bootstrap builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type Bootstrap func(configPath string, verbose bool) (*Services, func(), error)

var (
	bootstrap  Bootstrap
	cleanup    func()
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "omniticket",
	Short: "Turn receipt emails into a spending ledger",
	Long: `OmniTicket reads labelled receipt emails, extracts each purchase with an
AI model and appends the items to a spreadsheet ledger.

Run "omniticket init" once to find or create the ledger, then
"omniticket sync" to process new receipts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.omniticket/config.toml)")
}

// SetBootstrap registers the function that wires services before a command
// runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices assigns the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	syncOrchestrator = s.Sync
	nameResolver = s.Resolver
	ruleService = s.Rules
	ledgerService = s.Ledger
	settingsService = s.Settings
	provisioner = s.Provisioner
	sessionStore = s.Session
	scheduler = s.Scheduler
	schedulerEnabled = s.SchedulerEnabled
	metricsHandler = s.Metrics
	metricsAddr = s.MetricsAddr
	if s.LedgerTitle != "" {
		ledgerTitle = s.LedgerTitle
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, done, err := bootstrap(configPath, verbose)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// skipBootstrap marks commands that run without services.
const skipBootstrap = "omniticket/skip-bootstrap"

// hint adds the next step to errors the user can fix.
func hint(err error) error {
	switch {
	case errors.Is(err, domain.ErrStoreNotConfigured):
		return fmt.Errorf("%w: run \"omniticket init\" first", err)
	case errors.Is(err, domain.ErrModelUnavailable):
		return fmt.Errorf("%w: set a key with \"omniticket settings set-key\"", err)
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthInvalid):
		return fmt.Errorf("%w: refresh the Google token in the session file", err)
	}
	return err
}
