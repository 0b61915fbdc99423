package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Find or create the ticket ledger",
	Long: `Looks up the ledger by name and creates it when it does not exist yet.

A new ledger gets the Settings, Gastos, Rules and Mapping_Cache collections
with their header rows and default settings. The ledger id is saved in the
session file so later commands use it directly.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if provisioner == nil {
		return errors.New("provisioner not configured")
	}

	id, created, err := provisioner.Ensure(cmd.Context(), ledgerTitle)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger: %w", hint(err))
	}

	if sessionStore != nil {
		if err := saveLedgerID(sessionStore, id); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	if created {
		cmd.Printf("Created ledger %q (%s)\n", ledgerTitle, id)
	} else {
		cmd.Printf("Using existing ledger %q (%s)\n", ledgerTitle, id)
	}
	return nil
}

func saveLedgerID(store driven.SessionStore, id string) error {
	session, err := store.Load()
	if err != nil {
		return err
	}
	if session == nil {
		session = &driven.Session{}
	}
	if session.SpreadsheetID == id {
		return nil
	}
	session.SpreadsheetID = id
	return store.Save(session)
}
