package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Process new receipt emails",
	Long: `Searches the mailbox for labelled receipts that are not yet processed,
extracts each one with the AI model and appends it to the ledger.

Each email is handled on its own: a failure is reported for that email and
the run continues with the next one. Failed emails keep their label and are
picked up again by the next sync.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("plain", false, "print progress lines instead of the live view")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return fmt.Errorf("getting plain flag: %w", err)
	}

	if !plain && isTerminal(cmd.OutOrStdout()) {
		done, err := tui.RunSync(cmd.Context(), syncOrchestrator, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("sync failed: %w", hint(err))
		}
		if done.Err != nil {
			return fmt.Errorf("sync failed: %w", hint(done.Err))
		}
		return nil
	}

	results, err := syncOrchestrator.Run(cmd.Context(), func(msg string) {
		cmd.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", hint(err))
	}

	printSyncSummary(cmd, results)
	return nil
}

func printSyncSummary(cmd *cobra.Command, results []domain.SyncResult) {
	succeeded, failed := domain.CountOutcomes(results)
	cmd.Printf("\nProcessed %d ticket(s), %d failed\n", succeeded, failed)
	for _, r := range results {
		if !r.Succeeded() {
			cmd.Printf("  ✗ %s: %s\n", r.SourceID, r.Error)
		}
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
