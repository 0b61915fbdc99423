package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage ledger settings",
	Long: `View and change the settings stored in the ledger: the mailbox labels
that select receipts, the AI API key and the time of the last sync.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the AI API key",
	Long: `Stores the AI API key in the ledger settings. A stored key takes
precedence over anthropic.key in the config file.

Without an argument the key is read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSetKey,
}

var settingsLabelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Set the mailbox labels",
	RunE:  runSettingsLabels,
}

func init() {
	settingsLabelsCmd.Flags().String("search", "", "label that marks receipts to process")
	settingsLabelsCmd.Flags().String("processed", "", "label applied once a receipt is in the ledger")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsLabelsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", hint(err))
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Mailbox]")
	cmd.Printf("  Search label:    %s\n", settings.SearchLabel)
	cmd.Printf("  Processed label: %s\n", settings.ProcessedLabel)
	cmd.Println()

	cmd.Println("[AI]")
	if settings.AIAPIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.AIAPIKey))
	} else {
		cmd.Println("  API Key: (not set)")
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Last sync: %s\n", settings.LastSync)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		cmd.Print("API key: ")
		key = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}

	if err := settingsService.SetAPIKey(cmd.Context(), key); err != nil {
		return fmt.Errorf("failed to save API key: %w", hint(err))
	}

	cmd.Printf("API key saved: %s\n", maskAPIKey(key))
	return nil
}

func runSettingsLabels(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	search, _ := cmd.Flags().GetString("search")
	processed, _ := cmd.Flags().GetString("processed")
	if search == "" && processed == "" {
		return errors.New("set --search, --processed or both")
	}

	current, err := settingsService.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", hint(err))
	}
	if search == "" {
		search = current.SearchLabel
	}
	if processed == "" {
		processed = current.ProcessedLabel
	}
	if search == processed {
		return errors.New("search and processed labels must differ")
	}

	if err := settingsService.SetLabels(cmd.Context(), search, processed); err != nil {
		return fmt.Errorf("failed to save labels: %w", hint(err))
	}

	cmd.Printf("Labels saved: search %q, processed %q\n", search, processed)
	return nil
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
