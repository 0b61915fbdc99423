package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// dateLayout is the format of ledger dates and date flags.
const dateLayout = "2006-01-02"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List processed tickets, newest first",
	RunE:  runHistory,
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show spending stats for a date range",
	Long: `Shows total spent, average ticket, top category and ticket count, and
groups line totals by one lens: products, categories or stores.

Product names are shown through the rules first, then the mapping cache.`,
	RunE: runInsights,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to an Excel file",
	RunE:  runExport,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum tickets to show (0 = all)")

	insightsCmd.Flags().StringP("lens", "l", string(domain.LensCategories), "grouping: products, categories or stores")
	insightsCmd.Flags().String("from", "", "first date to include (YYYY-MM-DD)")
	insightsCmd.Flags().String("to", "", "last date to include (YYYY-MM-DD)")
	insightsCmd.Flags().Int("top", 10, "entries to show (0 = all)")

	exportCmd.Flags().StringP("out", "o", "omniticket.xlsx", "output file")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(exportCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}

	tickets, err := ledgerService.History(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", hint(err))
	}

	if len(tickets) == 0 {
		cmd.Println("No tickets yet.")
		return nil
	}

	if limit > 0 && len(tickets) > limit {
		tickets = tickets[:limit]
	}
	for _, t := range tickets {
		cmd.Printf("%-10s  %-24s %10s  %s\n", t.Date, t.Store, t.Total.StringFixed(2), t.ID)
	}
	return nil
}

func runInsights(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}

	lensFlag, _ := cmd.Flags().GetString("lens")
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	top, _ := cmd.Flags().GetInt("top")

	lens := domain.Lens(lensFlag)
	if !lens.IsValid() {
		return fmt.Errorf("unknown lens %q: use products, categories or stores", lensFlag)
	}
	from, err := parseDateFlag("from", fromFlag)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", toFlag)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return errors.New("--to is before --from")
	}

	insights, err := ledgerService.Insights(cmd.Context(), from, to, lens)
	if err != nil {
		return fmt.Errorf("failed to compute insights: %w", hint(err))
	}

	stats := insights.Stats
	cmd.Println("Spending")
	cmd.Println("========")
	cmd.Printf("  Total spent:  %s\n", stats.TotalSpent.StringFixed(2))
	cmd.Printf("  Avg. ticket:  %s\n", stats.AvgTicket.StringFixed(2))
	cmd.Printf("  Top category: %s\n", stats.TopCategory)
	cmd.Printf("  Tickets:      %d\n", stats.TicketCount)
	cmd.Println()

	cmd.Printf("By %s\n", insights.Lens)
	entries := insights.Entries
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	if len(entries) == 0 {
		cmd.Println("  (no spending in range)")
		return nil
	}
	for _, e := range entries {
		cmd.Printf("  %-30s %10s\n", e.Name, e.Value.StringFixed(2))
	}
	return nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: use YYYY-MM-DD", name, value)
	}
	return t, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}

	return writeFile(out, func(w io.Writer) error {
		if err := ledgerService.Export(cmd.Context(), w); err != nil {
			return fmt.Errorf("failed to export ledger: %w", hint(err))
		}
		cmd.Printf("Ledger written to %s\n", out)
		return nil
	})
}
