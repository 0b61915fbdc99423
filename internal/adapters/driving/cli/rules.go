package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage product normalisation rules",
	Long: `Rules override the AI model. Any product whose name contains the
pattern, ignoring case, is shown under the rule's name and category.
The first matching rule wins.`,
	RunE: runRulesList,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in match order",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <pattern> <normalized>",
	Short: "Add a rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRulesAdd,
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Append rules from a YAML file",
	Long: `Appends rules from a YAML list of {pattern, normalized, category}
entries, in file order. Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesImport,
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every rule as YAML",
	RunE:  runRulesExport,
}

func init() {
	rulesAddCmd.Flags().StringP("category", "c", domain.DefaultCategory, "category for matching products")
	rulesExportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	if ruleService == nil {
		return errors.New("rule service not configured")
	}

	rules, err := ruleService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", hint(err))
	}

	if len(rules) == 0 {
		cmd.Println("No rules defined.")
		return nil
	}

	for i, r := range rules {
		cmd.Printf("%3d. %q → %s [%s]\n", i+1, r.Pattern, r.Normalized, r.Category)
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	if ruleService == nil {
		return errors.New("rule service not configured")
	}

	category, err := cmd.Flags().GetString("category")
	if err != nil {
		return fmt.Errorf("getting category flag: %w", err)
	}

	rule := domain.Rule{Pattern: args[0], Normalized: args[1], Category: category}
	if err := ruleService.Add(cmd.Context(), rule); err != nil {
		return fmt.Errorf("failed to add rule: %w", hint(err))
	}

	cmd.Printf("Added rule %q → %s\n", rule.Pattern, rule.Normalized)
	return nil
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	if ruleService == nil {
		return errors.New("rule service not configured")
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open rules file: %w", err)
		}
		defer f.Close()
		r = f
	}

	n, err := ruleService.Import(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("failed to import rules: %w", hint(err))
	}

	cmd.Printf("Imported %d rule(s)\n", n)
	return nil
}

func runRulesExport(cmd *cobra.Command, _ []string) error {
	if ruleService == nil {
		return errors.New("rule service not configured")
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}

	if out == "" {
		if err := ruleService.Export(cmd.Context(), cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to export rules: %w", hint(err))
		}
		return nil
	}

	return writeFile(out, func(w io.Writer) error {
		if err := ruleService.Export(cmd.Context(), w); err != nil {
			return fmt.Errorf("failed to export rules: %w", hint(err))
		}
		cmd.Printf("Rules written to %s\n", out)
		return nil
	})
}

// writeFile creates path and passes it to write, removing the file when
// write fails.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
