package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [names...]",
	Short: "Simplify product names",
	Long: `Maps raw product names to short generic names.

Names matched by a rule are left to the rule. Names already in the mapping
cache reuse the cached answer. The rest are sent to the AI model in one
batch and the answers are added to the cache.

Without arguments, names are read from standard input, one per line.`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if nameResolver == nil {
		return errors.New("name resolver not configured")
	}

	names := args
	if len(names) == 0 {
		names = readNames(cmd)
	}
	if len(names) == 0 {
		return errors.New("no product names given")
	}

	mapping, err := nameResolver.Normalize(cmd.Context(), names)
	if err != nil {
		return fmt.Errorf("normalisation failed: %w", hint(err))
	}

	for _, name := range names {
		if simplified, ok := mapping[name]; ok {
			cmd.Printf("%s → %s\n", name, simplified)
		}
	}
	cmd.Printf("%d of %d name(s) resolved\n", len(mapping), len(names))
	return nil
}

func readNames(cmd *cobra.Command) []string {
	var names []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names
}
