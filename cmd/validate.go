// =============================================================================
// Genset Invoicer - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer validate <files...> [--strict]
//
// Import never rejects a line; it fills in defaults. Validate reports the
// lines where that would happen so they can be fixed in the sheet first.
// Nothing is imported.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/validation"
)

// strict makes warnings fail the command.
var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate <files...>",
	Short: "Check booking sheets without importing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var warnings int

		for _, path := range args {
			result, err := validation.ValidateFile(path)
			if err != nil {
				return err
			}
			app.logger.Debug("file validated",
				zap.String("file", path),
				zap.Int("rows", result.Rows),
				zap.Int("issues", len(result.Issues)))

			if result.Clean() {
				fmt.Fprintf(out, "%s: %d row(s), no issues\n", path, result.Rows)
				continue
			}
			fmt.Fprintf(out, "%s: %d row(s), %d warning(s), %d note(s)\n", path, result.Rows,
				result.Count(validation.SeverityWarning), result.Count(validation.SeverityInfo))
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			warnings += result.Count(validation.SeverityWarning)
		}

		if strict && warnings > 0 {
			return fmt.Errorf("%d warning(s) found", warnings)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any warning is found")
}
