// =============================================================================
// Genset Invoicer - Statement Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer statement --customer c [--from YYYY-MM-DD] [--to YYYY-MM-DD]
//                      [--shipper s] [--theme t] [--out file.html|file.pdf]
//
// The statement lists every operation of the customer inside the window,
// grouped by route on the document. When nothing matches, a notice is
// printed and nothing is written.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/statement"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// NoMatchesNotice is printed when a statement request selects nothing.
const NoMatchesNotice = "No operations found for the selected criteria."

var stmtReq statement.Request

var (
	stmtTheme string
	stmtOut   string
)

var statementCmd = &cobra.Command{
	Use:   "statement",
	Short: "Build a statement of account for one customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireCustomer(stmtReq.Customer); err != nil {
			return err
		}
		theme, err := app.theme(stmtTheme)
		if err != nil {
			return err
		}

		st, err := app.session.Statement(stmtReq, time.Now())
		if errors.Is(err, statement.ErrNoMatches) {
			fmt.Fprintln(cmd.OutOrStdout(), NoMatchesNotice)
			return nil
		}
		if err != nil {
			return err
		}

		path, err := app.writeDocument(cmd.Context(), st, theme, stmtOut)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d operation(s), %s %s, written to %s\n",
			st.SerialNumber, st.Period, len(st.LineItems),
			render.FormatAmount(st.TotalRate), types.Currency, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statementCmd)

	statementCmd.Flags().StringVarP(&stmtReq.Customer, "customer", "c", "", "Customer name (required)")
	statementCmd.Flags().StringVar(&stmtReq.From, "from", "", "First operation date, YYYY-MM-DD (inclusive)")
	statementCmd.Flags().StringVar(&stmtReq.To, "to", "", "Last operation date, YYYY-MM-DD (inclusive)")
	statementCmd.Flags().StringVar(&stmtReq.Shipper, "shipper", "", "Only operations of this shipper (exact match)")
	statementCmd.Flags().StringVarP(&stmtTheme, "theme", "t", "", "Document theme (default render.theme)")
	statementCmd.Flags().StringVarP(&stmtOut, "out", "o", "", "Output file; .pdf is captured, anything else is HTML")
	_ = statementCmd.MarkFlagRequired("customer")
}
