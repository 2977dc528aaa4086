// =============================================================================
// Genset Invoicer - Invoices and Preview Commands
// =============================================================================
//
// COMMAND USAGE:
//   invoicer invoices [--search s] [--customer c]
//   invoicer preview <bookingRef> [--theme t] [--out file.html|file.pdf]
//
// Invoices already previewed or exported are listed in red.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

var (
	searchTerm     string
	customerFilter string
	previewTheme   string
	previewOut     string
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#94a3b8")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	exportedStyle = cellStyle.Foreground(lipgloss.Color("#dc2626"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569"))
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List invoices built from the booking pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		invoices, err := app.invoices()
		if err != nil {
			return err
		}
		if customerFilter != "" {
			if err := app.requireCustomer(customerFilter); err != nil {
				return err
			}
			invoices = invoicing.ForCustomer(invoices, customerFilter)
		}
		invoices = invoicing.Filter(invoices, searchTerm)

		out := cmd.OutOrStdout()
		if len(invoices) == 0 {
			fmt.Fprintln(out, "No invoices found.")
			return nil
		}
		fmt.Fprintln(out, invoiceTable(invoices, app.session.IsExported))
		fmt.Fprintf(out, "%d invoice(s)\n", len(invoices))
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <bookingRef>",
	Short: "Render one invoice to HTML or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := app.theme(previewTheme)
		if err != nil {
			return err
		}

		invoices, err := app.invoices()
		if err != nil {
			return err
		}
		inv, ok := invoicing.Find(invoices, args[0])
		if !ok {
			return fmt.Errorf("no invoice for booking %q", args[0])
		}

		path, err := app.writeDocument(cmd.Context(), &inv, theme, previewOut)
		if err != nil {
			return err
		}

		app.session.MarkExported(inv.ID)
		if err := app.save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", inv.SerialNumber, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(previewCmd)

	invoicesCmd.Flags().StringVarP(&searchTerm, "search", "s", "", "Filter by booking, customer or serial")
	invoicesCmd.Flags().StringVarP(&customerFilter, "customer", "c", "", "Only list this customer's invoices")

	previewCmd.Flags().StringVarP(&previewTheme, "theme", "t", "", "Document theme (default render.theme)")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Output file; .pdf is captured, anything else is HTML")
}

// invoices builds the invoice list. Stable serial numbering assigns
// serials as a side effect, so the state is saved afterwards.
func (a *application) invoices() ([]types.Invoice, error) {
	invoices := a.session.Invoices()
	if a.cfg.SerialMode() == invoicing.SerialStable {
		if err := a.save(); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func invoiceTable(invoices []types.Invoice, exported func(id string) bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("SERIAL", "BOOKING", "CUSTOMER", "ITEMS", "TOTAL", "DATE", "DUE")

	for _, inv := range invoices {
		t.Row(
			inv.SerialNumber,
			inv.BookingRef,
			inv.CustomerName,
			fmt.Sprintf("%d", len(inv.LineItems)),
			render.FormatAmount(inv.TotalRate)+" "+types.Currency,
			inv.IssueDate,
			inv.DueDate,
		)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(invoices) && exported(invoices[row].ID) {
			return exportedStyle
		}
		return cellStyle
	})

	return t.String()
}
