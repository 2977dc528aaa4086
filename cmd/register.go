// =============================================================================
// Genset Invoicer - Register Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer register [--out register.xlsx|register.xml] [--customer c] [--force]
//
// Writes the invoice register accounting imports. An .xml output gets the
// XML register; anything else gets a workbook with one sheet holding a row
// per invoice and one holding a row per booking line. An existing file is
// only replaced with --force.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/xlsxbook"
	"github.com/nilefleet/genset-invoicer/internal/xmlwriter"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

var (
	registerOut      string
	registerCustomer string
	registerForce    bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Write the invoice register as an XLSX workbook or XML",
	RunE: func(cmd *cobra.Command, args []string) error {
		invoices, err := app.invoices()
		if err != nil {
			return err
		}
		if registerCustomer != "" {
			if err := app.requireCustomer(registerCustomer); err != nil {
				return err
			}
			invoices = invoicing.ForCustomer(invoices, registerCustomer)
		}

		out := registerOut
		if out == "" {
			out = filepath.Join(app.cfg.OutputDir, "invoice_register.xlsx")
		}
		if utils.FileExists(out) && !registerForce {
			return fmt.Errorf("%s already exists (use --force to replace it)", out)
		}
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return err
		}
		if strings.EqualFold(filepath.Ext(out), ".xml") {
			if err := utils.WriteFileAtomic(out, xmlwriter.Generate(invoices), 0644); err != nil {
				return err
			}
		} else if err := xlsxbook.WriteRegister(out, invoices); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) written to %s\n", len(invoices), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerOut, "out", "o", "", "Output path; .xml writes XML (default <output_dir>/invoice_register.xlsx)")
	registerCmd.Flags().StringVarP(&registerCustomer, "customer", "c", "", "Only this customer's invoices")
	registerCmd.Flags().BoolVar(&registerForce, "force", false, "Replace an existing register file")
}
