// =============================================================================
// Genset Invoicer - Import and Clear Commands
// =============================================================================
//
// COMMAND USAGE:
//   invoicer import <files...>   Replace the booking pool with the files
//   invoicer import --sample     Replace the booking pool with sample data
//   invoicer clear               Empty the booking pool
//
// Importing always replaces the pool; it never appends. Customers seen for
// the first time get a default policy. Clearing keeps every policy.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/ingest"
	"github.com/nilefleet/genset-invoicer/internal/sample"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// useSample loads the built-in sample sheet instead of files.
var useSample bool

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Replace the booking pool with CSV or XLSX booking sheets",
	Long: `Import reads one or more booking sheets and replaces the booking pool
with their lines, in the order the files are given.

Each sheet has a header line followed by nine positional columns:
  Customer, BookingNo, UnitNumber, PortGo, PortGi, Trucker, Shipper, Rate, Date

Lines are never rejected. Missing fields are left empty, a rate that is not
a number is read as 0 and an empty date becomes today. Run 'invoicer
validate' to see where that happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every booking from the pool (customer policies are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.session.Clear()
		if err := app.save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All bookings cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)

	importCmd.Flags().BoolVar(
		&useSample,
		"sample",
		false,
		"Load the built-in sample bookings",
	)
}

func runImport(cmd *cobra.Command, args []string) error {
	if useSample == (len(args) > 0) {
		return fmt.Errorf("give either booking files or --sample")
	}

	opts := csvparser.Options{TrimFields: app.cfg.Import.TrimFields}

	var rows []types.Row
	source := "sample data"
	if useSample {
		rows = sample.Rows(opts)
	} else {
		start := time.Now()
		var err error
		rows, err = ingest.LoadFiles(cmd.Context(), args, opts, app.cfg.Import.MaxConcurrency, app.logger)
		if err != nil {
			return err
		}
		source = fmt.Sprintf("%d file(s) in %s", len(args), time.Since(start).Round(time.Millisecond))
	}

	created := app.session.Import(rows)
	if err := app.save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d booking line(s) from %s.\n", len(rows), source)
	for _, p := range created {
		fmt.Fprintf(out, "  + %s (serials from %s%d, due in %d days)\n",
			p.CustomerName, p.SerialPrefix, p.StartingSerial, p.DueDateDays)
	}
	return nil
}
