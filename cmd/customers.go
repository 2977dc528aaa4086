// =============================================================================
// Genset Invoicer - Customers Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer customers list
//   invoicer customers set <name> [--prefix p] [--start n] [--due-days n]
//
// A policy is replaced as a whole. Flags left out keep the customer's
// current values, the way the edit form starts from them.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

var (
	policyPrefix  string
	policyStart   int
	policyDueDays int
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List and edit customer numbering and payment terms",
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customer policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		policies := app.session.Policies()
		out := cmd.OutOrStdout()
		if len(policies) == 0 {
			fmt.Fprintln(out, "No customers yet. Import bookings first.")
			return nil
		}
		fmt.Fprintln(out, policyTable(policies))
		return nil
	},
}

var customersSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Change a customer's serial prefix, starting serial or due days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := app.requireCustomer(name); err != nil {
			return err
		}

		p, _ := app.session.Policy(name)
		flags := cmd.Flags()
		if flags.Changed("prefix") {
			p.SerialPrefix = policyPrefix
		}
		if flags.Changed("start") {
			p.StartingSerial = policyStart
		}
		if flags.Changed("due-days") {
			if policyDueDays < 0 {
				return fmt.Errorf("--due-days must not be negative")
			}
			p.DueDateDays = policyDueDays
		}

		app.session.UpdatePolicy(name, p)
		if err := app.save(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), policyTable([]types.Policy{p}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(customersCmd)
	customersCmd.AddCommand(customersListCmd)
	customersCmd.AddCommand(customersSetCmd)

	customersSetCmd.Flags().StringVar(&policyPrefix, "prefix", "", "Serial prefix, e.g. INV-2026-")
	customersSetCmd.Flags().IntVar(&policyStart, "start", 0, "Numeric serial of the customer's first invoice")
	customersSetCmd.Flags().IntVar(&policyDueDays, "due-days", 0, "Payment window in days (0 means the default)")
}

func policyTable(policies []types.Policy) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("CUSTOMER", "PREFIX", "STARTING SERIAL", "DUE DAYS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, p := range policies {
		t.Row(p.CustomerName, p.SerialPrefix, strconv.Itoa(p.StartingSerial), strconv.Itoa(p.DueDateDays))
	}
	return t.String()
}
