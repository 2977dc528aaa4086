// =============================================================================
// Genset Invoicer - Main Entry Point
// =============================================================================
//
// USAGE:
//   invoicer import <files...>   - Replace the booking pool
//   invoicer invoices            - List invoices
//   invoicer export              - Export a customer's invoices as PDF
//   invoicer statement           - Build a statement of account
//   invoicer version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, aggregation, rendering, capture and state
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/nilefleet/genset-invoicer/cmd"
)

func main() {
	cmd.Execute()
}
