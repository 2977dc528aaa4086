// =============================================================================
// Genset Invoicer - Invoice Aggregator
// =============================================================================
//
// This module turns the flat row pool into invoices. The pipeline is:
//
//   1. GROUP: Rows are grouped by booking reference. Groups keep the order in
//      which each reference was first encountered, and rows keep their
//      original order inside a group.
//   2. NUMBER: Each group gets a serial from its customer's policy.
//        positional: prefix + (startingSerial + ordinal), where ordinal is the
//                    group's index among ALL groups of this pass, whatever
//                    the customer. Serials move when groups move.
//        stable:     prefix + the number the policy store assigned to the
//                    booking the first time it was seen.
//      A customer without a policy gets "INV-<bookingRef>".
//   3. DATE: The issue date is the date of the group's first row. The due
//      date is the issue date plus the policy's due days (15 without a
//      policy, or when the policy says 0).
//   4. TOTAL: Plain float sum of the line rates, in row order.
//
// Build is deterministic and never fails. An empty pool gives no invoices.
//
// =============================================================================

package invoicing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

// =============================================================================
// SERIAL MODES
// =============================================================================

// SerialMode selects how serial numbers are derived.
type SerialMode string

const (
	// SerialPositional recomputes serials from group position on every build.
	SerialPositional SerialMode = "positional"

	// SerialStable assigns a serial once per booking and keeps it.
	SerialStable SerialMode = "stable"
)

// ParseSerialMode converts a configuration value into a SerialMode.
// The empty string is the positional default.
func ParseSerialMode(s string) (SerialMode, error) {
	switch SerialMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SerialPositional:
		return SerialPositional, nil
	case SerialStable:
		return SerialStable, nil
	default:
		return "", fmt.Errorf("unknown serial mode %q (expected positional or stable)", s)
	}
}

// DefaultDueDays is the payment window used when no policy gives one.
const DefaultDueDays = 15

// Options tunes Build.
type Options struct {
	// SerialMode selects positional (default) or stable numbering.
	SerialMode SerialMode

	// DefaultDueDays replaces a missing or zero policy due window.
	// Default: 15
	DefaultDueDays int
}

// PolicySource is what the aggregator needs from the customer policy store.
// AssignStable is only called in stable mode and may record state.
type PolicySource interface {
	Get(customer string) (types.Policy, bool)
	AssignStable(customer, bookingRef string) (int, bool)
}

// =============================================================================
// BUILD
// =============================================================================

// group is one booking reference and its rows.
type group struct {
	key  string
	rows []types.Row
}

// Build groups rows into invoices and applies customer policy.
//
// PARAMETERS:
//   - rows: The row pool, in stored order.
//   - policies: The customer policy store. May be nil, in which case every
//     invoice uses the fallback serial and due window.
//   - opts: Numbering options.
//
// RETURNS:
//   - The invoices in first-encountered booking order.
func Build(rows []types.Row, policies PolicySource, opts Options) []types.Invoice {
	if opts.DefaultDueDays <= 0 {
		opts.DefaultDueDays = DefaultDueDays
	}

	groups := groupByBooking(rows)
	invoices := make([]types.Invoice, len(groups))

	for ordinal, g := range groups {
		first := g.rows[0]

		var (
			p         types.Policy
			hasPolicy bool
		)
		if policies != nil {
			p, hasPolicy = policies.Get(first.Customer)
		}

		dueDays := opts.DefaultDueDays
		if hasPolicy && p.DueDateDays != 0 {
			dueDays = p.DueDateDays
		}

		invoices[ordinal] = types.Invoice{
			ID:           g.key,
			BookingRef:   g.key,
			CustomerName: first.Customer,
			IssueDate:    first.OperationDate,
			DueDate:      DueDate(first.OperationDate, dueDays),
			SerialNumber: serialFor(g.key, first.Customer, ordinal, p, hasPolicy, policies, opts.SerialMode),
			LineItems:    g.rows,
			TotalRate:    types.SumRates(g.rows),
		}
	}

	return invoices
}

// groupByBooking groups rows by booking reference in first-seen order.
func groupByBooking(rows []types.Row) []group {
	index := make(map[string]int)
	var groups []group

	for _, row := range rows {
		i, exists := index[row.BookingRef]
		if !exists {
			i = len(groups)
			index[row.BookingRef] = i
			groups = append(groups, group{key: row.BookingRef})
		}
		groups[i].rows = append(groups[i].rows, row)
	}

	return groups
}

func serialFor(bookingRef, customer string, ordinal int, p types.Policy, hasPolicy bool, policies PolicySource, mode SerialMode) string {
	if !hasPolicy {
		return FallbackSerial(bookingRef)
	}

	if mode == SerialStable {
		if n, ok := policies.AssignStable(customer, bookingRef); ok {
			return p.SerialPrefix + strconv.Itoa(n)
		}
		return FallbackSerial(bookingRef)
	}

	return p.SerialPrefix + strconv.Itoa(p.StartingSerial+ordinal)
}

// FallbackSerial is the serial of an invoice whose customer has no policy.
func FallbackSerial(bookingRef string) string {
	return "INV-" + bookingRef
}

// DueDate adds days to an ISO issue date. It returns "" when the issue date
// does not parse.
func DueDate(issueDate string, days int) string {
	t, ok := types.ParseDate(issueDate)
	if !ok {
		return ""
	}
	return t.AddDate(0, 0, days).Format(types.DateLayout)
}
