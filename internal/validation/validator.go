// =============================================================================
// Genset Invoicer - Booking Sheet Diagnostics
// =============================================================================
//
// The parser never rejects a row: a short line gets empty fields, a bad
// rate becomes 0, a missing date becomes today. This module reports where
// that happened so the user can fix the sheet before invoicing.
//
// VALIDATION STRATEGY:
//   1. Field-level: each raw record is checked on its own
//   2. Sheet-level: checks across records (bookings split over customers)
//
// ERROR HANDLING:
//   - Issues are collected, never returned as errors
//   - Each issue names the line, the field and the raw value
//   - Only I/O problems make Validate* return an error
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/ingest"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Severity levels.
const (
	// SeverityWarning means the row will be invoiced differently from what
	// the sheet probably intended.
	SeverityWarning = "warning"

	// SeverityInfo means a default was applied as designed.
	SeverityInfo = "info"
)

var columnNames = []string{
	"customer", "bookingRef", "unitNumber", "portOfOrigin",
	"portOfDestination", "trucker", "shipper", "rate", "date",
}

// =============================================================================
// ISSUES
// =============================================================================

// Issue is one diagnostic.
type Issue struct {
	Severity string
	// Line is the 1-indexed line (or sheet row) number.
	Line    int
	Field   string
	Value   string
	Message string
}

// String formats the issue for terminal output.
func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("line %d: %s: %s", i.Line, i.Severity, i.Message)
	}
	return fmt.Sprintf("line %d: %s: %s: %s", i.Line, i.Severity, i.Field, i.Message)
}

// Result contains the diagnostics of one file.
type Result struct {
	File   string
	Rows   int
	Issues []Issue
}

// Count returns the number of issues with the given severity.
func (r *Result) Count(severity string) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Clean reports whether no warnings were found.
func (r *Result) Clean() bool {
	return r.Count(SeverityWarning) == 0
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// ValidateFile checks a CSV or XLSX booking file.
func ValidateFile(path string) (*Result, error) {
	records, err := ingest.LoadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	result := ValidateRecords(records)
	result.File = path
	return result, nil
}

// ValidateRecords checks raw records.
func ValidateRecords(records []csvparser.Record) *Result {
	result := &Result{Rows: len(records)}

	// First customer seen per booking, for the split-booking check.
	owners := make(map[string]string)

	for _, rec := range records {
		result.Issues = append(result.Issues, ValidateRecord(rec)...)

		row := csvparser.RowFromFields(rec.Fields, csvparser.Options{TrimFields: true})
		if row.BookingRef == "" {
			continue
		}
		owner, seen := owners[row.BookingRef]
		if !seen {
			owners[row.BookingRef] = row.Customer
			continue
		}
		if owner != row.Customer {
			result.Issues = append(result.Issues, Issue{
				Severity: SeverityWarning,
				Line:     rec.Line,
				Field:    "customer",
				Value:    row.Customer,
				Message: fmt.Sprintf("booking %s already belongs to %q; this line will be invoiced to %q",
					row.BookingRef, owner, owner),
			})
		}
	}

	return result
}

// ValidateRecord checks a single record.
func ValidateRecord(rec csvparser.Record) []Issue {
	var issues []Issue
	add := func(severity, field, value, message string) {
		issues = append(issues, Issue{Severity: severity, Line: rec.Line, Field: field, Value: value, Message: message})
	}

	switch n := len(rec.Fields); {
	case n < csvparser.ColumnCount:
		add(SeverityWarning, "", "", fmt.Sprintf("expected %d columns, got %d; missing %s left empty",
			csvparser.ColumnCount, n, strings.Join(columnNames[n:], ", ")))
	case n > csvparser.ColumnCount:
		add(SeverityWarning, "", "", fmt.Sprintf("expected %d columns, got %d; an unquoted comma shifts every later column",
			csvparser.ColumnCount, n))
	}

	field := func(i int) string {
		if i >= len(rec.Fields) {
			return ""
		}
		return strings.TrimSpace(rec.Fields[i])
	}

	if field(csvparser.ColCustomer) == "" {
		add(SeverityWarning, "customer", "", "customer is empty")
	}
	if field(csvparser.ColBookingRef) == "" {
		add(SeverityWarning, "bookingRef", "", "booking reference is empty; the line becomes an invoice with an empty reference")
	}

	rate := field(csvparser.ColRate)
	switch prefix := csvparser.NumericPrefix(rate); {
	case rate == "":
		add(SeverityWarning, "rate", rate, "rate is empty and is read as 0")
	case prefix == "":
		add(SeverityWarning, "rate", rate, "rate is not a number and is read as 0")
	case prefix != rate:
		add(SeverityWarning, "rate", rate, fmt.Sprintf("only %q is read as the rate", prefix))
	default:
		if csvparser.ParseRate(rate) < 0 {
			add(SeverityWarning, "rate", rate, "rate is negative")
		}
	}

	date := field(csvparser.ColDate)
	if date == "" {
		add(SeverityInfo, "date", "", "date is empty; the import date is used")
	} else if _, ok := types.ParseDate(date); !ok {
		add(SeverityWarning, "date", date, "date is not YYYY-MM-DD; the invoice will have no due date")
	}

	return issues
}
