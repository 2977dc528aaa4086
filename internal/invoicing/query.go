package invoicing

import (
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Filter returns the invoices whose booking reference, customer name or
// serial contains term, ignoring case. An empty term matches everything.
func Filter(invoices []types.Invoice, term string) []types.Invoice {
	needle := strings.ToLower(term)
	if needle == "" {
		return invoices
	}

	var out []types.Invoice
	for _, inv := range invoices {
		if strings.Contains(strings.ToLower(inv.BookingRef), needle) ||
			strings.Contains(strings.ToLower(inv.CustomerName), needle) ||
			strings.Contains(strings.ToLower(inv.SerialNumber), needle) {
			out = append(out, inv)
		}
	}
	return out
}

// ForCustomer returns the invoices billed to customer, in order.
func ForCustomer(invoices []types.Invoice, customer string) []types.Invoice {
	var out []types.Invoice
	for _, inv := range invoices {
		if inv.CustomerName == customer {
			out = append(out, inv)
		}
	}
	return out
}

// Customers returns the distinct customer names in first-seen order.
func Customers(invoices []types.Invoice) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, inv := range invoices {
		if _, ok := seen[inv.CustomerName]; ok {
			continue
		}
		seen[inv.CustomerName] = struct{}{}
		names = append(names, inv.CustomerName)
	}
	return names
}

// Find returns the invoice for bookingRef.
func Find(invoices []types.Invoice, bookingRef string) (types.Invoice, bool) {
	for _, inv := range invoices {
		if inv.BookingRef == bookingRef {
			return inv, true
		}
	}
	return types.Invoice{}, false
}

// CustomerNames returns the distinct customer names of rows in first-seen
// order. It is what the policy store reconciles against after an import.
func CustomerNames(rows []types.Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		if _, ok := seen[row.Customer]; ok {
			continue
		}
		seen[row.Customer] = struct{}{}
		names = append(names, row.Customer)
	}
	return names
}
