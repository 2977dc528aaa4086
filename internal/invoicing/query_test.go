package invoicing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

func sampleInvoices() []types.Invoice {
	return []types.Invoice{
		{BookingRef: "BK-1001", CustomerName: "Acme Logistics", SerialNumber: "INV-2026-100"},
		{BookingRef: "BK-1002", CustomerName: "Delta Shipping", SerialNumber: "INV-2026-101"},
		{BookingRef: "BK-1003", CustomerName: "Acme Logistics", SerialNumber: "AC-7"},
	}
}

func TestFilter(t *testing.T) {
	invoices := sampleInvoices()

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"BK-1001", "BK-1002", "BK-1003"}},
		{"acme", []string{"BK-1001", "BK-1003"}},
		{"1002", []string{"BK-1002"}},
		{"inv-2026", []string{"BK-1001", "BK-1002"}},
		{"ac-7", []string{"BK-1003"}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			var got []string
			for _, inv := range Filter(invoices, tt.term) {
				got = append(got, inv.BookingRef)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForCustomerAndCustomers(t *testing.T) {
	invoices := sampleInvoices()

	acme := ForCustomer(invoices, "Acme Logistics")
	assert.Len(t, acme, 2)
	assert.Empty(t, ForCustomer(invoices, "acme logistics"))

	assert.Equal(t, []string{"Acme Logistics", "Delta Shipping"}, Customers(invoices))
}

func TestCustomerNames(t *testing.T) {
	rows := []types.Row{{Customer: "B"}, {Customer: "A"}, {Customer: "B"}, {Customer: ""}}
	assert.Equal(t, []string{"B", "A", ""}, CustomerNames(rows))
}
