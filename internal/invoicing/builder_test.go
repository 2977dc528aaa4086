package invoicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/policy"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

func row(customer, ref string, rate float64, date string) types.Row {
	return types.Row{
		Customer:          customer,
		BookingRef:        ref,
		PortOfOrigin:      "Alexandria",
		PortOfDestination: "Cairo",
		Rate:              rate,
		OperationDate:     date,
	}
}

func acmeStore() *policy.Store {
	s := policy.NewStore()
	s.Update("Acme", types.Policy{SerialPrefix: "INV-2026-", StartingSerial: 100, DueDateDays: 15})
	return s
}

func serials(invoices []types.Invoice) []string {
	out := make([]string, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.SerialNumber
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, acmeStore(), Options{}))
}

func TestBuild_GroupsInFirstSeenOrder(t *testing.T) {
	rows := []types.Row{
		row("Acme", "B2", 10, "2026-01-02"),
		row("Acme", "B1", 20, "2026-01-01"),
		row("Acme", "B2", 30, "2026-01-05"),
		row("Acme", "B3", 40, "2026-01-03"),
		row("Acme", "B1", 50, "2026-01-04"),
	}

	invoices := Build(rows, acmeStore(), Options{})
	require.Len(t, invoices, 3)

	assert.Equal(t, "B2", invoices[0].BookingRef)
	assert.Equal(t, "B1", invoices[1].BookingRef)
	assert.Equal(t, "B3", invoices[2].BookingRef)

	require.Len(t, invoices[0].LineItems, 2)
	assert.Equal(t, 10.0, invoices[0].LineItems[0].Rate)
	assert.Equal(t, 30.0, invoices[0].LineItems[1].Rate)

	assert.Equal(t, "2026-01-02", invoices[0].IssueDate)
	assert.Equal(t, "B2", invoices[0].ID)
}

func TestBuild_OrdinalSerials(t *testing.T) {
	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Acme", "B2", 1, "2026-01-01"),
		row("Acme", "B3", 1, "2026-01-01"),
	}

	invoices := Build(rows, acmeStore(), Options{})
	assert.Equal(t, []string{"INV-2026-100", "INV-2026-101", "INV-2026-102"}, serials(invoices))
}

func TestBuild_SerialsShiftWhenBookingPrepended(t *testing.T) {
	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Acme", "B2", 1, "2026-01-01"),
	}
	store := acmeStore()

	before := Build(rows, store, Options{})
	b1, ok := Find(before, "B1")
	require.True(t, ok)
	assert.Equal(t, "INV-2026-100", b1.SerialNumber)

	rows = append([]types.Row{row("Acme", "B0", 1, "2026-01-01")}, rows...)
	after := Build(rows, store, Options{})
	b1, ok = Find(after, "B1")
	require.True(t, ok)
	assert.Equal(t, "INV-2026-101", b1.SerialNumber)
}

func TestBuild_OrdinalIsGlobalAcrossCustomers(t *testing.T) {
	store := policy.NewStore()
	store.Reconcile([]string{"Acme", "Beta"})

	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Beta", "B2", 1, "2026-01-01"),
		row("Acme", "B3", 1, "2026-01-01"),
	}

	invoices := Build(rows, store, Options{})
	// Beta starts at 101 and sits at ordinal 1; Acme's second booking is ordinal 2.
	assert.Equal(t, []string{"INV-2026-100", "INV-2026-102", "INV-2026-102"}, serials(invoices))
}

func TestBuild_StableSerials(t *testing.T) {
	store := acmeStore()
	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Acme", "B2", 1, "2026-01-01"),
	}

	first := Build(rows, store, Options{SerialMode: SerialStable})
	assert.Equal(t, []string{"INV-2026-100", "INV-2026-101"}, serials(first))

	rows = append([]types.Row{row("Acme", "B0", 1, "2026-01-01")}, rows...)
	second := Build(rows, store, Options{SerialMode: SerialStable})
	assert.Equal(t, []string{"INV-2026-102", "INV-2026-100", "INV-2026-101"}, serials(second))
}

func TestBuild_FallbackWithoutPolicy(t *testing.T) {
	rows := []types.Row{row("Nobody", "B9", 5, "2026-01-01")}

	invoices := Build(rows, acmeStore(), Options{})
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-B9", invoices[0].SerialNumber)
	assert.Equal(t, "2026-01-16", invoices[0].DueDate)

	invoices = Build(rows, nil, Options{SerialMode: SerialStable})
	assert.Equal(t, "INV-B9", invoices[0].SerialNumber)
}

func TestBuild_DueDates(t *testing.T) {
	store := policy.NewStore()
	store.Update("Acme", types.Policy{SerialPrefix: "A-", StartingSerial: 1, DueDateDays: 15})
	store.Update("Net30", types.Policy{SerialPrefix: "N-", StartingSerial: 1, DueDateDays: 30})
	store.Update("Zero", types.Policy{SerialPrefix: "Z-", StartingSerial: 1, DueDateDays: 0})

	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Net30", "B2", 1, "2026-02-15"),
		row("Zero", "B3", 1, "2026-12-25"),
		row("Acme", "B4", 1, "not-a-date"),
	}

	invoices := Build(rows, store, Options{})
	require.Len(t, invoices, 4)
	assert.Equal(t, "2026-01-16", invoices[0].DueDate)
	assert.Equal(t, "2026-03-17", invoices[1].DueDate)
	assert.Equal(t, "2027-01-09", invoices[2].DueDate)
	assert.Equal(t, "", invoices[3].DueDate)
	assert.Equal(t, "not-a-date", invoices[3].IssueDate)
}

func TestBuild_TotalsAreFloatSums(t *testing.T) {
	rows := []types.Row{
		row("Acme", "B1", 0.1, "2026-01-01"),
		row("Acme", "B1", 0.2, "2026-01-01"),
		row("Acme", "B1", 0.3, "2026-01-01"),
	}

	invoices := Build(rows, acmeStore(), Options{})
	require.Len(t, invoices, 1)
	assert.Equal(t, 0.1+0.2+0.3, invoices[0].TotalRate)
}

func TestBuild_Deterministic(t *testing.T) {
	rows := []types.Row{
		row("Acme", "B1", 1, "2026-01-01"),
		row("Beta", "B2", 2, "2026-01-02"),
		row("Acme", "B1", 3, "2026-01-03"),
	}
	store := policy.NewStore()
	store.Reconcile(CustomerNames(rows))

	assert.Equal(t, Build(rows, store, Options{}), Build(rows, store, Options{}))
}

func TestParseSerialMode(t *testing.T) {
	mode, err := ParseSerialMode("")
	require.NoError(t, err)
	assert.Equal(t, SerialPositional, mode)

	mode, err = ParseSerialMode(" Stable ")
	require.NoError(t, err)
	assert.Equal(t, SerialStable, mode)

	_, err = ParseSerialMode("random")
	assert.Error(t, err)
}
