package session

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/statement"
	"github.com/nilefleet/genset-invoicer/internal/store"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

func bookings() []types.Row {
	return []types.Row{
		{Customer: "Acme", BookingRef: "B1", Rate: 100, OperationDate: "2026-01-01", Shipper: "MSC"},
		{Customer: "Delta", BookingRef: "B2", Rate: 200, OperationDate: "2026-01-15"},
		{Customer: "Acme", BookingRef: "B3", Rate: 300, OperationDate: "2026-02-01", Shipper: "Maersk"},
	}
}

func TestImport_ReplacesPoolAndReconciles(t *testing.T) {
	s := New(invoicing.Options{}, nil)

	created := s.Import(bookings())
	require.Len(t, created, 2)
	assert.Equal(t, "Acme", created[0].CustomerName)
	assert.Equal(t, 100, created[0].StartingSerial)
	assert.Equal(t, 101, created[1].StartingSerial)

	created = s.Import([]types.Row{{Customer: "Nile Co", BookingRef: "B9"}, {Customer: "Acme", BookingRef: "B10"}})
	require.Len(t, created, 1)
	assert.Equal(t, 102, created[0].StartingSerial)

	assert.Len(t, s.Rows(), 2)
	assert.Len(t, s.Policies(), 3)
}

func TestClear_KeepsPolicies(t *testing.T) {
	s := New(invoicing.Options{}, nil)
	s.Import(bookings())

	s.Clear()

	assert.Empty(t, s.Rows())
	assert.Empty(t, s.Invoices())
	assert.Len(t, s.Policies(), 2)
}

func TestInvoices_UsePolicies(t *testing.T) {
	s := New(invoicing.Options{}, nil)
	s.Import(bookings())

	s.UpdatePolicy("Acme", types.Policy{SerialPrefix: "ACM-", StartingSerial: 1, DueDateDays: 30})

	invoices := s.Invoices()
	require.Len(t, invoices, 3)
	assert.Equal(t, "ACM-1", invoices[0].SerialNumber)
	assert.Equal(t, "2026-01-31", invoices[0].DueDate)
	assert.Equal(t, "INV-2026-102", invoices[1].SerialNumber)
	assert.Equal(t, "ACM-3", invoices[2].SerialNumber)

	p, ok := s.Policy("Acme")
	require.True(t, ok)
	assert.Equal(t, "Acme", p.CustomerName)
}

func TestInvoices_StableMode(t *testing.T) {
	s := New(invoicing.Options{SerialMode: invoicing.SerialStable}, nil)
	s.Import(bookings())
	first := s.Invoices()

	s.Import(append([]types.Row{{Customer: "Acme", BookingRef: "B0", OperationDate: "2026-01-01"}}, bookings()...))
	second := s.Invoices()

	require.Len(t, second, 4)
	assert.Equal(t, first[0].SerialNumber, second[1].SerialNumber, "B1 keeps its serial")
	assert.Equal(t, "INV-2026-102", second[0].SerialNumber, "new booking takes the next free serial")
}

func TestStatement(t *testing.T) {
	s := New(invoicing.Options{}, nil)
	s.Import(bookings())
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	st, err := s.Statement(statement.Request{Customer: "Acme", From: "2026-01-10"}, now)
	require.NoError(t, err)
	require.Len(t, st.LineItems, 1)
	assert.Equal(t, "B3", st.LineItems[0].BookingRef)

	_, err = s.Statement(statement.Request{Customer: "Acme", Shipper: "CMA"}, now)
	assert.ErrorIs(t, err, statement.ErrNoMatches)
}

func TestExportedMarking(t *testing.T) {
	s := New(invoicing.Options{}, nil)
	assert.False(t, s.IsExported("B1"))

	s.MarkExported("B1")
	assert.True(t, s.IsExported("B1"))
}

func TestUpdateCompany_Merges(t *testing.T) {
	s := New(invoicing.Options{}, nil)

	p := s.UpdateCompany(func(p *types.CompanyProfile) { p.Phone = "+20 2 555 0100" })

	assert.Equal(t, "+20 2 555 0100", p.Phone)
	assert.Equal(t, "NILE FLEET", p.Name)
	assert.Equal(t, p, s.Company())
}

func TestStateRoundTrip(t *testing.T) {
	s := New(invoicing.Options{}, nil)
	s.Import(bookings())
	s.MarkExported("B3")
	s.MarkExported("B1")
	s.UpdateCompany(func(p *types.CompanyProfile) { p.Name = "DELTA" })

	st := store.New(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, st.Save(s.State()))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B3"}, loaded.Exported)

	r := FromState(loaded, invoicing.Options{}, nil)
	assert.Equal(t, s.Rows(), r.Rows())
	assert.Equal(t, s.Policies(), r.Policies())
	assert.Equal(t, "DELTA", r.Company().Name)
	assert.True(t, r.IsExported("B1"))
	assert.Equal(t, s.Invoices(), r.Invoices())
}

func TestFromState_ReconcilesMissingPolicies(t *testing.T) {
	st := store.NewState()
	st.Rows = bookings()

	s := FromState(st, invoicing.Options{}, nil)
	assert.Len(t, s.Policies(), 2)
}

func TestConcurrentAccess(t *testing.T) {
	s := New(invoicing.Options{SerialMode: invoicing.SerialStable}, nil)
	s.Import(bookings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Invoices()
				s.MarkExported("B1")
				_ = s.State()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.Invoices(), 3)
}
