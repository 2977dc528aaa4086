package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

var now = time.Date(2026, 4, 1, 10, 0, 0, 123_000_000, time.UTC)

func acmeRows() []types.Row {
	return []types.Row{
		{Customer: "Acme", BookingRef: "B1", Shipper: "S1", Rate: 100, OperationDate: "2026-01-01"},
		{Customer: "Acme", BookingRef: "B2", Shipper: "S2", Rate: 200, OperationDate: "2026-02-01"},
		{Customer: "Acme", BookingRef: "B3", Shipper: "S1", Rate: 300, OperationDate: "2026-03-01"},
	}
}

func TestBuild_DateWindow(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme", From: "2026-01-15", To: "2026-02-15"}, now)
	require.NoError(t, err)
	require.Len(t, st.LineItems, 1)

	assert.Equal(t, "2026-02-01", st.LineItems[0].OperationDate)
	assert.Equal(t, 200.0, st.TotalRate)
	assert.Equal(t, "2026-01-15 to 2026-02-15", st.Period)
}

func TestBuild_InclusiveBounds(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme", From: "2026-01-01", To: "2026-03-01"}, now)
	require.NoError(t, err)
	assert.Len(t, st.LineItems, 3)
}

func TestBuild_OpenEnded(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme", From: "2026-02-01"}, now)
	require.NoError(t, err)
	assert.Len(t, st.LineItems, 2)
	assert.Equal(t, "2026-02-01 to End", st.Period)

	st, err = Build(acmeRows(), Request{Customer: "Acme"}, now)
	require.NoError(t, err)
	assert.Len(t, st.LineItems, 3)
	assert.Equal(t, "Start to End", st.Period)
}

func TestBuild_ShipperFilter(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme", Shipper: "S1"}, now)
	require.NoError(t, err)
	require.Len(t, st.LineItems, 2)
	assert.Equal(t, 400.0, st.TotalRate)
	assert.Equal(t, "Start to End | Shipper: S1", st.Period)
}

func TestBuild_NoMatches(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme", From: "2027-01-01"}, now)
	assert.ErrorIs(t, err, ErrNoMatches)
	assert.Nil(t, st)

	_, err = Build(acmeRows(), Request{Customer: "Nobody"}, now)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestBuild_RequestErrors(t *testing.T) {
	_, err := Build(acmeRows(), Request{}, now)
	assert.ErrorIs(t, err, ErrCustomerRequired)

	_, err = Build(acmeRows(), Request{Customer: "Acme", To: "01/02/2026"}, now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBuild_UnparsableRowDates(t *testing.T) {
	rows := append(acmeRows(), types.Row{Customer: "Acme", BookingRef: "B4", Rate: 5, OperationDate: "soon"})

	st, err := Build(rows, Request{Customer: "Acme"}, now)
	require.NoError(t, err)
	assert.Len(t, st.LineItems, 4)

	st, err = Build(rows, Request{Customer: "Acme", From: "2026-01-01"}, now)
	require.NoError(t, err)
	assert.Len(t, st.LineItems, 3)
}

func TestBuild_BookingOrder(t *testing.T) {
	rows := []types.Row{
		{Customer: "Acme", BookingRef: "B1", Rate: 1, OperationDate: "2026-01-03"},
		{Customer: "Beta", BookingRef: "B9", Rate: 9, OperationDate: "2026-01-01"},
		{Customer: "Acme", BookingRef: "B2", Rate: 2, OperationDate: "2026-01-01"},
		{Customer: "Acme", BookingRef: "B1", Rate: 3, OperationDate: "2026-01-02"},
	}

	st, err := Build(rows, Request{Customer: "Acme"}, now)
	require.NoError(t, err)

	var rates []float64
	for _, item := range st.LineItems {
		rates = append(rates, item.Rate)
	}
	assert.Equal(t, []float64{1, 3, 2}, rates)
	assert.Equal(t, 6.0, st.TotalRate)
}

func TestBuild_Identity(t *testing.T) {
	st, err := Build(acmeRows(), Request{Customer: "Acme"}, now)
	require.NoError(t, err)

	assert.Equal(t, "statement-Acme-1775037600123", st.ID)
	assert.Equal(t, "SOA-600123", st.SerialNumber)
	assert.Equal(t, "2026-04-01", st.IssueDate)
	assert.Equal(t, types.StatementDueDate, st.Due())
	assert.True(t, st.IsStatement())
}

func TestSerial(t *testing.T) {
	assert.Equal(t, "SOA-000042", Serial(1700000000042))
	assert.Equal(t, "SOA-42", Serial(42))
}
