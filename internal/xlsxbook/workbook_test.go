package xlsxbook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

func writeBookingSheet(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadBookings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	writeBookingSheet(t, path, [][]interface{}{
		{"Customer", "BookingNo", "UnitNumber", "PortGo", "PortGi", "Trucker", "Shipper", "Rate", "Date"},
		{"Acme", "B1", "U1", "Alexandria", "Cairo", "T1", "S1", "1500", "2026-01-01"},
		{"", "", "", "", "", "", "", "", ""},
		{" Beta ", "B2", "U2", "Damietta", "Giza", "T2", "S2", "abc"},
	})

	now := func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	rows, err := ReadBookings(path, csvparser.Options{TrimFields: true, Now: now})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Acme", rows[0].Customer)
	assert.Equal(t, 1500.0, rows[0].Rate)
	assert.Equal(t, "Alexandria to Cairo", rows[0].RouteKey())

	assert.Equal(t, "Beta", rows[1].Customer)
	assert.Equal(t, 0.0, rows[1].Rate)
	assert.Equal(t, "2026-02-01", rows[1].OperationDate)
}

func TestReadBookings_MissingFile(t *testing.T) {
	_, err := ReadBookings(filepath.Join(t.TempDir(), "nope.xlsx"), csvparser.Options{})
	assert.Error(t, err)
}

func TestWriteRegister(t *testing.T) {
	invoices := []types.Invoice{
		{
			ID: "B1", BookingRef: "B1", CustomerName: "Acme",
			IssueDate: "2026-01-01", DueDate: "2026-01-16", SerialNumber: "INV-2026-100",
			LineItems: []types.Row{
				{Customer: "Acme", BookingRef: "B1", UnitNumber: "U1", Rate: 100, OperationDate: "2026-01-01"},
				{Customer: "Acme", BookingRef: "B1", UnitNumber: "U2", Rate: 50, OperationDate: "2026-01-02"},
			},
			TotalRate: 150,
		},
		{
			ID: "B2", BookingRef: "B2", CustomerName: "Beta",
			IssueDate: "2026-01-03", DueDate: "2026-01-18", SerialNumber: "INV-2026-101",
			LineItems: []types.Row{{Customer: "Beta", BookingRef: "B2", Rate: 70, OperationDate: "2026-01-03"}},
			TotalRate: 70,
		},
	}

	path := filepath.Join(t.TempDir(), "register.xlsx")
	require.NoError(t, WriteRegister(path, invoices))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	register, err := f.GetRows(RegisterSheet)
	require.NoError(t, err)
	require.Len(t, register, 3)
	assert.Equal(t, "Serial", register[0][0])
	assert.Equal(t, []string{"INV-2026-100", "B1", "Acme", "2026-01-01", "2026-01-16", "2", "150"}, register[1])

	lines, err := f.GetRows(LineItemsSheet)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, "INV-2026-101", lines[3][0])
	assert.Equal(t, "U2", lines[2][3])
}

func TestReadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	writeBookingSheet(t, path, [][]interface{}{
		{"Customer", "BookingNo"},
		{"Acme", "B1", "U1"},
		{"", ""},
		{"Beta", "B2"},
	})

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, []string{"Acme", "B1", "U1"}, records[0].Fields)
	assert.Equal(t, 4, records[1].Line)
}

func TestReadBookings_FormattedCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formatted.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"Customer", "BookingNo", "UnitNumber", "PortGo", "PortGi", "Trucker", "Shipper", "Rate", "Date"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"Acme", "B1", "U1", "Alexandria", "Cairo", "T1", "S1"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))

	require.NoError(t, f.SetCellValue("Sheet1", "H2", 1500))
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "H2", "H2", thousands))

	require.NoError(t, f.SetCellValue("Sheet1", "I2", time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)))
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 15})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "I2", "I2", dateStyle))

	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadBookings(path, csvparser.Options{TrimFields: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1500.0, rows[0].Rate)
	assert.Equal(t, "2026-01-16", rows[0].OperationDate)
}

func TestDateCell(t *testing.T) {
	assert.Equal(t, "2026-01-16", dateCell("46038"))
	assert.Equal(t, "2026-01-01", dateCell("2026-01-01"))
	assert.Equal(t, "", dateCell(""))
	assert.Equal(t, "soon", dateCell("soon"))
}
