// =============================================================================
// Genset Invoicer - XLSX Booking Workbooks
// =============================================================================
//
// This module handles the spreadsheet side of the system:
//   - Reading booking sheets exported from Excel instead of CSV. The first
//     sheet is read with exactly the same positional contract as the CSV
//     parser: first row discarded, nine columns, defaults for bad cells.
//   - Writing an invoice register workbook that accounting can open
//     directly. It has one "Register" sheet (one row per invoice) and one
//     "Line Items" sheet (one row per booking line).
//
// =============================================================================

package xlsxbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Sheet names used by the register workbook.
const (
	RegisterSheet  = "Register"
	LineItemsSheet = "Line Items"
)

var registerHeader = []interface{}{
	"Serial", "Booking", "Customer", "Issue Date", "Due Date", "Lines", "Total (" + types.Currency + ")",
}

var lineItemHeader = []interface{}{
	"Serial", "Booking", "Customer", "Unit", "Port Go", "Port Gi", "Trucker", "Shipper", "Rate", "Date",
}

// =============================================================================
// READING
// =============================================================================

// ReadBookings reads booking rows from the first sheet of an XLSX workbook.
//
// PARAMETERS:
//   - path: The workbook path.
//   - opts: The same options the CSV parser takes.
//
// RETURNS:
//   - The rows in sheet order.
//   - An error if the workbook cannot be opened or has no sheets.
func ReadBookings(path string, opts csvparser.Options) ([]types.Row, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}

	rows := make([]types.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, csvparser.RowFromFields(rec.Fields, opts))
	}
	return rows, nil
}

// ReadRecords returns the raw cells of every non-empty data row of the
// first sheet, with 1-indexed sheet row numbers.
func ReadRecords(path string) ([]csvparser.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	// Raw values keep number formats such as "#,##0" out of the rate.
	cells, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var records []csvparser.Record
	for i, cellRow := range cells {
		// The first row is the header.
		if i == 0 || isRowEmpty(cellRow) {
			continue
		}
		if csvparser.ColDate < len(cellRow) {
			cellRow[csvparser.ColDate] = dateCell(cellRow[csvparser.ColDate])
		}
		records = append(records, csvparser.Record{Line: i + 1, Fields: cellRow})
	}

	return records, nil
}

// dateCell turns a raw date serial into YYYY-MM-DD. Text cells are
// returned unchanged.
func dateCell(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(types.DateLayout)
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITING
// =============================================================================

// WriteRegister writes an invoice register workbook to path.
//
// PARAMETERS:
//   - path: Destination .xlsx file.
//   - invoices: The invoices to list, in the order they should appear.
//
// RETURNS:
//   - An error if any cell cannot be written or the file cannot be saved.
func WriteRegister(path string, invoices []types.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LineItemsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, RegisterSheet, 1, registerHeader); err != nil {
		return err
	}
	if err := writeRow(f, LineItemsSheet, 1, lineItemHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(RegisterSheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetCellStyle(LineItemsSheet, "A1", "J1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	lineRow := 2
	for i, inv := range invoices {
		register := []interface{}{
			inv.SerialNumber,
			inv.BookingRef,
			inv.CustomerName,
			inv.IssueDate,
			inv.DueDate,
			len(inv.LineItems),
			inv.TotalRate,
		}
		if err := writeRow(f, RegisterSheet, i+2, register); err != nil {
			return err
		}

		for _, item := range inv.LineItems {
			line := []interface{}{
				inv.SerialNumber,
				item.BookingRef,
				item.Customer,
				item.UnitNumber,
				item.PortOfOrigin,
				item.PortOfDestination,
				item.Trucker,
				item.Shipper,
				item.Rate,
				item.OperationDate,
			}
			if err := writeRow(f, LineItemsSheet, lineRow, line); err != nil {
				return err
			}
			lineRow++
		}
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
