// Package sample carries the booking sheet loaded by "import --sample".
package sample

import (
	_ "embed"
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

//go:embed bookings.csv
var bookingsCSV string

// CSV returns the raw sample sheet, header included.
func CSV() string {
	return bookingsCSV
}

// Rows parses the sample sheet the way a file import would.
func Rows(opts csvparser.Options) []types.Row {
	opts.TrimFields = true
	rows, _ := csvparser.ParseReader(strings.NewReader(bookingsCSV), opts)
	return rows
}
