// =============================================================================
// Genset Invoicer - Booking Sheet Parser
// =============================================================================
//
// This module converts the raw booking export into Row records. The format is
// deliberately simple and positional:
//
//   <header line, always discarded>
//   Customer,BookingNo,UnitNumber,PortGo,PortGi,Trucker,Shipper,Rate,Date
//
// PARSING RULES:
//   - The first line is dropped without looking at it. A file without a
//     header silently loses its first booking.
//   - Blank lines (after trimming) are skipped.
//   - Every other line is split strictly on ',' with no quoting or escaping.
//     A comma inside a value shifts every following column.
//   - Columns past the ninth are ignored, missing trailing columns are empty.
//   - Rate uses leading-numeric-prefix semantics; anything unparsable is 0.
//   - An empty date becomes today's date (UTC) at parse time.
//
// Parsing never fails on content. Only I/O errors are returned.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

// =============================================================================
// COLUMN LAYOUT
// =============================================================================

// Positional column indexes of the booking sheet.
const (
	ColCustomer = iota
	ColBookingRef
	ColUnitNumber
	ColPortOfOrigin
	ColPortOfDestination
	ColTrucker
	ColShipper
	ColRate
	ColDate

	// ColumnCount is the number of columns that carry data.
	ColumnCount
)

// Header is the canonical header line written by exporters and the sample.
const Header = "Customer,BookingNo,UnitNumber,PortGo,PortGi,Trucker,Shipper,Rate,Date"

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls the small differences between the parsing entry points.
type Options struct {
	// TrimFields trims surrounding whitespace from every field. File imports
	// trim; the raw text path does not.
	TrimFields bool

	// Now supplies the clock used for the "today" date default.
	// Default: time.Now
	Now func() time.Time
}

func (o Options) today() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().UTC().Format(types.DateLayout)
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse converts raw booking text into rows without trimming fields.
//
// PARAMETERS:
//   - raw: The complete file content, header line included.
//
// RETURNS:
//   - The rows in input order. Never fails.
func Parse(raw string) []types.Row {
	rows, _ := ParseReader(strings.NewReader(raw), Options{})
	return rows
}

// ParseReader parses booking rows from r.
//
// PARAMETERS:
//   - r: The source of the booking text.
//   - opts: Parsing options.
//
// RETURNS:
//   - The rows in input order. When reading fails, the rows read before
//     the failure are returned together with the error.
//   - An error only if reading from r fails.
func ParseReader(r io.Reader, opts Options) ([]types.Row, error) {
	reader := NewReader(r, opts)

	var rows []types.Row
	for reader.Next() {
		rows = append(rows, reader.Row())
	}

	return rows, reader.Err()
}

// ParseFile reads and parses a booking CSV file from disk.
func ParseFile(filePath string, opts Options) ([]types.Row, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := ParseReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	return rows, nil
}

// RowFromFields builds a Row from positional fields, applying every default.
// It is shared with the XLSX reader so both formats degrade the same way.
func RowFromFields(fields []string, opts Options) types.Row {
	get := func(index int) string {
		if index >= len(fields) {
			return ""
		}
		if opts.TrimFields {
			return strings.TrimSpace(fields[index])
		}
		return fields[index]
	}

	date := get(ColDate)
	if date == "" {
		date = opts.today()
	}

	return types.Row{
		Customer:          get(ColCustomer),
		BookingRef:        get(ColBookingRef),
		UnitNumber:        get(ColUnitNumber),
		PortOfOrigin:      get(ColPortOfOrigin),
		PortOfDestination: get(ColPortOfDestination),
		Trucker:           get(ColTrucker),
		Shipper:           get(ColShipper),
		Rate:              ParseRate(get(ColRate)),
		OperationDate:     date,
	}
}

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader parses rows one at a time.
//
// USAGE:
//   reader := NewReader(file, opts)
//   for reader.Next() {
//       row := reader.Row()
//       // ...
//   }
//   if err := reader.Err(); err != nil {
//       return err
//   }
type Reader struct {
	source     *bufio.Reader
	done       bool
	opts       Options
	current    types.Row
	fields     []string
	lineNumber int
	err        error
}

// NewReader creates a streaming reader over r.
func NewReader(r io.Reader, opts Options) *Reader {
	return &Reader{
		source: bufio.NewReader(r),
		opts:   opts,
	}
}

// Next advances to the next data row. It returns false at end of input or
// on a read error.
func (p *Reader) Next() bool {
	for p.err == nil && !p.done {
		// Lines have no length limit. A final line without '\n' still counts.
		text, err := p.source.ReadString('\n')
		if err == io.EOF {
			p.done = true
			if text == "" {
				return false
			}
		} else if err != nil {
			p.err = fmt.Errorf("error reading line %d: %w", p.lineNumber+1, err)
			return false
		}
		p.lineNumber++

		// The first line is the header.
		if p.lineNumber == 1 {
			continue
		}

		line := strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		p.fields = SplitLine(line)
		p.current = RowFromFields(p.fields, p.opts)
		return true
	}

	return false
}

// Row returns the current row.
func (p *Reader) Row() types.Row {
	return p.current
}

// Fields returns the raw fields of the current row, before defaults.
func (p *Reader) Fields() []string {
	return p.fields
}

// LineNumber returns the 1-indexed line number of the current row.
func (p *Reader) LineNumber() int {
	return p.lineNumber
}

// Err returns the read error that stopped iteration, if any.
func (p *Reader) Err() error {
	return p.err
}

// Record is one data line before defaults are applied.
type Record struct {
	// Line is the 1-indexed line (or sheet row) number.
	Line   int
	Fields []string
}

// ReadRecords returns the raw fields of every data line of r.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := NewReader(r, Options{})

	var records []Record
	for reader.Next() {
		records = append(records, Record{Line: reader.LineNumber(), Fields: reader.Fields()})
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// =============================================================================
// FIELD HELPERS
// =============================================================================

// SplitLine splits one line into positional fields. No quoting is honored.
func SplitLine(line string) []string {
	return strings.Split(line, ",")
}

// ParseRate parses the longest numeric prefix of s, after leading
// whitespace, and returns 0 when there is none.
//
// Examples:
//   "1500"      -> 1500
//   " 12.5EGP"  -> 12.5
//   "1e3x"      -> 1000
//   "EGP 100"   -> 0
//   ""          -> 0
func ParseRate(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	prefix := NumericPrefix(s)
	if prefix == "" {
		return 0
	}

	value, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(value) || value == 0 {
		// Also folds "-0" into 0.
		return 0
	}

	return value
}

// NumericPrefix returns the longest prefix of s that reads as a decimal
// float literal, or "" if s does not start with one.
func NumericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		fraction := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			fraction++
		}
		if digits > 0 || fraction > 0 {
			i = j
			digits += fraction
		}
	}
	if digits == 0 {
		return ""
	}

	// Only consume an exponent that has at least one digit.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}

	return s[:i]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
