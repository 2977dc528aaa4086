// =============================================================================
// Genset Invoicer - Shared Types
// =============================================================================
//
// This package contains the data model shared across the aggregation core and
// its collaborators. Keeping it in one leaf package avoids import cycles
// between:
//   - csvparser / xlsxbook   (produce Row values)
//   - policy                 (owns Policy values)
//   - invoicing / statement  (produce Invoice and Statement aggregates)
//   - render / capture       (consume Document values)
//   - export / session       (move aggregates around)
//
// =============================================================================

package types

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for every date in the model.
const DateLayout = "2006-01-02"

// Currency is the only currency the system bills in.
const Currency = "EGP"

// =============================================================================
// ROW RECORD
// =============================================================================

// Row is one shipment/operation line as read from the booking sheet.
// Rows are created once by the parser and never mutated afterwards.
type Row struct {
	Customer          string  `yaml:"customer"`
	BookingRef        string  `yaml:"booking_ref"`
	UnitNumber        string  `yaml:"unit_number"`
	PortOfOrigin      string  `yaml:"port_of_origin"`
	PortOfDestination string  `yaml:"port_of_destination"`
	Trucker           string  `yaml:"trucker"`
	Shipper           string  `yaml:"shipper"`
	Rate              float64 `yaml:"rate"`
	OperationDate     string  `yaml:"operation_date"`
}

// RouteKey returns the "<origin> to <destination>" label used to group
// statement lines by route.
func (r Row) RouteKey() string {
	return fmt.Sprintf("%s to %s", r.PortOfOrigin, r.PortOfDestination)
}

// Date parses OperationDate as a calendar date.
func (r Row) Date() (time.Time, bool) {
	return ParseDate(r.OperationDate)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SumRates adds the rates of rows in order using plain float addition.
func SumRates(rows []Row) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Rate
	}
	return total
}

// =============================================================================
// CUSTOMER POLICY
// =============================================================================

// Policy holds the numbering and payment terms for one customer.
type Policy struct {
	// CustomerName is the key of the policy.
	CustomerName string `yaml:"customer_name"`

	// SerialPrefix is prepended to the numeric part of every serial.
	SerialPrefix string `yaml:"serial_prefix"`

	// StartingSerial is the numeric serial of ordinal zero.
	StartingSerial int `yaml:"starting_serial"`

	// DueDateDays is the payment window counted from the issue date.
	DueDateDays int `yaml:"due_date_days"`
}

// =============================================================================
// AGGREGATES
// =============================================================================

// Invoice is the aggregate of all rows sharing one booking reference.
type Invoice struct {
	ID           string
	BookingRef   string
	CustomerName string
	IssueDate    string
	DueDate      string
	SerialNumber string
	LineItems    []Row
	TotalRate    float64
}

// Statement is a cross-booking aggregate for one customer over a window.
type Statement struct {
	ID           string
	CustomerName string
	IssueDate    string
	Period       string
	SerialNumber string
	LineItems    []Row
	TotalRate    float64
}

// Statement documents carry these literals where an invoice carries a
// booking reference and a due date.
const (
	StatementBookingRef = "MULTIPLE"
	StatementDueDate    = "On Receipt"
)

// Document is what the renderer consumes: a finished invoice or statement.
type Document interface {
	DocumentID() string
	Serial() string
	Customer() string
	Issued() string
	Due() string
	Items() []Row
	Total() float64
	IsStatement() bool

	// Reference is the booking reference for invoices and the period
	// description for statements.
	Reference() string
}

func (i *Invoice) DocumentID() string { return i.ID }
func (i *Invoice) Serial() string     { return i.SerialNumber }
func (i *Invoice) Customer() string   { return i.CustomerName }
func (i *Invoice) Issued() string     { return i.IssueDate }
func (i *Invoice) Due() string        { return i.DueDate }
func (i *Invoice) Items() []Row       { return i.LineItems }
func (i *Invoice) Total() float64     { return i.TotalRate }
func (i *Invoice) IsStatement() bool  { return false }
func (i *Invoice) Reference() string  { return i.BookingRef }

func (s *Statement) DocumentID() string { return s.ID }
func (s *Statement) Serial() string     { return s.SerialNumber }
func (s *Statement) Customer() string   { return s.CustomerName }
func (s *Statement) Issued() string     { return s.IssueDate }
func (s *Statement) Due() string        { return StatementDueDate }
func (s *Statement) Items() []Row       { return s.LineItems }
func (s *Statement) Total() float64     { return s.TotalRate }
func (s *Statement) IsStatement() bool  { return true }
func (s *Statement) Reference() string  { return s.Period }

// =============================================================================
// COMPANY PROFILE
// =============================================================================

// CompanyProfile is the branding block printed on every document.
type CompanyProfile struct {
	Name         string `yaml:"name"`
	SubName      string `yaml:"sub_name"`
	Address      string `yaml:"address"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	AuthName     string `yaml:"auth_name"`
	AuthJobTitle string `yaml:"auth_job_title"`
	AuthPhone    string `yaml:"auth_phone"`
	AuthEmail    string `yaml:"auth_email"`

	// Logo, Signature and Watermark are image references: a file path or
	// a data URL. Empty means not set.
	Logo      string `yaml:"logo,omitempty"`
	Signature string `yaml:"signature,omitempty"`
	Watermark string `yaml:"watermark,omitempty"`

	// Signature placement on the document, in CSS pixels.
	SignatureXOffset float64 `yaml:"signature_x_offset"`
	SignatureYOffset float64 `yaml:"signature_y_offset"`
	SignatureScale   float64 `yaml:"signature_scale"`
}

// DefaultCompanyProfile returns the profile used before the user edits it.
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		Name:           "NILE FLEET",
		SubName:        "GENSET",
		Address:        "123 Cairo Logistics Hub, Nile Delta, Egypt",
		Email:          "billing@nilefleet.com",
		Phone:          "+20 123 456 7890",
		AuthName:       "Operations Manager",
		AuthJobTitle:   "Head of Logistics",
		AuthPhone:      "+20 100 000 0000",
		AuthEmail:      "ops@nilefleet.com",
		SignatureScale: 1,
	}
}

// Compile-time interface checks.
var (
	_ Document = (*Invoice)(nil)
	_ Document = (*Statement)(nil)
)
