package render

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/nilefleet/genset-invoicer/internal/types"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// View is the presentation model of one document. Both capture backends
// work from it: the HTML template directly, the PDF backend field by field.
type View struct {
	Title    string
	Heading  string
	Serial   string
	Date     string
	DueDate  string
	Customer string

	// RefLabel/RefValue is "Booking Ref" and the booking for invoices,
	// "Statement Period" and the period for statements.
	RefLabel string
	RefValue string

	IsStatement bool
	Lines       []Line

	// Groups splits statement lines by route with a subtotal each. It is
	// empty for invoices.
	Groups []RouteGroup

	Total     float64
	TotalText string
	Currency  string

	Company CompanyView
	Style   Style
}

// Line is one printed operation.
type Line struct {
	Date        string
	Unit        string
	Booking     string
	Origin      string
	Destination string
	Shipper     string
	Trucker     string
	Rate        float64
	RateText    string
}

// RouteGroup is a run of statement lines sharing a route.
type RouteGroup struct {
	Route        string
	Lines        []Line
	Subtotal     float64
	SubtotalText string
}

// CompanyView is the company profile with images resolved to URLs the
// browser can load without file access.
type CompanyView struct {
	types.CompanyProfile

	LogoURL      string
	SignatureURL string
	WatermarkURL string
}

const placeholder = "---"

var printer = message.NewPrinter(language.English)

// FormatAmount formats an amount with thousands grouping and at most three
// fraction digits, e.g. 1234.5 -> "1,234.5".
func FormatAmount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// PrintTitle is the document title and base file name:
// "<serial>_<customer>" with every non-alphanumeric customer character
// replaced by an underscore.
func PrintTitle(serial, customer string) string {
	return serial + "_" + utils.SanitizeName(customer)
}

// BuildView resolves a document into its presentation model.
func BuildView(doc types.Document, theme Theme, profile types.CompanyProfile) (*View, error) {
	company, err := resolveCompany(profile)
	if err != nil {
		return nil, err
	}

	v := &View{
		Title:       PrintTitle(doc.Serial(), doc.Customer()),
		Heading:     "INVOICE",
		Serial:      doc.Serial(),
		Date:        doc.Issued(),
		DueDate:     doc.Due(),
		Customer:    doc.Customer(),
		RefLabel:    "Booking Ref",
		RefValue:    doc.Reference(),
		IsStatement: doc.IsStatement(),
		Total:       doc.Total(),
		TotalText:   FormatAmount(doc.Total()),
		Currency:    types.Currency,
		Company:     company,
		Style:       StyleOf(theme),
	}
	if v.IsStatement {
		v.Heading = "STATEMENT OF ACCOUNT"
		v.RefLabel = "Statement Period"
	}

	for _, item := range doc.Items() {
		v.Lines = append(v.Lines, lineOf(item))
	}
	if v.IsStatement {
		v.Groups = GroupByRoute(doc.Items())
	}

	return v, nil
}

func lineOf(r types.Row) Line {
	return Line{
		Date:        r.OperationDate,
		Unit:        r.UnitNumber,
		Booking:     r.BookingRef,
		Origin:      r.PortOfOrigin,
		Destination: r.PortOfDestination,
		Shipper:     orPlaceholder(r.Shipper),
		Trucker:     orPlaceholder(r.Trucker),
		Rate:        r.Rate,
		RateText:    FormatAmount(r.Rate),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// GroupByRoute groups rows by "<origin> to <destination>" in first-seen
// order and subtotals each group.
func GroupByRoute(rows []types.Row) []RouteGroup {
	index := make(map[string]int)
	var groups []RouteGroup

	for _, r := range rows {
		key := r.RouteKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, RouteGroup{Route: key})
		}
		groups[i].Lines = append(groups[i].Lines, lineOf(r))
		groups[i].Subtotal += r.Rate
	}

	for i := range groups {
		groups[i].SubtotalText = FormatAmount(groups[i].Subtotal)
	}
	return groups
}

func resolveCompany(p types.CompanyProfile) (CompanyView, error) {
	c := CompanyView{CompanyProfile: p}
	if c.SignatureScale == 0 {
		c.SignatureScale = 1
	}

	var err error
	if c.LogoURL, err = ImageURL(p.Logo); err != nil {
		return c, fmt.Errorf("logo: %w", err)
	}
	if c.SignatureURL, err = ImageURL(p.Signature); err != nil {
		return c, fmt.Errorf("signature: %w", err)
	}
	if c.WatermarkURL, err = ImageURL(p.Watermark); err != nil {
		return c, fmt.Errorf("watermark: %w", err)
	}
	return c, nil
}

// ImageURL turns an image reference into something an HTML page can load
// on its own. Data and http(s) URLs pass through; a file path is inlined
// as a base64 data URL.
func ImageURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "data:"),
		strings.HasPrefix(ref, "http://"),
		strings.HasPrefix(ref, "https://"):
		return ref, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
