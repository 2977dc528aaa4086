package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nilefleet/genset-invoicer/internal/render"
)

// PDFCapturer lays documents out directly with gofpdf.
type PDFCapturer struct{}

// NewPDFCapturer creates a gofpdf-based capturer.
func NewPDFCapturer() *PDFCapturer {
	return &PDFCapturer{}
}

// Name implements Capturer.
func (c *PDFCapturer) Name() string {
	return BackendPDF
}

// Close implements Capturer.
func (c *PDFCapturer) Close() error {
	return nil
}

// column widths in mm; they add up to the 190mm printable width.
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 22, "L"},
	{"Unit / Booking", 36, "L"},
	{"Route", 50, "L"},
	{"Shipper", 28, "L"},
	{"Trucker", 28, "L"},
	{"Rate", 26, "R"},
}

const (
	pageMargin = 10.0
	lineHeight = 6.0
)

// Capture builds an A4 PDF from out.View.
func (c *PDFCapturer) Capture(ctx context.Context, out *render.Output) ([]byte, error) {
	if out == nil || out.View == nil {
		return nil, NewError(ErrCodeInvalidInput, "document view is missing", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewError(ErrCodeTimeout, "PDF capture was cancelled", err)
	}

	v := out.View
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(v.Title, true)
	pdf.SetCreator("invoicer", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	font := coreFont(v.Style.Face())
	text := func(s string) string {
		if v.Style.Uppercase {
			s = strings.ToUpper(s)
		}
		return tr(s)
	}

	if err := drawImage(pdf, "logo", v.Company.LogoURL, pageMargin, pageMargin, 0, 24); err != nil {
		return nil, err
	}
	if v.Company.LogoURL != "" {
		pdf.SetY(pageMargin + 26)
	}

	// Header: company block left, heading and serial right.
	top := pdf.GetY()
	setColor(pdf.SetTextColor, v.Style.Ink)
	pdf.SetFont(font, "B", 20)
	pdf.CellFormat(110, 9, text(v.Company.Name), "", 2, "L", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Muted)
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(110, 5, text(v.Company.SubName), "", 2, "L", false, 0, "")

	pdf.SetXY(120, top)
	setColor(pdf.SetTextColor, v.Style.Accent)
	pdf.SetFont(font, "B", 20)
	pdf.CellFormat(80, 9, text(v.Heading), "", 2, "R", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Ink)
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(80, 7, text(v.Serial), "", 2, "R", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Muted)
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(80, 5, text("Dated: "+v.Date), "", 2, "R", false, 0, "")
	pdf.Ln(8)

	// Bill to.
	pdf.SetX(pageMargin)
	pdf.SetFont(font, "B", 7)
	pdf.CellFormat(110, 4, text("Bill To"), "", 0, "L", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Accent)
	pdf.CellFormat(80, 4, text(v.RefLabel), "", 1, "R", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Ink)
	pdf.SetFont(font, "B", 14)
	pdf.CellFormat(110, 8, text(v.Customer), "", 0, "L", false, 0, "")
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(80, 8, text(v.RefValue), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Line table.
	setColor(pdf.SetDrawColor, v.Style.Ink)
	setColor(pdf.SetFillColor, "#f1f5f9")
	pdf.SetFont(font, "B", 7)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 7, text(col.title), "TB", ln, col.align, true, 0, "")
	}

	pdf.SetFont(font, "", 8)
	if v.IsStatement {
		for _, g := range v.Groups {
			setColor(pdf.SetTextColor, v.Style.Accent)
			pdf.SetFont(font, "B", 7)
			pdf.CellFormat(190, 5, text("Route: "+g.Route), "B", 1, "L", false, 0, "")
			setColor(pdf.SetTextColor, v.Style.Ink)
			pdf.SetFont(font, "", 8)
			for _, line := range g.Lines {
				drawLine(pdf, text, line)
			}
			pdf.SetFont(font, "B", 7)
			pdf.CellFormat(164, 5, text("Subtotal:"), "", 0, "R", false, 0, "")
			pdf.CellFormat(26, 5, text(g.SubtotalText), "B", 1, "R", false, 0, "")
			pdf.SetFont(font, "", 8)
		}
	} else {
		for _, line := range v.Lines {
			drawLine(pdf, text, line)
		}
	}
	pdf.Ln(6)

	// Notes and total.
	setColor(pdf.SetTextColor, v.Style.Muted)
	pdf.SetFont(font, "I", 8)
	pdf.CellFormat(190, 5, text("Please settle by "+v.DueDate+". Use Invoice No as reference."), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	setColor(pdf.SetFillColor, v.Style.Ink)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetX(pageMargin + 190 - 70)
	pdf.SetFont(font, "B", 7)
	pdf.CellFormat(70, 6, text("Grand Total "+v.Currency), "", 2, "R", true, 0, "")
	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(70, 11, text(v.TotalText), "", 1, "R", true, 0, "")
	pdf.Ln(6)

	// Signatory.
	setColor(pdf.SetTextColor, v.Style.Muted)
	pdf.SetFont(font, "B", 7)
	pdf.CellFormat(190, 4, text("Authorized By"), "", 1, "L", false, 0, "")
	sigY := pdf.GetY()
	scale := v.Company.SignatureScale
	if scale <= 0 {
		scale = 1
	}
	if err := drawImage(pdf, "signature", v.Company.SignatureURL,
		pageMargin+pxToMM(v.Company.SignatureXOffset), sigY+pxToMM(v.Company.SignatureYOffset), 0, 16*scale); err != nil {
		return nil, err
	}
	if v.Company.SignatureURL != "" {
		pdf.SetY(sigY + 16*scale + 2)
	}
	setColor(pdf.SetTextColor, v.Style.Ink)
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(190, 5, text(v.Company.AuthName), "", 1, "L", false, 0, "")
	setColor(pdf.SetTextColor, v.Style.Muted)
	pdf.SetFont(font, "", 7)
	pdf.CellFormat(190, 4, text(v.Company.AuthJobTitle), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont(font, "B", 7)
	pdf.CellFormat(190, 4, text(v.Company.Name+" "+v.Company.SubName), "T", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 6)
	pdf.CellFormat(190, 4, text(v.Company.Address+" | "+v.Company.Email+" | "+v.Company.Phone), "", 1, "C", false, 0, "")

	if v.Style.Stamp {
		setColor(pdf.SetTextColor, "#fca5a5")
		pdf.SetFont(font, "B", 6)
		pdf.SetXY(150, 40)
		pdf.CellFormat(30, 4, text("ORIGINAL"), "", 2, "C", false, 0, "")
		pdf.CellFormat(30, 4, text(strings.ToUpper(v.Company.Name)), "", 0, "C", false, 0, "")
	}

	if err := ctx.Err(); err != nil {
		return nil, NewError(ErrCodeTimeout, "PDF capture was cancelled", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewError(ErrCodeFailed, "gofpdf output failed", err)
	}
	if buf.Len() == 0 {
		return nil, NewError(ErrCodeEmptyDocument, "generated PDF is empty", nil)
	}

	return buf.Bytes(), nil
}

func drawLine(pdf *gofpdf.Fpdf, text func(string) string, line render.Line) {
	cells := []string{
		line.Date,
		line.Unit + " / " + line.Booking,
		line.Origin + " -> " + line.Destination,
		line.Shipper,
		line.Trucker,
		line.RateText + " EGP",
	}
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, lineHeight, text(cells[i]), "B", ln, col.align, false, 0, "")
	}
}

// drawImage places a data URL image. Remote URLs are skipped; the PDF
// backend never touches the network.
func drawImage(pdf *gofpdf.Fpdf, name, url string, x, y, w, h float64) error {
	if !strings.HasPrefix(url, "data:") {
		return nil
	}

	imageType, data, err := decodeDataURL(url)
	if err != nil {
		return NewError(ErrCodeInvalidImage, "cannot decode "+name, err)
	}
	if imageType == "" {
		return nil
	}

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return NewError(ErrCodeInvalidImage, "cannot load "+name, pdf.Error())
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

// decodeDataURL returns the gofpdf image type and payload of a base64 data
// URL. The type is empty for formats gofpdf cannot embed.
func decodeDataURL(url string) (string, []byte, error) {
	comma := strings.Index(url, ",")
	if comma < 0 {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := url[len("data:"):comma], url[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}

	switch strings.TrimSuffix(meta, ";base64") {
	case "image/png":
		return "PNG", data, nil
	case "image/jpeg", "image/jpg":
		return "JPG", data, nil
	case "image/gif":
		return "GIF", data, nil
	default:
		return "", data, nil
	}
}

func coreFont(face string) string {
	switch face {
	case "serif":
		return "Times"
	case "mono":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// setColor applies a "#rrggbb" color through one of the gofpdf setters.
// Malformed colors fall back to black.
func setColor(set func(r, g, b int), hex string) {
	r, g, b := parseHex(hex)
	set(r, g, b)
}

func parseHex(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// pxToMM converts CSS pixels (96 per inch) to millimeters.
func pxToMM(px float64) float64 {
	return px * 25.4 / 96
}
