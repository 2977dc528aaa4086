// =============================================================================
// Genset Invoicer - XML Register Writer
// =============================================================================
//
// This module writes the invoice register as XML for accounting systems
// that import XML instead of spreadsheets.
//
// XML STRUCTURE:
//
//   <register currency="EGP">                 <!-- Root element -->
//     <invoice n="1">                         <!-- Invoice with index -->
//       <Serial>INV-2026-100</Serial>         <!-- Invoice-level fields -->
//       <Booking>BK-1001</Booking>
//       <Customer>Acme Ltd</Customer>
//       <IssueDate>2026-03-01</IssueDate>
//       <DueDate>2026-03-16</DueDate>
//       <Total>2500.00</Total>
//       <lineItem n="1">                      <!-- Line item with global index -->
//         <Unit>GEN-01</Unit>
//         <Rate>1000.00</Rate>
//       </lineItem>
//       <lineItem n="2">...</lineItem>
//     </invoice>
//     <invoice n="2">
//       <lineItem n="3">...</lineItem>        <!-- Global numbering continues -->
//     </invoice>
//   </register>
//
// Empty line item fields are left out. Invoice-level fields are always
// written.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Element names of the register document.
const (
	RootElement     = "register"
	InvoiceElement  = "invoice"
	LineItemElement = "lineItem"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// LineItemNumberingGlobal determines if line item numbering is global.
	// If true: line items are numbered 1, 2, 3, 4... across all invoices.
	// If false: line items restart at 1 for each invoice.
	LineItemNumberingGlobal bool

	// IndexAttribute is the attribute name for invoice and line item indexes.
	// Default: "n"
	IndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                  "  ",
		IncludeXMLDeclaration:   true,
		LineItemNumberingGlobal: true,
		IndexAttribute:          "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates the register document for invoices.
//
// PARAMETERS:
//   - invoices: The invoices to list, in the order they should appear.
//
// RETURNS:
//   - The XML document as a byte slice.
func Generate(invoices []types.Invoice) []byte {
	return GenerateWithOptions(invoices, DefaultGenerateOptions())
}

// GenerateWithOptions creates the register document with custom options.
func GenerateWithOptions(invoices []types.Invoice, options GenerateOptions) []byte {
	if options.IndexAttribute == "" {
		options.IndexAttribute = "n"
	}

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	root := Element{
		Name:  RootElement,
		Attrs: []xml.Attr{attr("currency", types.Currency)},
	}

	lineIndex := 1
	for i, inv := range invoices {
		if !options.LineItemNumberingGlobal {
			lineIndex = 1
		}
		root.Children = append(root.Children, buildInvoiceElement(inv, i+1, &lineIndex, options))
	}

	writeElement(&buffer, root, options.Indent, 0)
	return buffer.Bytes()
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// Element is a generic XML element. An element has either a text value or
// children, never both.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Value    string
	Children []Element
}

// buildInvoiceElement constructs an invoice element. lineIndex is advanced
// past the invoice's line items.
func buildInvoiceElement(inv types.Invoice, index int, lineIndex *int, options GenerateOptions) Element {
	element := Element{
		Name:  InvoiceElement,
		Attrs: []xml.Attr{attr(options.IndexAttribute, strconv.Itoa(index))},
		Children: []Element{
			text("Serial", inv.SerialNumber),
			text("Booking", inv.BookingRef),
			text("Customer", inv.CustomerName),
			text("IssueDate", inv.IssueDate),
			text("DueDate", inv.DueDate),
			text("Total", formatAmount(inv.TotalRate)),
		},
	}

	for _, item := range inv.LineItems {
		element.Children = append(element.Children, buildLineItemElement(item, *lineIndex, options))
		*lineIndex++
	}
	return element
}

func buildLineItemElement(item types.Row, index int, options GenerateOptions) Element {
	element := Element{
		Name:  LineItemElement,
		Attrs: []xml.Attr{attr(options.IndexAttribute, strconv.Itoa(index))},
	}

	fields := []Element{
		text("Unit", item.UnitNumber),
		text("PortGo", item.PortOfOrigin),
		text("PortGi", item.PortOfDestination),
		text("Trucker", item.Trucker),
		text("Shipper", item.Shipper),
		text("Date", item.OperationDate),
	}
	for _, f := range fields {
		if f.Value != "" {
			element.Children = append(element.Children, f)
		}
	}
	element.Children = append(element.Children, text("Rate", formatAmount(item.Rate)))
	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func text(name, value string) Element {
	return Element{Name: name, Value: value}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// writeElement writes an element and its children with indentation.
func writeElement(buffer *bytes.Buffer, element Element, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)
	for _, a := range element.Attrs {
		fmt.Fprintf(buffer, " %s=\"", a.Name.Local)
		_ = xml.EscapeText(buffer, []byte(a.Value))
		buffer.WriteString("\"")
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")
	if len(element.Children) == 0 {
		_ = xml.EscapeText(buffer, []byte(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}
