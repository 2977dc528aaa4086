// =============================================================================
// Genset Invoicer - Document Renderer
// =============================================================================
//
// The renderer is a pure function of (document, theme, company profile). It
// never looks at policies or the row pool; every number it prints has
// already been decided by the aggregators.
//
// OUTPUT:
//   - HTML: A self-contained A4 page (styles inline, images as data URLs)
//     that the chromedp backend prints and the preview command writes out.
//   - Title: "<serial>_<customer>", used as page title and file name.
//   - View: The presentation model, for backends that lay out on their own.
//
// =============================================================================

package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

//go:embed templates/document.html.tmpl
var documentTemplate string

// Output is a rendered document.
type Output struct {
	HTML  string
	Title string
	View  *View
}

// Renderer renders documents to HTML.
type Renderer struct {
	tmpl *template.Template
}

// New parses the document template.
func New() (*Renderer, error) {
	tmpl, err := template.New("document").Funcs(funcMap()).Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render renders doc with the given theme and company profile.
//
// PARAMETERS:
//   - doc: A finished invoice or statement.
//   - theme: The visual theme. Unknown themes render as the default.
//   - profile: The company branding block.
//
// RETURNS:
//   - The rendered output.
//   - An error if an image reference cannot be loaded or the template fails.
func (r *Renderer) Render(doc types.Document, theme Theme, profile types.CompanyProfile) (*Output, error) {
	if doc == nil {
		return nil, fmt.Errorf("render: document is nil")
	}

	view, err := BuildView(doc, theme, profile)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Serial(), err)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render %s: failed to execute template: %w", doc.Serial(), err)
	}

	return &Output{
		HTML:  buf.String(),
		Title: view.Title,
		View:  view,
	}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
		"upper":   strings.ToUpper,
		"css":     func(s string) template.CSS { return template.CSS(s) },
		"px":      func(v float64) string { return fmt.Sprintf("%.1fpx", v) },
		"num":     func(v float64) string { return fmt.Sprintf("%g", v) },
	}
}
