package render

import (
	"fmt"
	"strings"
)

// Theme identifies one of the fixed document designs.
type Theme string

const (
	ThemeMinimal     Theme = "minimal"
	ThemeCorporate   Theme = "corporate"
	ThemeElegant     Theme = "elegant"
	ThemeModernSerif Theme = "modern-serif"
	ThemeLedgerPro   Theme = "ledger-pro"
	ThemeBold        Theme = "bold"
	ThemeDark        Theme = "dark"
	ThemeGrid        Theme = "grid"
	ThemeClassic     Theme = "classic"
	ThemeSoft        Theme = "soft"
	ThemeIndustrial  Theme = "industrial"
	ThemeCompact     Theme = "compact"
)

// DefaultTheme is used when nothing else is configured.
const DefaultTheme = ThemeMinimal

// Layout variants shared by several themes.
const (
	layoutStandard = "standard"
	layoutLedger   = "ledger"
	layoutSerif    = "serif"
	layoutBold     = "bold"
)

// Style is everything a theme changes about a document.
type Style struct {
	Theme       Theme
	DisplayName string

	// Layout picks the header, bill-to and total block arrangement.
	Layout string

	FontFamily string
	Ink        string
	Muted      string
	Accent     string
	RuleWidth  string
	CellPad    string
	Uppercase  bool

	// Stamp draws the "ORIGINAL" seal in the corner.
	Stamp bool
}

// styles maps every theme to its strategy. It is the only place a theme
// token is interpreted.
var styles = map[Theme]Style{
	ThemeMinimal: {
		DisplayName: "Minimal", Layout: layoutStandard,
		FontFamily: sansFonts, Ink: "#0f172a", Muted: "#94a3b8", Accent: "#2563eb",
		RuleWidth: "1px", CellPad: "12px 12px",
	},
	ThemeCorporate: {
		DisplayName: "Corporate", Layout: layoutStandard,
		FontFamily: sansFonts, Ink: "#0f172a", Muted: "#64748b", Accent: "#1d4ed8",
		RuleWidth: "2px", CellPad: "10px 12px",
	},
	ThemeElegant: {
		DisplayName: "Elegant", Layout: layoutStandard,
		FontFamily: serifFonts, Ink: "#1e293b", Muted: "#94a3b8", Accent: "#b45309",
		RuleWidth: "1px", CellPad: "12px 12px",
	},
	ThemeModernSerif: {
		DisplayName: "Modern Serif", Layout: layoutSerif,
		FontFamily: serifFonts, Ink: "#0f172a", Muted: "#64748b", Accent: "#0f172a",
		RuleWidth: "2px", CellPad: "10px 12px",
	},
	ThemeLedgerPro: {
		DisplayName: "Ledger Pro", Layout: layoutLedger,
		FontFamily: sansFonts, Ink: "#0f172a", Muted: "#94a3b8", Accent: "#0f172a",
		RuleWidth: "2px", CellPad: "8px 12px", Stamp: true,
	},
	ThemeBold: {
		DisplayName: "Bold", Layout: layoutBold,
		FontFamily: sansFonts, Ink: "#0f172a", Muted: "#64748b", Accent: "#2563eb",
		RuleWidth: "2px", CellPad: "16px 12px", Stamp: true,
	},
	ThemeDark: {
		DisplayName: "Dark", Layout: layoutStandard,
		FontFamily: sansFonts, Ink: "#020617", Muted: "#475569", Accent: "#7c3aed",
		RuleWidth: "1px", CellPad: "12px 12px",
	},
	ThemeGrid: {
		DisplayName: "Grid", Layout: layoutStandard,
		FontFamily: monoFonts, Ink: "#0f172a", Muted: "#64748b", Accent: "#0891b2",
		RuleWidth: "1px", CellPad: "8px 10px",
	},
	ThemeClassic: {
		DisplayName: "Classic", Layout: layoutStandard,
		FontFamily: serifFonts, Ink: "#1c1917", Muted: "#78716c", Accent: "#991b1b",
		RuleWidth: "1px", CellPad: "10px 12px", Stamp: true,
	},
	ThemeSoft: {
		DisplayName: "Soft", Layout: layoutStandard,
		FontFamily: sansFonts, Ink: "#334155", Muted: "#94a3b8", Accent: "#db2777",
		RuleWidth: "1px", CellPad: "12px 14px",
	},
	ThemeIndustrial: {
		DisplayName: "Industrial", Layout: layoutStandard,
		FontFamily: monoFonts, Ink: "#0f172a", Muted: "#57534e", Accent: "#ea580c",
		RuleWidth: "2px", CellPad: "10px 10px", Uppercase: true, Stamp: true,
	},
	ThemeCompact: {
		DisplayName: "Compact", Layout: layoutStandard,
		FontFamily: sansFonts, Ink: "#0f172a", Muted: "#94a3b8", Accent: "#059669",
		RuleWidth: "1px", CellPad: "4px 8px",
	},
}

const (
	sansFonts  = `"Helvetica Neue", Arial, sans-serif`
	serifFonts = `Georgia, "Times New Roman", serif`
	monoFonts  = `"Courier New", Courier, monospace`
)

// themeOrder is the order themes are listed in.
var themeOrder = []Theme{
	ThemeMinimal, ThemeCorporate, ThemeElegant, ThemeModernSerif,
	ThemeLedgerPro, ThemeBold, ThemeDark, ThemeGrid,
	ThemeClassic, ThemeSoft, ThemeIndustrial, ThemeCompact,
}

// Themes returns every theme in display order.
func Themes() []Theme {
	out := make([]Theme, len(themeOrder))
	copy(out, themeOrder)
	return out
}

// ParseTheme converts a token such as "ledger-pro" into a Theme. The empty
// string is the default theme.
func ParseTheme(s string) (Theme, error) {
	token := Theme(strings.ToLower(strings.TrimSpace(s)))
	if token == "" {
		return DefaultTheme, nil
	}
	if _, ok := styles[token]; !ok {
		return "", fmt.Errorf("unknown theme %q", s)
	}
	return token, nil
}

// StyleOf returns the style of t. Unknown themes fall back to the default.
func StyleOf(t Theme) Style {
	s, ok := styles[t]
	if !ok {
		t = DefaultTheme
		s = styles[t]
	}
	s.Theme = t
	return s
}

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}

// Face reports the generic family of the theme font: "sans", "serif" or
// "mono". Backends without CSS font stacks use it to pick a core font.
func (s Style) Face() string {
	switch s.FontFamily {
	case serifFonts:
		return "serif"
	case monoFonts:
		return "mono"
	default:
		return "sans"
	}
}
