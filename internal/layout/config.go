package layout

import "github.com/dshills/keystorm/internal/font"

// ListIndentWidth is the width in layout units contributed by each
// indent level of a list item, independent of the marker's own width.
const ListIndentWidth float32 = 18.0

// Rules controls pagination widow/orphan behavior. The teacher's
// reference design carried this struct without ever consulting it;
// this module wires it into pagination (see paginate).
type Rules struct {
	// MinLinesBeforeBreak is the minimum number of a paragraph's lines
	// that must remain on a page before a page break splits it.
	MinLinesBeforeBreak int
	// MinLinesAfterBreak is the minimum number of a paragraph's lines
	// that must appear after a page break that splits it.
	MinLinesAfterBreak int
	// KeepHeadingWithNext forbids a heading from being the last entry
	// on a page when at least one line of the following paragraph
	// would otherwise start the next page.
	KeepHeadingWithNext bool
}

// DefaultRules returns conservative widow/orphan control.
func DefaultRules() Rules {
	return Rules{MinLinesBeforeBreak: 2, MinLinesAfterBreak: 2, KeepHeadingWithNext: true}
}

// Config is the engine's layout geometry and policy.
type Config struct {
	PageWidth    float32
	PageHeight   float32
	MarginTop    float32
	MarginBottom float32
	MarginLeft   float32
	MarginRight  float32
	DefaultFont  font.ID
	Rules        Rules
}

// DefaultConfig returns a plausible US-Letter-like page at 96 DPI.
func DefaultConfig() Config {
	return Config{
		PageWidth:    816,
		PageHeight:   1056,
		MarginTop:    96,
		MarginBottom: 96,
		MarginLeft:   96,
		MarginRight:  96,
		DefaultFont:  font.DefaultID,
		Rules:        DefaultRules(),
	}
}

// ContentWidth is the page width minus left/right margins.
func (c Config) ContentWidth() float32 { return c.PageWidth - c.MarginLeft - c.MarginRight }

// ContentHeight is the page height minus top/bottom margins.
func (c Config) ContentHeight() float32 { return c.PageHeight - c.MarginTop - c.MarginBottom }

// ContentWidthFor returns the content width available to a paragraph
// at the given list indent level, narrowed by ListIndentWidth per level.
func (c Config) ContentWidthFor(indent int) float32 {
	w := c.ContentWidth() - float32(indent)*ListIndentWidth
	if w < 1 {
		w = 1
	}
	return w
}
