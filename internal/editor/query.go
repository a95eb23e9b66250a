package editor

import (
	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/layout"
)

// GetText returns the full document text.
func (e *Editor) GetText() string { return e.store.Text() }

// Selection returns the current caret/selection, for a render encoder
// to resolve against the editor's document and layout.
func (e *Editor) Selection() cursor.Selection { return e.sel }

// Store exposes the underlying document store for a render encoder.
func (e *Editor) Store() *document.Store { return e.store }

// LayoutEngine exposes the underlying layout engine for a render encoder.
func (e *Editor) LayoutEngine() *layout.Engine { return e.layout }

// PageCount returns the current number of paginated pages. Forces a
// relayout if the layout is dirty.
func (e *Editor) PageCount() int { return len(e.layout.Pages()) }

// HasSelection reports whether the current selection has extent.
func (e *Editor) HasSelection() bool { return !e.sel.IsEmpty() }

// PageWidth returns the configured page width.
func (e *Editor) PageWidth() float32 { return e.cfg.PageWidth }

// PageHeight returns the configured page height.
func (e *Editor) PageHeight() float32 { return e.cfg.PageHeight }

// MarginTop returns the configured top margin.
func (e *Editor) MarginTop() float32 { return e.cfg.MarginTop }

// MarginBottom returns the configured bottom margin.
func (e *Editor) MarginBottom() float32 { return e.cfg.MarginBottom }

// MarginLeft returns the configured left margin.
func (e *Editor) MarginLeft() float32 { return e.cfg.MarginLeft }

// MarginRight returns the configured right margin.
func (e *Editor) MarginRight() float32 { return e.cfg.MarginRight }

// ContentWidth returns the page width minus left and right margins.
func (e *Editor) ContentWidth() float32 { return e.cfg.ContentWidth() }

// ContentHeight returns the page height minus top and bottom margins.
func (e *Editor) ContentHeight() float32 { return e.cfg.ContentHeight() }

// CursorParagraphID returns the paragraph id the caret currently sits in.
func (e *Editor) CursorParagraphID() document.ID {
	id, _, _ := e.resolve(e.sel.Head)
	return id
}

// CursorByteOffset returns the caret's owning paragraph id and its
// byte offset local to that paragraph.
func (e *Editor) CursorByteOffset() (document.ID, int64) {
	id, local, _ := e.resolve(e.sel.Head)
	return id, local
}

// CursorUTF16Offset returns the caret's owning paragraph id and its
// UTF-16 code unit offset local to that paragraph, for hosts that
// track position in UTF-16 offsets rather than bytes.
func (e *Editor) CursorUTF16Offset() (document.ID, int) {
	id, local, _ := e.resolve(e.sel.Head)
	p, _, ok := e.store.ParaByID(id)
	if !ok {
		return id, 0
	}
	return id, p.UTF16OffsetAt(local)
}

// RegisterFont installs metrics for id: a line height, a per-code-point
// advance width table covering the ASCII range, and a fallback width
// for anything beyond it. Ids are never replaced once registered.
func (e *Editor) RegisterFont(id font.ID, lineHeight float32, charWidths [font.ASCIIWidths]float32, defaultWidth float32) error {
	return e.fonts.Register(id, font.Metrics{
		LineHeight:   lineHeight,
		CharWidths:   charWidths,
		DefaultWidth: defaultWidth,
	})
}

// SetFontMetrics installs a fresh font id carrying the given metrics
// and makes it the document's default, then forces a full relayout
// since every paragraph without an explicit style run measures against
// the default font.
func (e *Editor) SetFontMetrics(lineHeight float32, charWidths [font.ASCIIWidths]float32, defaultWidth float32) font.ID {
	id := e.fonts.SetDefaultMetrics(font.Metrics{
		LineHeight:   lineHeight,
		CharWidths:   charWidths,
		DefaultWidth: defaultWidth,
	})
	e.layout.InvalidateAll()
	return id
}
