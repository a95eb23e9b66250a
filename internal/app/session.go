// Package app provides the editor session wiring and coordination.
//
// The paginated document core (internal/document, internal/layout,
// internal/editor, internal/renderer/encode) is itself single-threaded
// by contract: every command runs to completion before returning, and
// nothing inside it suspends. The process embedding it — a CLI
// harness, a test driver, a future multi-document host — is not
// guaranteed to call from one goroutine only. EditorSession is the
// boundary that makes that safe: it serializes every call behind one
// mutex, so a host that accidentally dispatches from two goroutines
// fails safely (blocks, then runs in order) instead of racing the
// rope, undo stack, or layout cache.
package app

import (
	"sync"
	"time"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/renderer/encode"
)

// EditorSession wraps exactly one editor.Editor behind a mutex, logging
// rejected (no-op) commands at warn and each render's relayout outcome
// (paragraphs relaid, whether repagination ran) at debug through a
// *Logger, and recording applied commands' latency and rejected-command
// counts through a *Metrics. Neither dependency is required: a session constructed with
// NewSession alone falls back to the package-level GetLogger/GetMetrics.
type EditorSession struct {
	mu sync.Mutex

	ed  *editor.Editor
	enc *encode.Encoder

	log     *Logger
	metrics *Metrics
}

// NewSession wraps ed for safe concurrent access. ed must not be used
// directly by any other caller once wrapped.
func NewSession(ed *editor.Editor) *EditorSession {
	return &EditorSession{
		ed:  ed,
		enc: encode.NewEncoder(ed.Store(), ed.LayoutEngine()),
	}
}

// WithLogger installs a specific logger instead of the package-level default.
func (s *EditorSession) WithLogger(l *Logger) *EditorSession {
	s.log = l
	return s
}

// WithMetrics installs a specific metrics tracker instead of the
// package-level default.
func (s *EditorSession) WithMetrics(m *Metrics) *EditorSession {
	s.metrics = m
	return s
}

func (s *EditorSession) logger() *Logger {
	if s.log != nil {
		return s.log
	}
	return GetLogger()
}

func (s *EditorSession) metricsOrDefault() *Metrics {
	if s.metrics != nil {
		return s.metrics
	}
	return GetMetrics()
}

// dispatch runs fn under the session mutex, timing it and recording
// whether it was rejected as a no-op, per the command API's contract
// that every command returns a bool and never opens an undo entry on
// a no-op.
func (s *EditorSession) dispatch(name string, fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ok := fn()
	if ok {
		s.metricsOrDefault().RecordCommand(time.Since(start))
	} else {
		s.metricsOrDefault().RecordRejected()
		s.logger().WithComponent("editor").Warn("command rejected as no-op: %s", name)
	}
	return ok
}

// InsertText inserts str at the caret, replacing the selection first if
// one is active.
func (s *EditorSession) InsertText(str string) bool {
	return s.dispatch("insert_text", func() bool { return s.ed.InsertText(str) })
}

// InsertParagraph splits the current paragraph at the caret.
func (s *EditorSession) InsertParagraph() bool {
	return s.dispatch("insert_paragraph", s.ed.InsertParagraph)
}

// DeleteBackward removes the selection, or one grapheme cluster before
// the caret.
func (s *EditorSession) DeleteBackward() bool {
	return s.dispatch("delete_backward", s.ed.DeleteBackward)
}

// DeleteForward removes the selection, or one grapheme cluster after
// the caret.
func (s *EditorSession) DeleteForward() bool {
	return s.dispatch("delete_forward", s.ed.DeleteForward)
}

// MoveCursor moves the caret horizontally (dx clusters) or vertically
// (dy lines), extending the selection instead of collapsing it when
// extend is true.
func (s *EditorSession) MoveCursor(dx, dy int, extend bool) bool {
	return s.dispatch("move_cursor", func() bool { return s.ed.MoveCursor(dx, dy, extend) })
}

// SetCursor collapses the caret to the position under (x, y) on page.
func (s *EditorSession) SetCursor(page int, x, y float32) bool {
	return s.dispatch("set_cursor", func() bool { return s.ed.SetCursor(page, x, y) })
}

// SelectTo extends the selection from its anchor to the position under
// (x, y) on page.
func (s *EditorSession) SelectTo(page int, x, y float32) bool {
	return s.dispatch("select_to", func() bool { return s.ed.SelectTo(page, x, y) })
}

// SelectAll selects the entire document.
func (s *EditorSession) SelectAll() bool {
	return s.dispatch("select_all", s.ed.SelectAll)
}

// ClearSelection collapses the selection to its head.
func (s *EditorSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ed.ClearSelection()
}

// Undo reverses the most recent undoable transaction, if any.
func (s *EditorSession) Undo() bool {
	ok := s.dispatch("undo", s.ed.Undo)
	if ok {
		s.metricsOrDefault().RecordUndo()
	}
	return ok
}

// Redo reapplies the most recently undone transaction, if any.
func (s *EditorSession) Redo() bool {
	ok := s.dispatch("redo", s.ed.Redo)
	if ok {
		s.metricsOrDefault().RecordRedo()
	}
	return ok
}

// FormatSelection applies fontID to the current selection.
func (s *EditorSession) FormatSelection(fontID font.ID) bool {
	return s.dispatch("format_selection", func() bool { return s.ed.FormatSelection(fontID) })
}

// RegisterFont installs metrics for id. Ids are never replaced once registered.
func (s *EditorSession) RegisterFont(id font.ID, lineHeight float32, charWidths [font.ASCIIWidths]float32, defaultWidth float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.RegisterFont(id, lineHeight, charWidths, defaultWidth)
}

// SetFontMetrics installs a fresh default font and forces a full relayout.
func (s *EditorSession) SetFontMetrics(lineHeight float32, charWidths [font.ASCIIWidths]float32, defaultWidth float32) font.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.SetFontMetrics(lineHeight, charWidths, defaultWidth)
}

// GetText returns the full document text.
func (s *EditorSession) GetText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.GetText()
}

// GetPageCount returns the current number of paginated pages.
func (s *EditorSession) GetPageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.PageCount()
}

// HasSelection reports whether the current selection has extent.
func (s *EditorSession) HasSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.HasSelection()
}

// PageWidth returns the configured page width.
func (s *EditorSession) PageWidth() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.PageWidth()
}

// PageHeight returns the configured page height.
func (s *EditorSession) PageHeight() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.PageHeight()
}

// MarginTop returns the configured top margin.
func (s *EditorSession) MarginTop() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.MarginTop()
}

// MarginBottom returns the configured bottom margin.
func (s *EditorSession) MarginBottom() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.MarginBottom()
}

// MarginLeft returns the configured left margin.
func (s *EditorSession) MarginLeft() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.MarginLeft()
}

// MarginRight returns the configured right margin.
func (s *EditorSession) MarginRight() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.MarginRight()
}

// ContentWidth returns the page width minus left and right margins.
func (s *EditorSession) ContentWidth() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.ContentWidth()
}

// ContentHeight returns the page height minus top and bottom margins.
func (s *EditorSession) ContentHeight() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.ContentHeight()
}

// CursorParagraphID returns the paragraph id the caret currently sits in.
func (s *EditorSession) CursorParagraphID() document.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.CursorParagraphID()
}

// CursorByteOffset returns the caret's owning paragraph id and its
// local byte offset.
func (s *EditorSession) CursorByteOffset() (document.ID, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.CursorByteOffset()
}

// CursorUTF16Offset returns the caret's owning paragraph id and its
// local UTF-16 code unit offset.
func (s *EditorSession) CursorUTF16Offset() (document.ID, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.CursorUTF16Offset()
}

// Build relays out any dirty paragraphs, then encodes the render
// buffers for the pages intersecting [viewportY, viewportY+viewportHeight).
// The returned Buffers are reused across calls: the host must read
// them before the next mutating command or the next Build.
func (s *EditorSession) Build(viewportY, viewportHeight float32) *encode.Buffers {
	s.mu.Lock()
	defer s.mu.Unlock()

	buildStart := time.Now()

	relayoutStart := time.Now()
	summary := s.ed.LayoutEngine().Relayout()
	s.metricsOrDefault().RecordRelayout(time.Since(relayoutStart))
	if len(summary.RelaidParagraphIDs) > 0 || summary.Repaginated {
		s.logger().WithComponent("layout").Debug(
			"relayout: %d paragraph(s), repaginated=%v",
			len(summary.RelaidParagraphIDs), summary.Repaginated,
		)
	}

	s.enc.Build(viewportY, viewportHeight, s.ed.Selection())

	s.metricsOrDefault().RecordBuild(time.Since(buildStart))
	return s.enc.Buffers()
}

// Editor exposes the wrapped editor directly for callers that already
// hold the session's guarantee of single-threaded access (e.g. a test
// driver running on one goroutine). Most hosts should prefer the
// mutex-guarded methods above.
func (s *EditorSession) Editor() *editor.Editor { return s.ed }
