package app

import (
	"sync"
	"testing"

	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/layout"
)

func newTestSession() *EditorSession {
	ed := editor.New(layout.DefaultConfig())
	var widths [font.ASCIIWidths]float32
	for i := range widths {
		widths[i] = 7.0
	}
	ed.SetFontMetrics(16.8, widths, 7.0)
	return NewSession(ed).WithMetrics(NewMetrics())
}

func TestSession_InsertAndGetText(t *testing.T) {
	s := newTestSession()

	if !s.InsertText("hello") {
		t.Fatal("expected InsertText to succeed")
	}
	if got := s.GetText(); got != "hello" {
		t.Errorf("GetText() = %q, want %q", got, "hello")
	}
}

func TestSession_InsertEmptyRejected(t *testing.T) {
	s := newTestSession()

	if s.InsertText("") {
		t.Error("expected InsertText(\"\") to be rejected")
	}
	snap := s.metricsOrDefault().Snapshot()
	if snap.RejectedCommands != 1 {
		t.Errorf("expected 1 rejected command, got %d", snap.RejectedCommands)
	}
}

func TestSession_UndoRedo(t *testing.T) {
	s := newTestSession()

	s.InsertText("hello")
	if !s.Undo() {
		t.Fatal("expected Undo to succeed")
	}
	if got := s.GetText(); got != "" {
		t.Errorf("GetText() after undo = %q, want empty", got)
	}
	if !s.Redo() {
		t.Fatal("expected Redo to succeed")
	}
	if got := s.GetText(); got != "hello" {
		t.Errorf("GetText() after redo = %q, want %q", got, "hello")
	}

	snap := s.metricsOrDefault().Snapshot()
	if snap.UndoCount != 1 || snap.RedoCount != 1 {
		t.Errorf("expected 1 undo and 1 redo recorded, got undo=%d redo=%d", snap.UndoCount, snap.RedoCount)
	}
}

func TestSession_UndoEmptyStackRejected(t *testing.T) {
	s := newTestSession()

	if s.Undo() {
		t.Error("expected Undo on empty stack to be rejected")
	}
}

func TestSession_Build(t *testing.T) {
	s := newTestSession()
	s.InsertText("hello world")

	buf := s.Build(0, s.PageHeight())
	if len(buf.U32()) == 0 {
		t.Fatal("expected non-empty u32 buffer")
	}
	if buf.U32()[0] != 0x4D575244 {
		t.Errorf("expected MAGIC at u32[0], got %#x", buf.U32()[0])
	}

	snap := s.metricsOrDefault().Snapshot()
	if snap.BuildCount != 1 {
		t.Errorf("expected 1 build recorded, got %d", snap.BuildCount)
	}
	if snap.RelayoutCount != 1 {
		t.Errorf("expected 1 relayout recorded, got %d", snap.RelayoutCount)
	}
}

func TestSession_ConcurrentDispatchSerializes(t *testing.T) {
	s := newTestSession()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.InsertText("x")
		}()
	}
	wg.Wait()

	if got := len(s.GetText()); got != 50 {
		t.Errorf("expected 50 characters inserted, got %d", got)
	}
}

func TestSession_SelectAllAndFormat(t *testing.T) {
	s := newTestSession()
	s.InsertText("hello")

	if !s.SelectAll() {
		t.Fatal("expected SelectAll to succeed on non-empty document")
	}
	if !s.HasSelection() {
		t.Fatal("expected HasSelection to be true after SelectAll")
	}
	if !s.FormatSelection(font.DefaultID) {
		t.Fatal("expected FormatSelection to succeed on a non-empty selection")
	}

	s.ClearSelection()
	if s.HasSelection() {
		t.Error("expected HasSelection to be false after ClearSelection")
	}
}

func TestSession_CursorAccessors(t *testing.T) {
	s := newTestSession()
	s.InsertText("hié") // 'h', 'i', 'é' (2-byte UTF-8, 1 UTF-16 unit)

	id, off := s.CursorByteOffset()
	if off != 4 {
		t.Errorf("expected caret at byte offset 4, got %d", off)
	}
	if s.CursorParagraphID() != id {
		t.Error("expected CursorParagraphID to match CursorByteOffset's id")
	}

	u16ID, u16Off := s.CursorUTF16Offset()
	if u16Off != 3 {
		t.Errorf("expected caret at UTF-16 offset 3, got %d", u16Off)
	}
	if u16ID != id {
		t.Error("expected CursorUTF16Offset to match CursorByteOffset's id")
	}
}

func TestSession_GeometryAccessors(t *testing.T) {
	s := newTestSession()

	if s.PageWidth() <= 0 || s.PageHeight() <= 0 {
		t.Error("expected positive page geometry")
	}
	if s.ContentWidth() != s.PageWidth()-s.MarginLeft()-s.MarginRight() {
		t.Error("expected ContentWidth to match page width minus margins")
	}
	if s.ContentHeight() != s.PageHeight()-s.MarginTop()-s.MarginBottom() {
		t.Error("expected ContentHeight to match page height minus margins")
	}
}
