package editor

import (
	"testing"

	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/layout"
)

func newTestEditor() *Editor {
	cfg := layout.DefaultConfig()
	return New(cfg)
}

func TestNewEditorStartsEmptyWithCaretAtZero(t *testing.T) {
	e := newTestEditor()
	if e.GetText() != "" {
		t.Fatalf("got %q, want empty document", e.GetText())
	}
	if e.HasSelection() {
		t.Error("new editor should have no selection")
	}
	if _, off := e.CursorByteOffset(); off != 0 {
		t.Errorf("cursor offset = %d, want 0", off)
	}
}

func TestInsertTextThenUndoRestoresDocument(t *testing.T) {
	e := newTestEditor()
	if !e.InsertText("hello") {
		t.Fatal("InsertText reported failure")
	}
	if e.GetText() != "hello" {
		t.Fatalf("got %q, want %q", e.GetText(), "hello")
	}
	if !e.Undo() {
		t.Fatal("Undo reported failure")
	}
	if e.GetText() != "" {
		t.Fatalf("after undo got %q, want empty", e.GetText())
	}
	if !e.Redo() {
		t.Fatal("Redo reported failure")
	}
	if e.GetText() != "hello" {
		t.Fatalf("after redo got %q, want %q", e.GetText(), "hello")
	}
}

func TestInsertParagraphSplitsIntoTwoParagraphs(t *testing.T) {
	e := newTestEditor()
	e.InsertText("one")
	if !e.InsertParagraph() {
		t.Fatal("InsertParagraph reported failure")
	}
	e.InsertText("two")
	if e.GetText() != "one\ntwo" {
		t.Fatalf("got %q, want %q", e.GetText(), "one\ntwo")
	}
	if len(e.store.Paragraphs()) != 2 {
		t.Fatalf("paragraph count = %d, want 2", len(e.store.Paragraphs()))
	}
}

func TestDeleteBackwardMergesAcrossParagraphBoundary(t *testing.T) {
	e := newTestEditor()
	e.InsertText("one")
	e.InsertParagraph()
	e.InsertText("two")
	// caret is at the end of "two"; move to just after the paragraph
	// break (start of "two") then delete backward across the break.
	e.MoveCursor(-3, 0, false)
	if !e.DeleteBackward() {
		t.Fatal("DeleteBackward reported failure")
	}
	if e.GetText() != "onetwo" {
		t.Fatalf("got %q, want %q", e.GetText(), "onetwo")
	}
	if len(e.store.Paragraphs()) != 1 {
		t.Fatalf("paragraph count = %d, want 1", len(e.store.Paragraphs()))
	}
}

func TestTypingMergesIntoOneUndoEntry(t *testing.T) {
	e := newTestEditor()
	e.InsertText("h")
	e.InsertText("i")
	if !e.Undo() {
		t.Fatal("Undo reported failure")
	}
	if e.GetText() != "" {
		t.Fatalf("one undo should remove the whole merged word, got %q", e.GetText())
	}
}

func TestTypingSplitsUndoEntryOnSpace(t *testing.T) {
	e := newTestEditor()
	e.InsertText("hi")
	e.InsertText(" ")
	e.InsertText("there")
	if !e.Undo() {
		t.Fatal("Undo reported failure")
	}
	if e.GetText() != "hi " {
		t.Fatalf("got %q, want %q", e.GetText(), "hi ")
	}
	if !e.Undo() {
		t.Fatal("Undo reported failure")
	}
	if e.GetText() != "hi" {
		t.Fatalf("got %q, want %q", e.GetText(), "hi")
	}
}

func TestSelectAllThenInsertReplacesSelection(t *testing.T) {
	e := newTestEditor()
	e.InsertText("hello world")
	if !e.SelectAll() {
		t.Fatal("SelectAll reported failure")
	}
	if !e.HasSelection() {
		t.Fatal("expected an active selection after SelectAll")
	}
	if !e.InsertText("bye") {
		t.Fatal("InsertText reported failure")
	}
	if e.GetText() != "bye" {
		t.Fatalf("got %q, want %q", e.GetText(), "bye")
	}
	if e.HasSelection() {
		t.Error("selection should collapse after replacing it")
	}
}

func TestDeleteClusterRemovesCombiningMarkAsOneUnit(t *testing.T) {
	e := newTestEditor()
	e.InsertText("café") // "cafe" + combining acute accent
	if !e.DeleteBackward() {
		t.Fatal("DeleteBackward reported failure")
	}
	if e.GetText() != "caf" {
		t.Fatalf("got %q, want %q", e.GetText(), "caf")
	}
}

func TestDeleteBackwardAtDocumentStartIsNoop(t *testing.T) {
	e := newTestEditor()
	if e.DeleteBackward() {
		t.Error("DeleteBackward at document start should report false")
	}
}

func TestDeleteForwardAtDocumentEndIsNoop(t *testing.T) {
	e := newTestEditor()
	e.InsertText("hi")
	if e.DeleteForward() {
		t.Error("DeleteForward at document end should report false")
	}
}

func TestFormatSelectionRequiresExtent(t *testing.T) {
	e := newTestEditor()
	e.InsertText("hello")
	var widths [font.ASCIIWidths]float32
	if err := e.RegisterFont(1, 20, widths, 9); err != nil {
		t.Fatalf("RegisterFont failed: %v", err)
	}
	if e.FormatSelection(1) {
		t.Error("FormatSelection with no selection should report false")
	}
	e.SelectAll()
	if !e.FormatSelection(1) {
		t.Error("FormatSelection with a selection should report true")
	}
}

func TestMoveCursorHorizontalStepsByGraphemeCluster(t *testing.T) {
	e := newTestEditor()
	e.InsertText("ab")
	if !e.MoveCursor(-1, 0, false) {
		t.Fatal("MoveCursor(-1) reported failure")
	}
	if _, off := e.CursorByteOffset(); off != 1 {
		t.Errorf("offset after one backward move = %d, want 1", off)
	}
	if !e.MoveCursor(-1, 0, false) {
		t.Fatal("MoveCursor(-1) reported failure")
	}
	if _, off := e.CursorByteOffset(); off != 0 {
		t.Errorf("offset after two backward moves = %d, want 0", off)
	}
	if e.MoveCursor(-1, 0, false) {
		t.Error("MoveCursor at document start should report false")
	}
}

func TestClearSelectionCollapsesToHead(t *testing.T) {
	e := newTestEditor()
	e.InsertText("hello")
	e.SelectAll()
	e.ClearSelection()
	if e.HasSelection() {
		t.Error("expected no selection after ClearSelection")
	}
}
