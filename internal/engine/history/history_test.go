package history

import (
	"errors"
	"testing"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/font"
)

// newTestStoreAndSelection builds a single-paragraph store containing text
// and a selection collapsed at cursorPos.
func newTestStoreAndSelection(text string, cursorPos ByteOffset) (*document.Store, *cursor.Selection) {
	store := document.New(font.DefaultID)
	if text != "" {
		if _, err := store.InsertAt(0, text); err != nil {
			panic(err)
		}
	}
	sel := cursor.NewCursorSelection(cursorPos)
	return store, &sel
}

// Operation Tests

func TestNewOperation(t *testing.T) {
	op := NewOperation(Range{Start: 5, End: 10}, "hello", "world")
	if op.Range.Start != 5 || op.Range.End != 10 {
		t.Error("wrong range")
	}
	if op.OldText != "hello" || op.NewText != "world" {
		t.Error("wrong text")
	}
	if op.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestOperationIsInsert(t *testing.T) {
	insert := NewInsertOperation(5, "hello")
	if !insert.IsInsert() {
		t.Error("should be insert")
	}
	if insert.IsDelete() || insert.IsReplace() {
		t.Error("should not be delete or replace")
	}
}

func TestOperationIsDelete(t *testing.T) {
	del := NewDeleteOperation(Range{Start: 5, End: 10}, "hello")
	if !del.IsDelete() {
		t.Error("should be delete")
	}
	if del.IsInsert() || del.IsReplace() {
		t.Error("should not be insert or replace")
	}
}

func TestOperationIsReplace(t *testing.T) {
	replace := NewReplaceOperation(Range{Start: 5, End: 10}, "hello", "world")
	if !replace.IsReplace() {
		t.Error("should be replace")
	}
	if replace.IsInsert() || replace.IsDelete() {
		t.Error("should not be insert or delete")
	}
}

func TestOperationBytesDelta(t *testing.T) {
	tests := []struct {
		name     string
		op       *Operation
		expected int
	}{
		{"insert", NewInsertOperation(0, "hello"), 5},
		{"delete", NewDeleteOperation(Range{Start: 0, End: 5}, "hello"), -5},
		{"replace longer", NewReplaceOperation(Range{Start: 0, End: 3}, "abc", "hello"), 2},
		{"replace shorter", NewReplaceOperation(Range{Start: 0, End: 5}, "hello", "hi"), -3},
		{"replace same", NewReplaceOperation(Range{Start: 0, End: 5}, "hello", "world"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.BytesDelta(); got != tt.expected {
				t.Errorf("BytesDelta() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestOperationInvert(t *testing.T) {
	op := NewReplaceOperation(Range{Start: 5, End: 10}, "hello", "world")
	op.CursorBefore = cursor.NewCursorSelection(5)
	op.CursorAfter = cursor.NewCursorSelection(10)

	inv := op.Invert()

	if inv.Range.Start != 5 || inv.Range.End != 10 {
		t.Error("inverted range wrong")
	}
	if inv.OldText != "world" || inv.NewText != "hello" {
		t.Error("inverted text wrong")
	}
	if inv.CursorBefore.Head != 10 {
		t.Error("inverted cursor before wrong")
	}
	if inv.CursorAfter.Head != 5 {
		t.Error("inverted cursor after wrong")
	}
}

func TestOperationClone(t *testing.T) {
	op := NewReplaceOperation(Range{Start: 5, End: 10}, "hello", "world")
	op.CursorBefore = cursor.NewCursorSelection(5)

	clone := op.Clone()
	op.Range.Start = 100
	op.CursorBefore = cursor.NewCursorSelection(100)

	if clone.Range.Start != 5 {
		t.Error("clone range was modified")
	}
	if clone.CursorBefore.Head != 5 {
		t.Error("clone cursor was modified")
	}
}

// InsertCommand Tests

func TestInsertCommandExecute(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewInsertCommand(" there")

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "hello there world" {
		t.Errorf("got %q, want %q", store.Text(), "hello there world")
	}
	if sel.Head != 11 {
		t.Errorf("cursor at %d, want 11", sel.Head)
	}
}

func TestInsertCommandUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewInsertCommand(" there")

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if store.Text() != "hello world" {
		t.Errorf("got %q, want %q", store.Text(), "hello world")
	}
	if sel.Head != 5 {
		t.Errorf("cursor at %d, want 5", sel.Head)
	}
}

func TestInsertCommandWithSelection(t *testing.T) {
	store, _ := newTestStoreAndSelection("hello world", 0)
	sel := cursor.NewSelection(0, 5) // select "hello"
	cmd := NewInsertCommand("hi")

	if err := cmd.Execute(store, &sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "hi world" {
		t.Errorf("got %q, want %q", store.Text(), "hi world")
	}
	if sel.Head != 2 {
		t.Errorf("cursor at %d, want 2", sel.Head)
	}
}

func TestInsertCommandDescription(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"a", "Type 'a'"},
		{"\n", "Insert newline"},
		{"\t", "Insert tab"},
		{"hello", `Insert "hello"`},
		{"a very long string that exceeds the limit", "Insert 41 characters"},
	}

	for _, tt := range tests {
		cmd := NewInsertCommand(tt.text)
		if got := cmd.Description(); got != tt.expected {
			t.Errorf("Description for %q = %q, want %q", tt.text, got, tt.expected)
		}
	}
}

// DeleteCommand Tests

func TestDeleteCommandBackspace(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewDeleteCommand(DeleteBackward)

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "hell world" {
		t.Errorf("got %q, want %q", store.Text(), "hell world")
	}
	if sel.Head != 4 {
		t.Errorf("cursor at %d, want 4", sel.Head)
	}
}

func TestDeleteCommandForward(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewDeleteCommand(DeleteForward)

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "helloworld" {
		t.Errorf("got %q, want %q", store.Text(), "helloworld")
	}
	if sel.Head != 5 {
		t.Errorf("cursor at %d, want 5", sel.Head)
	}
}

func TestDeleteCommandWithSelection(t *testing.T) {
	store, _ := newTestStoreAndSelection("hello world", 0)
	sel := cursor.NewSelection(0, 5) // select "hello"
	cmd := NewDeleteCommand(DeleteBackward)

	if err := cmd.Execute(store, &sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != " world" {
		t.Errorf("got %q, want %q", store.Text(), " world")
	}
	if sel.Head != 0 {
		t.Errorf("cursor at %d, want 0", sel.Head)
	}
}

func TestDeleteCommandUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewDeleteCommand(DeleteBackward)

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if store.Text() != "hello world" {
		t.Errorf("got %q, want %q", store.Text(), "hello world")
	}
	if sel.Head != 5 {
		t.Errorf("cursor at %d, want 5", sel.Head)
	}
}

func TestDeleteCommandN(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewDeleteCommandN(DeleteBackward, 3)

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "he world" {
		t.Errorf("got %q, want %q", store.Text(), "he world")
	}
}

// ReplaceCommand Tests

func TestReplaceCommandExecute(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 0)
	cmd := NewReplaceCommand(Range{Start: 0, End: 5}, "hi")

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "hi world" {
		t.Errorf("got %q, want %q", store.Text(), "hi world")
	}
}

func TestReplaceCommandUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 0)
	cmd := NewReplaceCommand(Range{Start: 0, End: 5}, "hi")

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if store.Text() != "hello world" {
		t.Errorf("got %q, want %q", store.Text(), "hello world")
	}
}

// FormatCommand Tests

func TestFormatCommandExecuteAndUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 0)
	if _, err := store.FormatRange(0, 5, font.ID(3)); err != nil {
		t.Fatalf("seed format failed: %v", err)
	}

	id, _, err := store.ParagraphAt(0)
	if err != nil {
		t.Fatalf("ParagraphAt failed: %v", err)
	}
	before, _, _ := store.ParaByID(id)
	beforeRuns := append(document.StyleRuns(nil), before.Styles()...)

	cmd := NewFormatCommand(3, 8, font.ID(7))
	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	mid, _, _ := store.ParaByID(id)
	foundFont := false
	for _, run := range mid.Styles() {
		if 5 >= run.ByteStart && 5 < run.End() {
			if run.FontID != font.ID(7) {
				t.Errorf("offset 5 font = %d, want 7", run.FontID)
			}
			foundFont = true
		}
	}
	if !foundFont {
		t.Error("no style run covers offset 5")
	}

	if err := cmd.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	after, _, _ := store.ParaByID(id)
	afterRuns := after.Styles()
	if len(afterRuns) != len(beforeRuns) {
		t.Fatalf("run count after undo = %d, want %d", len(afterRuns), len(beforeRuns))
	}
	for i := range beforeRuns {
		if afterRuns[i] != beforeRuns[i] {
			t.Errorf("run %d = %+v, want %+v", i, afterRuns[i], beforeRuns[i])
		}
	}
}

// CompoundCommand Tests

func TestCompoundCommandExecute(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewCompoundCommand("test", NewInsertCommand(" there"), NewInsertCommand("!"))

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if store.Text() != "hello there! world" {
		t.Errorf("got %q, want %q", store.Text(), "hello there! world")
	}
}

func TestCompoundCommandUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello world", 5)
	cmd := NewCompoundCommand("test", NewInsertCommand(" there"), NewInsertCommand("!"))

	if err := cmd.Execute(store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if store.Text() != "hello world" {
		t.Errorf("got %q, want %q", store.Text(), "hello world")
	}
}

// History Tests

func TestHistoryPushAndUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	if err := h.Execute(NewInsertCommand(" world"), store, sel); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if store.Text() != "hello world" {
		t.Errorf("after execute: got %q", store.Text())
	}

	if err := h.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if store.Text() != "hello" {
		t.Errorf("after undo: got %q", store.Text())
	}
}

func TestHistoryRedo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.Execute(NewInsertCommand(" world"), store, sel)
	h.Undo(store, sel)

	if err := h.Redo(store, sel); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if store.Text() != "hello world" {
		t.Errorf("after redo: got %q", store.Text())
	}
}

func TestHistoryRedoClearedOnPush(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.Execute(NewInsertCommand(" world"), store, sel)
	h.Undo(store, sel)

	if !h.CanRedo() {
		t.Error("should be able to redo")
	}

	h.Execute(NewInsertCommand("!"), store, sel)

	if h.CanRedo() {
		t.Error("redo should be cleared after new command")
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	store, sel := newTestStoreAndSelection("", 0)
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Execute(NewInsertCommand("x"), store, sel)
	}

	if h.UndoCount() != 3 {
		t.Errorf("undo count = %d, want 3", h.UndoCount())
	}
}

func TestHistoryCanUndoRedo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	if h.CanUndo() {
		t.Error("should not be able to undo initially")
	}
	if h.CanRedo() {
		t.Error("should not be able to redo initially")
	}

	h.Execute(NewInsertCommand(" world"), store, sel)

	if !h.CanUndo() {
		t.Error("should be able to undo after execute")
	}
	if h.CanRedo() {
		t.Error("should not be able to redo after execute")
	}

	h.Undo(store, sel)

	if h.CanUndo() {
		t.Error("should not be able to undo after undoing single command")
	}
	if !h.CanRedo() {
		t.Error("should be able to redo after undo")
	}
}

func TestHistoryErrors(t *testing.T) {
	h := NewHistory(100)
	store, sel := newTestStoreAndSelection("hello", 0)

	if err := h.Undo(store, sel); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if err := h.Redo(store, sel); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestHistoryClear(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.Execute(NewInsertCommand(" world"), store, sel)
	h.Clear()

	if h.CanUndo() || h.CanRedo() {
		t.Error("history should be empty after clear")
	}
}

// Merge Tests

func TestHistoryTypeMergesConsecutiveKeystrokes(t *testing.T) {
	store, sel := newTestStoreAndSelection("", 0)
	h := NewHistory(100)

	h.Type(store, sel, "h")
	h.Type(store, sel, "i")

	if store.Text() != "hi" {
		t.Fatalf("got %q, want %q", store.Text(), "hi")
	}
	if h.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1 (merged)", h.UndoCount())
	}

	if err := h.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if store.Text() != "" {
		t.Errorf("after undo: got %q, want empty", store.Text())
	}
}

func TestHistoryTypeClosesWindowOnWhitespace(t *testing.T) {
	store, sel := newTestStoreAndSelection("", 0)
	h := NewHistory(100)

	h.Type(store, sel, "hi")
	h.Type(store, sel, " ")
	h.Type(store, sel, "there")

	if store.Text() != "hi there" {
		t.Fatalf("got %q, want %q", store.Text(), "hi there")
	}
	if h.UndoCount() != 3 {
		t.Errorf("undo count = %d, want 3 (word, space, word each separate)", h.UndoCount())
	}
}

func TestHistoryDeleteCharMergesConsecutiveBackspaces(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.DeleteChar(store, sel, DeleteBackward)
	h.DeleteChar(store, sel, DeleteBackward)
	h.DeleteChar(store, sel, DeleteBackward)

	if store.Text() != "he" {
		t.Fatalf("got %q, want %q", store.Text(), "he")
	}
	if h.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1 (merged)", h.UndoCount())
	}

	if err := h.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if store.Text() != "hello" {
		t.Errorf("after undo: got %q, want %q", store.Text(), "hello")
	}
}

func TestHistoryDeleteCharDoesNotMergeAcrossDirectionChange(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 2)
	h := NewHistory(100)

	h.DeleteChar(store, sel, DeleteBackward)
	h.DeleteChar(store, sel, DeleteForward)

	if h.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2 (direction change starts new entry)", h.UndoCount())
	}
}

func TestHistoryDeleteClusterRemovesMultiByteClusterAsOneUnit(t *testing.T) {
	// "é" (e + combining acute accent) is one grapheme cluster
	// spanning 3 bytes; DeleteCluster must remove all 3 in one call.
	text := "caf" + "é"
	store, sel := newTestStoreAndSelection(text, int64(len(text)))
	h := NewHistory(100)

	if err := h.DeleteCluster(store, sel, DeleteBackward, len("é")); err != nil {
		t.Fatalf("DeleteCluster failed: %v", err)
	}
	if store.Text() != "caf" {
		t.Fatalf("got %q, want %q", store.Text(), "caf")
	}

	if err := h.Undo(store, sel); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if store.Text() != text {
		t.Errorf("after undo: got %q, want %q", store.Text(), text)
	}
}

func TestHistoryLastTouchedReportsExecutedCommandsParagraph(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	ids, structural := h.LastTouched()
	if ids != nil || structural {
		t.Fatalf("expected no last-touched before any command, got %v/%v", ids, structural)
	}

	id, _, _ := store.ParagraphAt(0)
	if err := h.Type(store, sel, "!"); err != nil {
		t.Fatalf("Type failed: %v", err)
	}
	ids, structural = h.LastTouched()
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("LastTouched ids = %v, want [%v]", ids, id)
	}
	if structural {
		t.Error("single-paragraph insert should not be structural")
	}
}

// Grouping Tests

func TestHistoryGrouping(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.BeginGroup("test group")
	h.Execute(NewInsertCommand(" "), store, sel)
	h.Execute(NewInsertCommand("world"), store, sel)
	h.EndGroup()

	if store.Text() != "hello world" {
		t.Errorf("got %q", store.Text())
	}

	h.Undo(store, sel)

	if store.Text() != "hello" {
		t.Errorf("after undo: got %q, want %q", store.Text(), "hello")
	}
	if h.CanUndo() {
		t.Error("should have only one undo entry for group")
	}
}

func TestHistoryCancelGroup(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.BeginGroup("test group")
	h.Execute(NewInsertCommand(" world"), store, sel)
	h.CancelGroup()

	if store.Text() != "hello world" {
		t.Errorf("got %q", store.Text())
	}
	if h.CanUndo() {
		t.Error("canceled group should not create undo entry")
	}
}

func TestHistoryGroupScope(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	func() {
		scope := h.GroupScope("test")
		defer scope.End()

		h.Execute(NewInsertCommand(" "), store, sel)
		h.Execute(NewInsertCommand("world"), store, sel)
	}()

	h.Undo(store, sel)

	if store.Text() != "hello" {
		t.Errorf("after undo: got %q", store.Text())
	}
}

func TestHistoryExecuteGrouped(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	err := h.ExecuteGrouped("test", store, sel, NewInsertCommand(" "), NewInsertCommand("world"))
	if err != nil {
		t.Fatalf("ExecuteGrouped failed: %v", err)
	}

	if h.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", h.UndoCount())
	}
}

// Info Tests

func TestHistoryUndoInfo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	h.Execute(NewInsertCommand(" world"), store, sel)

	info := h.UndoInfo()
	if len(info) != 1 {
		t.Fatalf("got %d entries, want 1", len(info))
	}
	if info[0].Description != `Insert " world"` {
		t.Errorf("description = %q", info[0].Description)
	}
	if info[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestHistoryPeekUndo(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo should return false when empty")
	}

	h.Execute(NewInsertCommand(" world"), store, sel)

	info, ok := h.PeekUndo()
	if !ok {
		t.Error("PeekUndo should return true")
	}
	if info.Description != `Insert " world"` {
		t.Errorf("description = %q", info.Description)
	}
	if h.UndoCount() != 1 {
		t.Error("PeekUndo should not modify stack")
	}
}

// Checkpoint Tests

func TestHistoryCheckpoint(t *testing.T) {
	store, sel := newTestStoreAndSelection("hello", 5)
	h := NewHistory(100)

	cp := h.CreateCheckpoint()

	h.Execute(NewInsertCommand(" "), store, sel)
	h.Execute(NewInsertCommand("world"), store, sel)
	h.Execute(NewInsertCommand("!"), store, sel)

	if store.Text() != "hello world!" {
		t.Errorf("got %q", store.Text())
	}

	if err := h.UndoToCheckpoint(cp, store, sel); err != nil {
		t.Fatalf("UndoToCheckpoint failed: %v", err)
	}
	if store.Text() != "hello" {
		t.Errorf("after undo to checkpoint: got %q", store.Text())
	}
}
