package editor

import (
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/engine/history"
	"github.com/dshills/keystorm/internal/font"
)

// InsertText inserts str at the caret, replacing the selection if one
// is active. Consecutive calls within the history merge window coalesce
// into a single undo entry, closing the window at whitespace the same
// way the underlying history.Type does.
func (e *Editor) InsertText(str string) bool {
	if str == "" {
		return false
	}
	if err := e.history.Type(e.store, &e.sel, str); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// InsertParagraph splits the current paragraph at the caret. It never
// merges with a preceding InsertText call, so backspace after a typed
// paragraph break first removes the break and nothing more.
func (e *Editor) InsertParagraph() bool {
	if err := e.history.Type(e.store, &e.sel, "\n"); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// DeleteBackward removes the selection, or the single grapheme cluster
// immediately before the caret. It is a no-op at the start of the
// document.
func (e *Editor) DeleteBackward() bool {
	clusterBytes := 0
	if e.sel.IsEmpty() {
		clusterBytes = clusterBefore(e.store.Text(), e.sel.Head)
		if clusterBytes == 0 {
			return false
		}
	}
	if err := e.history.DeleteCluster(e.store, &e.sel, history.DeleteBackward, clusterBytes); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// DeleteForward removes the selection, or the single grapheme cluster
// immediately after the caret. It is a no-op at the end of the document.
func (e *Editor) DeleteForward() bool {
	clusterBytes := 0
	if e.sel.IsEmpty() {
		clusterBytes = clusterAfter(e.store.Text(), e.sel.Head)
		if clusterBytes == 0 {
			return false
		}
	}
	if err := e.history.DeleteCluster(e.store, &e.sel, history.DeleteForward, clusterBytes); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// moveHorizontal steps the caret by exactly steps grapheme clusters,
// stopping at either end of the document. Its return value is the
// resulting absolute offset; ok is false if no movement was possible.
func (e *Editor) moveHorizontal(steps int) (cursor.ByteOffset, bool) {
	text := e.store.Text()
	pos := e.sel.Head
	moved := false
	switch {
	case steps > 0:
		for i := 0; i < steps; i++ {
			n := clusterAfter(text, pos)
			if n == 0 {
				break
			}
			pos += cursor.ByteOffset(n)
			moved = true
		}
	case steps < 0:
		for i := 0; i < -steps; i++ {
			n := clusterBefore(text, pos)
			if n == 0 {
				break
			}
			pos -= cursor.ByteOffset(n)
			moved = true
		}
	}
	return pos, moved
}

// moveVertical steps the caret dy lines up or down, keeping the
// caret's horizontal pixel position sticky across lines of differing
// length until an explicit horizontal move or cursor placement resets it.
func (e *Editor) moveVertical(dy int) (cursor.ByteOffset, bool) {
	id, local, err := e.resolve(e.sel.Head)
	if err != nil {
		return 0, false
	}
	page, x, y, height, _, err := e.layout.CaretGeometry(id, local)
	if err != nil {
		return 0, false
	}
	if !e.prefXValid {
		e.prefX = x
		e.prefXValid = true
	}

	pages := e.layout.Pages()
	contentH := e.cfg.ContentHeight()
	targetPage := page
	targetY := y + float32(dy)*height

	for targetY < 0 {
		targetPage--
		if targetPage < 0 {
			return 0, false
		}
		targetY += contentH
	}
	for targetY >= contentH {
		targetPage++
		if targetPage >= len(pages) {
			return 0, false
		}
		targetY -= contentH
	}

	newID, newLocal, err := e.layout.HitTest(targetPage, e.prefX, targetY)
	if err != nil {
		return 0, false
	}
	abs, err := e.store.AbsoluteOffsetOf(newID, newLocal)
	if err != nil {
		return 0, false
	}
	return abs, true
}

// MoveCursor moves the caret dx grapheme clusters horizontally or dy
// lines vertically (whichever is non-zero; dy takes precedence when
// both are given). extend grows the current selection from its anchor
// instead of collapsing it to the new position.
func (e *Editor) MoveCursor(dx, dy int, extend bool) bool {
	var (
		target cursor.ByteOffset
		moved  bool
	)
	switch {
	case dy != 0:
		target, moved = e.moveVertical(dy)
	case dx != 0:
		target, moved = e.moveHorizontal(dx)
		e.prefXValid = false
	}
	if !moved {
		return false
	}
	if extend {
		e.sel = e.sel.Extend(target)
	} else {
		e.sel = cursor.NewCursorSelection(target)
	}
	return true
}

// SetCursor collapses the caret to the position under (x, y) on page.
func (e *Editor) SetCursor(page int, x, y float32) bool {
	id, local, err := e.layout.HitTest(page, x, y)
	if err != nil {
		return false
	}
	abs, err := e.store.AbsoluteOffsetOf(id, local)
	if err != nil {
		return false
	}
	e.sel = cursor.NewCursorSelection(abs)
	e.prefXValid = false
	return true
}

// SelectTo extends the selection from its current anchor to the
// position under (x, y) on page.
func (e *Editor) SelectTo(page int, x, y float32) bool {
	id, local, err := e.layout.HitTest(page, x, y)
	if err != nil {
		return false
	}
	abs, err := e.store.AbsoluteOffsetOf(id, local)
	if err != nil {
		return false
	}
	e.sel = e.sel.Extend(abs)
	e.prefXValid = false
	return true
}

// SelectAll selects the entire document.
func (e *Editor) SelectAll() bool {
	n := cursor.ByteOffset(e.store.Len())
	e.sel = cursor.NewRangeSelection(cursor.Range{Start: 0, End: n})
	e.prefXValid = false
	return n > 0
}

// ClearSelection collapses the selection to its head, leaving the
// caret where it was.
func (e *Editor) ClearSelection() {
	e.sel = e.sel.Collapse()
}

// Undo reverses the most recent undoable edit, if any.
func (e *Editor) Undo() bool {
	if err := e.history.Undo(e.store, &e.sel); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// Redo reapplies the most recently undone edit, if any.
func (e *Editor) Redo() bool {
	if err := e.history.Redo(e.store, &e.sel); err != nil {
		return false
	}
	e.applyTouch()
	e.prefXValid = false
	return true
}

// FormatSelection applies fontID to the current selection. It is a
// no-op when the selection is collapsed — formatting needs an extent.
func (e *Editor) FormatSelection(fontID font.ID) bool {
	if e.sel.IsEmpty() {
		return false
	}
	r := e.sel.Range()
	cmd := history.NewFormatCommand(r.Start, r.End, fontID)
	if err := e.history.Execute(cmd, e.store, &e.sel); err != nil {
		return false
	}
	e.applyTouch()
	return true
}
