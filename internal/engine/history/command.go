package history

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/font"
)

// Command represents a composable edit action that can be executed and undone
// against the document's paragraph store and its single caret/selection.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(store *document.Store, sel *cursor.Selection) error

	// Undo reverses the command and returns an error if it fails.
	Undo(store *document.Store, sel *cursor.Selection) error

	// Description returns a human-readable description of the command.
	Description() string
}

// TouchReporter is implemented by commands that can report which
// paragraphs their most recent Execute or Undo call touched, so a
// caller (internal/editor) can drive layout invalidation without the
// Command interface itself depending on document.EditResult.
type TouchReporter interface {
	// Touched returns the paragraphs touched by the last Execute/Undo
	// call and whether that call was a structural change.
	Touched() ([]document.ID, bool)
}

// Touched reports the paragraphs touched by cmd's last Execute or Undo
// call, if cmd implements TouchReporter.
func Touched(cmd Command) ([]document.ID, bool) {
	if tr, ok := cmd.(TouchReporter); ok {
		return tr.Touched()
	}
	return nil, false
}

// sliceText returns the document text in [start, end). Callers must have
// already validated the range against store.Len().
func sliceText(store *document.Store, start, end ByteOffset) string {
	return store.Text()[start:end]
}

func isWhitespaceRune(r rune) bool { return unicode.IsSpace(r) }

// InsertCommand inserts text at the caret, replacing the selection if one
// is active.
type InsertCommand struct {
	Text string
	op   *Operation
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(text string) *InsertCommand {
	return &InsertCommand{Text: text}
}

// Execute replaces the current selection (or inserts at the caret) with Text.
func (c *InsertCommand) Execute(store *document.Store, sel *cursor.Selection) error {
	r := sel.Range()
	oldText := ""
	if r.End > r.Start {
		oldText = sliceText(store, r.Start, r.End)
	}

	res, err := store.ReplaceRange(r.Start, r.End, c.Text)
	if err != nil {
		return fmt.Errorf("insert at [%d,%d): %w", r.Start, r.End, err)
	}

	op := NewReplaceOperation(r, oldText, c.Text)
	op.SetResult(res)
	op.CursorBefore = *sel
	*sel = cursor.NewCursorSelection(r.Start + ByteOffset(len(c.Text)))
	op.CursorAfter = *sel
	c.op = op
	return nil
}

// Touched reports the paragraphs touched by the last Execute or Undo.
func (c *InsertCommand) Touched() ([]document.ID, bool) {
	if c.op == nil {
		return nil, false
	}
	return c.op.Touched, c.op.Structural
}

// extend appends text immediately after this command's own insertion,
// growing it in place. Used by History.Type to merge consecutive
// keystrokes into a single undo entry.
func (c *InsertCommand) extend(store *document.Store, sel *cursor.Selection, text string) error {
	pos := sel.Head
	res, err := store.ReplaceRange(pos, pos, text)
	if err != nil {
		return fmt.Errorf("insert at %d: %w", pos, err)
	}
	c.Text += text
	*sel = cursor.NewCursorSelection(pos + ByteOffset(len(text)))
	if c.op != nil {
		c.op.NewText = c.Text
		c.op.CursorAfter = *sel
		c.op.SetResult(res)
	}
	return nil
}

// canMergeWith reports whether typing text right after this command's own
// insertion should extend it rather than start a new undo entry. A
// trailing space or newline closes the window, so punctuation after a
// finished word lands in its own entry.
func (c *InsertCommand) canMergeWith(text string) bool {
	if c.Text == "" || text == "" {
		return true
	}
	existing, _ := utf8.DecodeLastRuneInString(c.Text)
	incoming, _ := utf8.DecodeRuneInString(text)
	return !isWhitespaceRune(existing) && !isWhitespaceRune(incoming)
}

// Undo removes the inserted text and restores the prior selection.
func (c *InsertCommand) Undo(store *document.Store, sel *cursor.Selection) error {
	if c.op == nil {
		return nil
	}
	inv := c.op.Invert()
	res, err := store.ReplaceRange(inv.Range.Start, inv.Range.End, inv.NewText)
	if err != nil {
		return fmt.Errorf("undo insert: %w", err)
	}
	inv.SetResult(res)
	c.op = inv
	*sel = inv.CursorAfter
	return nil
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	if c.Text == "\n" {
		return "Insert newline"
	}
	if c.Text == "\t" {
		return "Insert tab"
	}
	if utf8.RuneCountInString(c.Text) == 1 {
		return fmt.Sprintf("Type '%s'", c.Text)
	}
	if utf8.RuneCountInString(c.Text) <= 20 {
		return fmt.Sprintf("Insert \"%s\"", c.Text)
	}
	return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(c.Text))
}

// DeleteDirection specifies the direction of deletion.
type DeleteDirection int

const (
	// DeleteBackward deletes backward (like Backspace).
	DeleteBackward DeleteDirection = iota
	// DeleteForward deletes forward (like Delete).
	DeleteForward
)

// DeleteCommand deletes the selection, or a run of characters adjacent to
// the caret in Direction.
type DeleteCommand struct {
	Direction DeleteDirection
	Count     int
	op        *Operation

	// ClusterBytes, when non-zero, is the exact byte length of the next
	// grapheme cluster adjacent to the caret, as measured by a caller
	// that walks grapheme-cluster boundaries (internal/editor, via
	// uniseg). When zero, Execute/extend fall back to stepping one
	// Unicode code point at a time.
	ClusterBytes int
}

// NewDeleteCommand creates a delete command for a single character.
func NewDeleteCommand(direction DeleteDirection) *DeleteCommand {
	return &DeleteCommand{Direction: direction, Count: 1}
}

// NewDeleteCommandN creates a delete command for count characters.
func NewDeleteCommandN(direction DeleteDirection, count int) *DeleteCommand {
	if count < 1 {
		count = 1
	}
	return &DeleteCommand{Direction: direction, Count: count}
}

// NewDeleteClusterCommand creates a delete command that removes exactly
// one grapheme cluster of clusterBytes bytes adjacent to the caret.
func NewDeleteClusterCommand(direction DeleteDirection, clusterBytes int) *DeleteCommand {
	return &DeleteCommand{Direction: direction, Count: 1, ClusterBytes: clusterBytes}
}

// Execute deletes the selection, or Count characters adjacent to the caret.
func (c *DeleteCommand) Execute(store *document.Store, sel *cursor.Selection) error {
	r := sel.Range()
	if r.Start == r.End {
		text := store.Text()
		if c.ClusterBytes > 0 {
			switch c.Direction {
			case DeleteBackward:
				start := r.Start - ByteOffset(c.ClusterBytes)
				if start < 0 {
					start = 0
				}
				r = Range{Start: start, End: r.Start}
			default:
				end := r.End + ByteOffset(c.ClusterBytes)
				if int(end) > len(text) {
					end = ByteOffset(len(text))
				}
				r = Range{Start: r.Start, End: end}
			}
		} else {
			switch c.Direction {
			case DeleteBackward:
				start := r.Start
				for i := 0; i < c.Count && start > 0; i++ {
					_, size := utf8.DecodeLastRuneInString(text[:start])
					start -= ByteOffset(size)
				}
				r = Range{Start: start, End: r.Start}
			default:
				end := r.End
				for i := 0; i < c.Count && int(end) < len(text); i++ {
					_, size := utf8.DecodeRuneInString(text[end:])
					end += ByteOffset(size)
				}
				r = Range{Start: r.Start, End: end}
			}
		}
	}

	if r.Start == r.End {
		c.op = nil
		return nil
	}

	oldText := sliceText(store, r.Start, r.End)
	res, err := store.DeleteRange(r.Start, r.End)
	if err != nil {
		return fmt.Errorf("delete range [%d,%d): %w", r.Start, r.End, err)
	}

	op := NewDeleteOperation(r, oldText)
	op.SetResult(res)
	op.CursorBefore = *sel
	*sel = cursor.NewCursorSelection(r.Start)
	op.CursorAfter = *sel
	c.op = op
	return nil
}

// Touched reports the paragraphs touched by the last Execute or Undo.
func (c *DeleteCommand) Touched() ([]document.ID, bool) {
	if c.op == nil {
		return nil, false
	}
	return c.op.Touched, c.op.Structural
}

// extend deletes one more step in Direction and folds it into this
// command's operation. Used by History.DeleteChar/DeleteCluster to merge
// consecutive backspace/delete presses into a single undo entry. When
// clusterBytes is 0, one Unicode code point is removed; otherwise exactly
// clusterBytes bytes are removed (one grapheme cluster).
func (c *DeleteCommand) extend(store *document.Store, sel *cursor.Selection, clusterBytes int) error {
	if c.op == nil {
		c.ClusterBytes = clusterBytes
		return c.Execute(store, sel)
	}

	text := store.Text()
	switch c.Direction {
	case DeleteBackward:
		start := c.op.Range.Start
		if start == 0 {
			return nil
		}
		var size int
		if clusterBytes > 0 {
			size = clusterBytes
			if int64(size) > int64(start) {
				size = int(start)
			}
		} else {
			_, size = utf8.DecodeLastRuneInString(text[:start])
		}
		newStart := start - ByteOffset(size)
		deleted := text[newStart:start]
		res, err := store.DeleteRange(newStart, start)
		if err != nil {
			return fmt.Errorf("delete range [%d,%d): %w", newStart, start, err)
		}
		c.op.Range.Start = newStart
		c.op.OldText = deleted + c.op.OldText
		c.op.SetResult(res)
		*sel = cursor.NewCursorSelection(newStart)
		c.op.CursorAfter = *sel
	default:
		end := c.op.Range.End
		if int(end) >= len(text) {
			return nil
		}
		var size int
		if clusterBytes > 0 {
			size = clusterBytes
			if int64(end)+int64(size) > int64(len(text)) {
				size = len(text) - int(end)
			}
		} else {
			_, size = utf8.DecodeRuneInString(text[end:])
		}
		newEnd := end + ByteOffset(size)
		deleted := text[end:newEnd]
		res, err := store.DeleteRange(end, newEnd)
		if err != nil {
			return fmt.Errorf("delete range [%d,%d): %w", end, newEnd, err)
		}
		c.op.Range.End = newEnd
		c.op.OldText += deleted
		c.op.SetResult(res)
		*sel = cursor.NewCursorSelection(c.op.Range.Start)
		c.op.CursorAfter = *sel
	}
	c.Count++
	return nil
}

// Undo restores the deleted text and the prior selection.
func (c *DeleteCommand) Undo(store *document.Store, sel *cursor.Selection) error {
	if c.op == nil {
		return nil
	}
	inv := c.op.Invert()
	res, err := store.ReplaceRange(inv.Range.Start, inv.Range.End, inv.NewText)
	if err != nil {
		return fmt.Errorf("undo delete: %w", err)
	}
	inv.SetResult(res)
	c.op = inv
	*sel = inv.CursorAfter
	return nil
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	if c.Count == 1 {
		if c.Direction == DeleteBackward {
			return "Backspace"
		}
		return "Delete"
	}
	if c.Direction == DeleteBackward {
		return fmt.Sprintf("Backspace %d characters", c.Count)
	}
	return fmt.Sprintf("Delete %d characters", c.Count)
}

// ReplaceCommand replaces text in a specific range, independent of the
// current selection.
type ReplaceCommand struct {
	Range   Range
	NewText string
	op      *Operation
}

// NewReplaceCommand creates a new replace command.
func NewReplaceCommand(r Range, newText string) *ReplaceCommand {
	return &ReplaceCommand{Range: r, NewText: newText}
}

// Execute replaces the text in Range with NewText.
func (c *ReplaceCommand) Execute(store *document.Store, sel *cursor.Selection) error {
	oldText := sliceText(store, c.Range.Start, c.Range.End)
	res, err := store.ReplaceRange(c.Range.Start, c.Range.End, c.NewText)
	if err != nil {
		return fmt.Errorf("replace range [%d,%d): %w", c.Range.Start, c.Range.End, err)
	}

	op := NewReplaceOperation(c.Range, oldText, c.NewText)
	op.SetResult(res)
	op.CursorBefore = *sel
	edit := cursor.Edit{Range: c.Range, NewText: c.NewText}
	*sel = cursor.TransformSelection(*sel, edit)
	op.CursorAfter = *sel
	c.op = op
	return nil
}

// Touched reports the paragraphs touched by the last Execute or Undo.
func (c *ReplaceCommand) Touched() ([]document.ID, bool) {
	if c.op == nil {
		return nil, false
	}
	return c.op.Touched, c.op.Structural
}

// Undo restores the original text and the prior selection.
func (c *ReplaceCommand) Undo(store *document.Store, sel *cursor.Selection) error {
	if c.op == nil {
		return nil
	}
	inv := c.op.Invert()
	res, err := store.ReplaceRange(inv.Range.Start, inv.Range.End, inv.NewText)
	if err != nil {
		return fmt.Errorf("undo replace: %w", err)
	}
	inv.SetResult(res)
	c.op = inv
	*sel = inv.CursorAfter
	return nil
}

// Description returns a human-readable description.
func (c *ReplaceCommand) Description() string {
	oldLen := int(c.Range.End - c.Range.Start)
	newLen := utf8.RuneCountInString(c.NewText)
	if oldLen == 0 {
		return fmt.Sprintf("Insert %d characters", newLen)
	}
	if newLen == 0 {
		return fmt.Sprintf("Delete %d characters", oldLen)
	}
	return fmt.Sprintf("Replace %d with %d characters", oldLen, newLen)
}

// FormatCommand applies a font id to a byte range, capturing each touched
// paragraph's prior style run cover so Undo can restore it exactly even
// when the prior cover was heterogeneous.
type FormatCommand struct {
	Start, End ByteOffset
	FontID     font.ID

	savedOrder []document.ID
	savedRuns  map[document.ID]document.StyleRuns
}

// NewFormatCommand creates a format command over [start, end).
func NewFormatCommand(start, end ByteOffset, fontID font.ID) *FormatCommand {
	return &FormatCommand{Start: start, End: end, FontID: fontID}
}

// Execute applies FontID to [Start, End), saving the prior style cover of
// every paragraph the range touches.
func (c *FormatCommand) Execute(store *document.Store, sel *cursor.Selection) error {
	startID, _, err := store.ParagraphAt(c.Start)
	if err != nil {
		return fmt.Errorf("format range [%d,%d): %w", c.Start, c.End, err)
	}
	endAt := c.End
	if endAt > c.Start {
		endAt--
	}
	endID, _, err := store.ParagraphAt(endAt)
	if err != nil {
		return fmt.Errorf("format range [%d,%d): %w", c.Start, c.End, err)
	}

	_, startIdx, ok := store.ParaByID(startID)
	if !ok {
		return document.ErrParagraphNotFound
	}
	_, endIdx, ok := store.ParaByID(endID)
	if !ok {
		return document.ErrParagraphNotFound
	}

	c.savedOrder = c.savedOrder[:0]
	c.savedRuns = make(map[document.ID]document.StyleRuns, endIdx-startIdx+1)
	for _, p := range store.Paragraphs()[startIdx : endIdx+1] {
		c.savedRuns[p.ID()] = append(document.StyleRuns(nil), p.Styles()...)
		c.savedOrder = append(c.savedOrder, p.ID())
	}

	if _, err := store.FormatRange(c.Start, c.End, c.FontID); err != nil {
		return fmt.Errorf("format range [%d,%d): %w", c.Start, c.End, err)
	}
	return nil
}

// Touched reports the paragraphs whose style runs were touched by the
// last Execute or Undo. Formatting is never a structural change.
func (c *FormatCommand) Touched() ([]document.ID, bool) {
	return c.savedOrder, false
}

// Undo restores every touched paragraph's style run cover.
func (c *FormatCommand) Undo(store *document.Store, sel *cursor.Selection) error {
	for _, id := range c.savedOrder {
		if err := store.SetStyleRuns(id, c.savedRuns[id]); err != nil {
			return fmt.Errorf("undo format: %w", err)
		}
	}
	return nil
}

// Description returns a human-readable description.
func (c *FormatCommand) Description() string {
	return fmt.Sprintf("Format %d characters", int(c.End-c.Start))
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{Name: name, Commands: commands}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(store *document.Store, sel *cursor.Selection) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(store, sel); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(store, sel)
			}
			return fmt.Errorf("compound command %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(store *document.Store, sel *cursor.Selection) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(store, sel); err != nil {
			return fmt.Errorf("undo compound command %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Touched unions the touched paragraphs reported by every child command.
func (c *CompoundCommand) Touched() ([]document.ID, bool) {
	var ids []document.ID
	structural := false
	for _, cmd := range c.Commands {
		childIDs, childStructural := Touched(cmd)
		ids = append(ids, childIDs...)
		structural = structural || childStructural
	}
	return ids, structural
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) { c.Commands = append(c.Commands, cmd) }

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool { return len(c.Commands) == 0 }
