package history

import (
	"time"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// ByteOffset is an alias for cursor.ByteOffset for convenience.
type ByteOffset = cursor.ByteOffset

// Range is an alias for cursor.Range for convenience.
type Range = cursor.Range

// Selection is an alias for cursor.Selection for convenience.
type Selection = cursor.Selection

// Operation represents a single undoable edit against the document's
// absolute byte-offset text (document.Store.Text()). It captures all
// information needed to undo or redo the edit.
type Operation struct {
	Range   Range  // Range that was modified (in the document before the edit)
	OldText string // Text that was replaced (for undo)
	NewText string // Text that was inserted (for redo)

	CursorBefore Selection // Caret/selection before the edit
	CursorAfter  Selection // Caret/selection after the edit

	// Touched and Structural mirror the document.EditResult the store
	// returned when this operation was applied, so a command can report
	// which paragraphs the layout engine must invalidate without the
	// Command interface itself needing to return EditResult.
	Touched    []document.ID
	Structural bool

	Timestamp time.Time
}

// NewOperation creates a new operation.
func NewOperation(r Range, oldText, newText string) *Operation {
	return &Operation{Range: r, OldText: oldText, NewText: newText, Timestamp: time.Now()}
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation(offset ByteOffset, text string) *Operation {
	return &Operation{Range: Range{Start: offset, End: offset}, NewText: text, Timestamp: time.Now()}
}

// NewDeleteOperation creates an operation for a deletion.
func NewDeleteOperation(r Range, deletedText string) *Operation {
	return &Operation{Range: r, OldText: deletedText, Timestamp: time.Now()}
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(r Range, oldText, newText string) *Operation {
	return &Operation{Range: r, OldText: oldText, NewText: newText, Timestamp: time.Now()}
}

// IsInsert returns true if this operation is a pure insertion.
func (op *Operation) IsInsert() bool { return op.Range.Start == op.Range.End && len(op.NewText) > 0 }

// IsDelete returns true if this operation is a pure deletion.
func (op *Operation) IsDelete() bool { return op.Range.Start != op.Range.End && len(op.NewText) == 0 }

// IsReplace returns true if this operation replaces text.
func (op *Operation) IsReplace() bool {
	return op.Range.Start != op.Range.End && len(op.NewText) > 0
}

// IsNoop returns true if this operation makes no changes.
func (op *Operation) IsNoop() bool { return op.Range.Start == op.Range.End && len(op.NewText) == 0 }

// BytesDelta returns the change in document length.
func (op *Operation) BytesDelta() int {
	return len(op.NewText) - int(op.Range.End-op.Range.Start)
}

// NewRange returns the range of the text after the operation.
func (op *Operation) NewRange() Range {
	return Range{Start: op.Range.Start, End: op.Range.Start + ByteOffset(len(op.NewText))}
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Range:        op.NewRange(),
		OldText:      op.NewText,
		NewText:      op.OldText,
		CursorBefore: op.CursorAfter,
		CursorAfter:  op.CursorBefore,
		Timestamp:    time.Now(),
	}
}

// SetResult records the touched-paragraph/structural-change outcome of
// applying this operation against a document.Store.
func (op *Operation) SetResult(r document.EditResult) {
	op.Touched = r.TouchedParagraphIDs
	op.Structural = r.StructuralChange
}

// Clone creates a deep copy of the operation.
func (op *Operation) Clone() *Operation {
	clone := *op
	return &clone
}

// OperationInfo provides read-only info about an operation, for
// displaying undo/redo history to users.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
	BytesDelta  int
}
