package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// defaultMaxEntries bounds the undo stack when NewHistory is given a
// non-positive value.
const defaultMaxEntries = 100

// defaultMergeWindow is how long after one keystroke/backspace a
// following one may still merge into the same undo entry.
const defaultMergeWindow = 500 * time.Millisecond

type editKind int

const (
	editNone editKind = iota
	editInsert
	editDelete
)

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// History manages undo/redo state for a document.Store and its single
// caret/selection.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries  int
	mergeWindow time.Duration

	lastEditKind     editKind
	lastEditTime     time.Time
	lastInsertEnd    ByteOffset
	lastDeleteAnchor ByteOffset

	lastCmd Command
}

// LastTouched reports the paragraphs touched by the most recent
// Execute, Type, DeleteChar, Undo, or Redo call, for driving layout
// invalidation. The bool reports whether that call was a structural
// change (paragraphs added or removed).
func (h *History) LastTouched() ([]document.ID, bool) {
	h.mu.Lock()
	cmd := h.lastCmd
	h.mu.Unlock()
	if cmd == nil {
		return nil, false
	}
	return Touched(cmd)
}

// NewHistory creates a new history manager with the given undo depth.
// A non-positive maxEntries uses the default of 100 entries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &History{
		maxEntries:  maxEntries,
		mergeWindow: defaultMergeWindow,
	}
}

// SetMergeWindow changes how long consecutive typing/deleting may merge
// into a single undo entry.
func (h *History) SetMergeWindow(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mergeWindow = d
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command, store *document.Store, sel *cursor.Selection) error {
	if err := cmd.Execute(store, sel); err != nil {
		return err
	}
	h.mu.Lock()
	h.lastEditKind = editNone
	h.lastCmd = cmd
	h.mu.Unlock()
	h.Push(cmd)
	return nil
}

// Type inserts text at the caret, merging into the previous insert command
// when it happened within the merge window and typing hasn't crossed a
// whitespace boundary since.
func (h *History) Type(store *document.Store, sel *cursor.Selection, text string) error {
	if text == "" {
		return nil
	}
	now := time.Now()

	h.mu.Lock()
	var mergeInto *InsertCommand
	if !h.grouping && h.lastEditKind == editInsert && len(h.undoStack) > 0 &&
		now.Sub(h.lastEditTime) <= h.mergeWindow && sel.IsEmpty() && sel.Head == h.lastInsertEnd {
		if ic, ok := h.undoStack[len(h.undoStack)-1].command.(*InsertCommand); ok && ic.canMergeWith(text) {
			mergeInto = ic
		}
	}
	h.mu.Unlock()

	if mergeInto != nil {
		if err := mergeInto.extend(store, sel, text); err != nil {
			return err
		}
		h.mu.Lock()
		h.lastEditTime = now
		h.lastInsertEnd = sel.Head
		h.lastCmd = mergeInto
		h.mu.Unlock()
		return nil
	}

	cmd := NewInsertCommand(text)
	if err := h.Execute(cmd, store, sel); err != nil {
		return err
	}
	h.mu.Lock()
	h.lastEditKind = editInsert
	h.lastEditTime = now
	h.lastInsertEnd = sel.Head
	h.mu.Unlock()
	return nil
}

// DeleteChar deletes one Unicode code point in direction, merging into
// the previous delete command when it happened within the merge window
// and the direction hasn't changed.
func (h *History) DeleteChar(store *document.Store, sel *cursor.Selection, direction DeleteDirection) error {
	return h.deleteStep(store, sel, direction, 0)
}

// DeleteCluster deletes exactly one grapheme cluster of clusterBytes
// bytes in direction, merging into the previous delete command under the
// same time-window rule as DeleteChar. Callers (internal/editor) compute
// clusterBytes by walking grapheme-cluster boundaries so a combining
// mark or multi-codepoint emoji sequence is removed as a single unit.
func (h *History) DeleteCluster(store *document.Store, sel *cursor.Selection, direction DeleteDirection, clusterBytes int) error {
	return h.deleteStep(store, sel, direction, clusterBytes)
}

func (h *History) deleteStep(store *document.Store, sel *cursor.Selection, direction DeleteDirection, clusterBytes int) error {
	now := time.Now()

	h.mu.Lock()
	var mergeInto *DeleteCommand
	if !h.grouping && h.lastEditKind == editDelete && len(h.undoStack) > 0 &&
		now.Sub(h.lastEditTime) <= h.mergeWindow && sel.IsEmpty() && sel.Head == h.lastDeleteAnchor {
		if dc, ok := h.undoStack[len(h.undoStack)-1].command.(*DeleteCommand); ok && dc.Direction == direction {
			mergeInto = dc
		}
	}
	h.mu.Unlock()

	if mergeInto != nil {
		if err := mergeInto.extend(store, sel, clusterBytes); err != nil {
			return err
		}
		h.mu.Lock()
		h.lastEditTime = now
		h.lastDeleteAnchor = sel.Head
		h.lastCmd = mergeInto
		h.mu.Unlock()
		return nil
	}

	var cmd *DeleteCommand
	if clusterBytes > 0 {
		cmd = NewDeleteClusterCommand(direction, clusterBytes)
	} else {
		cmd = NewDeleteCommand(direction)
	}
	if err := h.Execute(cmd, store, sel); err != nil {
		return err
	}
	h.mu.Lock()
	h.lastEditKind = editDelete
	h.lastEditTime = now
	h.lastDeleteAnchor = sel.Head
	h.mu.Unlock()
	return nil
}

// Push adds a command to the undo stack. Clears the redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}
	h.pushLocked(cmd)
}

func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{command: cmd, timestamp: time.Now()})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the last command. The lock is released during command
// execution to avoid holding it during potentially long store operations.
func (h *History) Undo(store *document.Store, sel *cursor.Selection) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.lastEditKind = editNone
	h.mu.Unlock()

	if err := entry.command.Undo(store, sel); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.lastCmd = entry.command
	h.mu.Unlock()
	return nil
}

// Redo redoes the last undone command.
func (h *History) Redo(store *document.Store, sel *cursor.Selection) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.lastEditKind = editNone
	h.mu.Unlock()

	if err := entry.command.Execute(store, sel); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.lastCmd = entry.command
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a command group. Commands pushed while grouping are
// combined into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup finishes a command group, combining every command pushed since
// BeginGroup into a single CompoundCommand.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.grouping {
		return
	}
	h.grouping = false

	if len(h.groupCmds) == 0 {
		h.groupCmds = nil
		return
	}

	compound := &CompoundCommand{Name: h.groupName, Commands: h.groupCmds}
	h.pushLocked(compound)
	h.groupCmds = nil
}

// CancelGroup cancels a command group without adding to history. Commands
// already executed still affect the document.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping = false
	h.groupCmds = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
	h.lastEditKind = editNone
}

// UndoInfo returns info about available undo operations.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}
	}
	return result
}

// RedoInfo returns info about available redo operations.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}, true
}

// SetMaxEntries changes the maximum number of undo entries. If the current
// stack is larger, the oldest entries are dropped.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = defaultMaxEntries
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
