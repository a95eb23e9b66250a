package history

import (
	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	scope := history.GroupScope("Complex Edit")
//	defer scope.End()
//	// ... multiple edits ...
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope. Call End() or use with defer to
// properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End ends the group scope. Safe to call multiple times; only the first
// call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without creating a compound command.
// Commands already executed still affect the document.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction executes fn within a grouped undo context. If fn returns an
// error, the group is cancelled; otherwise it is ended normally.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}
	h.EndGroup()
	return nil
}

// ExecuteGrouped executes multiple commands as a single undo unit.
func (h *History) ExecuteGrouped(name string, store *document.Store, sel *cursor.Selection, cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}
	if len(cmds) == 1 {
		return h.Execute(cmds[0], store, sel)
	}

	h.BeginGroup(name)
	for _, cmd := range cmds {
		if err := h.Execute(cmd, store, sel); err != nil {
			h.CancelGroup()
			return err
		}
	}
	h.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes all operations since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint, store *document.Store, sel *cursor.Selection) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(store, sel); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes operations up to the checkpoint depth. Only
// works if the redo stack still has the operations.
func (h *History) RedoToCheckpoint(cp Checkpoint, store *document.Store, sel *cursor.Selection) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(store, sel); err != nil {
			return err
		}
	}
	return nil
}
