// Package history provides undo/redo for the editor's document.Store and
// its single caret/selection. The history system uses the Command pattern
// to encapsulate edit operations, enabling them to be executed, undone,
// and redone.
//
// # Operations
//
// An Operation records a single atomic edit's before/after state: the
// range that was modified, the old and new text, and the selection
// before and after.
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands include:
//   - InsertCommand: replace the selection (or insert at the caret)
//   - DeleteCommand: delete the selection or characters adjacent to the caret
//   - ReplaceCommand: replace text in an arbitrary range
//   - FormatCommand: apply a font id to a range, undoable back to the
//     prior heterogeneous style cover
//   - CompoundCommand: group multiple commands as one undo unit
//
// # History Stack
//
// The History type manages undo/redo stacks and command grouping:
//
//	h := history.NewHistory(100) // 100 undo entries
//
//	h.Execute(cmd, store, sel)
//	h.Undo(store, sel)
//	h.Redo(store, sel)
//
// Type and DeleteChar are convenience entry points that merge consecutive
// keystrokes or backspaces within a short window into a single undo
// entry, so pressing undo once after typing a word removes the whole
// word rather than one character at a time. Typing a space or newline
// closes the window.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Find and Replace")
//	// ... multiple edits ...
//	h.EndGroup()
//
// Now all edits undo together with one undo.
package history
