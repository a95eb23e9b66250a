// Package cursor models the document's single caret and its optional
// selection extent, both expressed as absolute offsets into the
// document's joined text.
//
// Selection Model:
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection represents just a cursor with no
// selected text. The selection can extend forward (head > anchor) or
// backward (head < anchor), preserving the user's selection direction.
//
// Transform After Edits:
//
// Edit describes a single absolute-offset replacement; TransformCursor
// and TransformSelection carry a recorded position forward across an
// edit, so the editor's undo stack and caret tracking stay correct
// without re-deriving position from scratch.
//
// Basic usage:
//
//	sel := cursor.NewCursorSelection(10) // cursor at offset 10
//	sel = sel.Extend(20)                 // select from 10 to 20
//
//	edit := cursor.Edit{Range: cursor.Range{Start: 0, End: 5}, NewText: "Hello"}
//	sel = cursor.TransformSelection(sel, edit)
//
// Thread Safety:
//
// Cursor and Selection are immutable value types and safe for
// concurrent use.
package cursor
