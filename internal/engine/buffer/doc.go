// Package buffer holds a single paragraph's text as an immutable rope
// under a mutex, plus the UTF-8/UTF-16 offset-space conversions a
// paginated document core needs to report caret position to a host.
//
// Unlike a whole-file text buffer, a Buffer here never holds a
// newline: internal/document.Store splits text on "\n" into separate
// paragraphs before any byte ever reaches a Buffer, so there is no
// line/column coordinate system to maintain. Insert and Delete reject
// any offset that does not fall on a UTF-8 code-point boundary,
// enforcing that invariant at the point of storage rather than
// leaving it entirely to the caller.
package buffer
