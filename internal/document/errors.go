package document

import "errors"

// Errors returned by Store operations. Both are programmer errors per
// the spec: the editor layer is responsible for never calling the
// store with offsets that are out of range or mid-code-point.
var (
	// ErrInvalidOffset indicates an offset or range fell outside the document.
	ErrInvalidOffset = errors.New("document: offset out of range")

	// ErrInvalidBoundary indicates an offset did not fall on a UTF-8
	// code-point boundary.
	ErrInvalidBoundary = errors.New("document: offset not on a UTF-8 boundary")

	// ErrParagraphNotFound indicates a paragraph id is unknown (never
	// existed, or was destroyed by a prior merge).
	ErrParagraphNotFound = errors.New("document: paragraph not found")
)
