package buffer

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/engine/rope"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrInvalidBoundary  = errors.New("offset not on a UTF-8 boundary")
)

// ByteOffset is an absolute byte position within a Buffer.
type ByteOffset = int64

// Buffer holds one paragraph's text as an immutable rope. All methods
// are thread-safe.
type Buffer struct {
	mu   sync.RWMutex
	rope rope.Rope
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{rope: rope.New()}
}

// NewBufferFromString creates a buffer with initial content. s must
// not contain a newline; callers that need one rely on
// internal/document.Store to split it into separate paragraphs first.
func NewBufferFromString(s string) *Buffer {
	return &Buffer{rope: rope.FromString(s)}
}

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// TextRange returns text in the given byte range.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(b.rope.Len())
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.ByteAt(rope.ByteOffset(offset))
}

// UTF16Len returns the UTF-16 code unit length of the buffer's full
// text, read from the rope's cached summary rather than transcoding.
func (b *Buffer) UTF16Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.UTF16Len()
}

// UTF16OffsetAt returns the UTF-16 code unit count of the text before
// the given byte offset, descending the rope's cached per-subtree
// summaries instead of rescanning the whole buffer. offset must land
// on a UTF-8 boundary.
func (b *Buffer) UTF16OffsetAt(offset ByteOffset) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.UTF16OffsetAt(rope.ByteOffset(offset))
}

func (b *Buffer) isBoundary(offset ByteOffset) bool {
	ro := rope.ByteOffset(offset)
	if ro == 0 || ro == b.rope.Len() {
		return true
	}
	s := b.rope.Slice(ro, ro+1)
	return len(s) > 0 && utf8.RuneStart(s[0])
}

// Insert inserts text at the given offset, which must land on a
// UTF-8 boundary. Returns the end offset of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || rope.ByteOffset(offset) > b.rope.Len() {
		return 0, ErrOffsetOutOfRange
	}
	if !b.isBoundary(offset) {
		return 0, ErrInvalidBoundary
	}

	b.rope = b.rope.Insert(rope.ByteOffset(offset), text)
	return offset + ByteOffset(len(text)), nil
}

// Delete removes text in the given range. start and end must each
// land on a UTF-8 boundary.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || rope.ByteOffset(end) > b.rope.Len() {
		return ErrOffsetOutOfRange
	}
	if !b.isBoundary(start) || !b.isBoundary(end) {
		return ErrInvalidBoundary
	}

	b.rope = b.rope.Delete(rope.ByteOffset(start), rope.ByteOffset(end))
	return nil
}
