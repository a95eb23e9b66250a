package document

import (
	"sync/atomic"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/font"
)

// ID stably identifies a paragraph for the lifetime of the document.
// Ids are never reused, even after the paragraph they named is
// destroyed by a merge.
type ID uint64

var idCounter uint64

// nextID allocates a fresh paragraph id. Ids start at 1 so the zero
// value of ID can mean "no paragraph".
func nextID() ID {
	return ID(atomic.AddUint64(&idCounter, 1))
}

// BlockKindTag discriminates the variants of BlockKind.
type BlockKindTag uint8

const (
	KindParagraph BlockKindTag = iota
	KindHeading
	KindListItem
)

// BlockKind is the block-level type of a paragraph. Heading carries a
// level in 1..=6; ListItem carries a marker string and an indent
// level in 0..=n.
type BlockKind struct {
	Tag          BlockKindTag
	HeadingLevel int    // valid when Tag == KindHeading, 1..=6
	Marker       string // valid when Tag == KindListItem
	Indent       int    // valid when Tag == KindListItem, >= 0
}

// Paragraph block-kind constructors.
func Paragraph() BlockKind { return BlockKind{Tag: KindParagraph} }

func Heading(level int) BlockKind {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return BlockKind{Tag: KindHeading, HeadingLevel: level}
}

func ListItem(marker string, indent int) BlockKind {
	if indent < 0 {
		indent = 0
	}
	return BlockKind{Tag: KindListItem, Marker: marker, Indent: indent}
}

// Para is a single paragraph: a rope of UTF-8 text with no interior
// newlines, a block-level kind, and a contiguous cover of style runs.
//
// Layout caches (line breaks, heights, pagination membership) are
// never stored here; they live exclusively in internal/layout, keyed
// by Para.id, so a stale layout cache referencing a destroyed
// paragraph id simply fails its lookup instead of dangling.
type Para struct {
	id     ID
	kind   BlockKind
	text   *buffer.Buffer
	styles StyleRuns
}

// ID returns the paragraph's stable identifier.
func (p *Para) ID() ID { return p.id }

// Kind returns the paragraph's block kind.
func (p *Para) Kind() BlockKind { return p.kind }

// SetKind changes the paragraph's block kind without touching text or styles.
func (p *Para) SetKind(k BlockKind) { p.kind = k }

// Text returns the paragraph's full text.
func (p *Para) Text() string { return p.text.Text() }

// LenBytes returns the paragraph's byte length.
func (p *Para) LenBytes() int64 { return int64(p.text.Len()) }

// Slice returns the text in [start, end).
func (p *Para) Slice(start, end int64) string {
	return p.text.TextRange(buffer.ByteOffset(start), buffer.ByteOffset(end))
}

// Styles returns the paragraph's normalized style run cover.
func (p *Para) Styles() StyleRuns { return p.styles }

// UTF16Len returns the paragraph's text length in UTF-16 code units,
// for hosts that report caret position in UTF-16 offsets.
func (p *Para) UTF16Len() int { return p.text.UTF16Len() }

// UTF16OffsetAt returns the UTF-16 code unit count of the paragraph's
// text before local, which must land on a UTF-8 boundary.
func (p *Para) UTF16OffsetAt(local int64) int { return p.text.UTF16OffsetAt(local) }

func newPara(kind BlockKind, text string, styles StyleRuns, defaultFont font.ID) *Para {
	p := &Para{
		id:   nextID(),
		kind: kind,
		text: buffer.NewBufferFromString(text),
	}
	if len(styles) == 0 {
		p.styles = singleRun(int64(len(text)), defaultFont)
	} else {
		p.styles = normalize(styles)
	}
	return p
}
