package encode

import (
	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/layout"
)

// Encoder walks a document.Store's current layout.Engine pagination
// and writes the viewport-clipped slice of it into Buffers as the
// wire render protocol. It holds no document state of its own — Build
// takes the selection to render.
type Encoder struct {
	store *document.Store
	eng   *layout.Engine

	buf Buffers

	pendingCursor *cursorGeometry
}

type cursorGeometry struct {
	pageIndex   int
	utf16InLine int
	x, y, height float32
}

// NewEncoder creates an Encoder bound to store's text and eng's
// current pagination.
func NewEncoder(store *document.Store, eng *layout.Engine) *Encoder {
	return &Encoder{store: store, eng: eng}
}

// Prepare forwards to the underlying Buffers' capacity hint.
func (e *Encoder) Prepare(estimatedU32, estimatedF32, estimatedText int) {
	e.buf.Prepare(estimatedU32, estimatedF32, estimatedText)
}

// Buffers returns the buffers Build populates. Valid only until the
// next Build call.
func (e *Encoder) Buffers() *Buffers { return &e.buf }

// WriteCursor records the caret's render geometry for the u32/f32
// cursor blocks finalize appends once every page and line has been
// written. It may be called at any point during a Build walk; only
// its final recorded value when finalize runs is kept.
func (e *Encoder) WriteCursor(pageIndex, utf16InLine int, x, y, height float32) {
	e.pendingCursor = &cursorGeometry{pageIndex: pageIndex, utf16InLine: utf16InLine, x: x, y: y, height: height}
}

func blockTypeAndFlags(kind document.BlockKind) (BlockType, uint32) {
	switch kind.Tag {
	case document.KindHeading:
		return BlockType(kind.HeadingLevel), FlagIsHeading
	case document.KindListItem:
		return BlockListItem, FlagIsListItem
	default:
		return BlockParagraph, 0
	}
}

// appendStyleSpans writes the style runs overlapping [lineStart,
// lineEnd) (paragraph-local byte offsets) into buf.style as
// [utf16_start, utf16_len, font_id] triplets relative to the line, and
// returns where they start and how many there are.
func appendStyleSpans(buf *Buffers, text string, styles document.StyleRuns, lineStart, lineEnd int64) (startIdx, count uint32) {
	startIdx = uint32(len(buf.style) / 3)
	for _, run := range styles {
		start, end := run.ByteStart, run.End()
		if start < lineStart {
			start = lineStart
		}
		if end > lineEnd {
			end = lineEnd
		}
		if start >= end {
			continue
		}
		utf16Start := utf16Len(text[lineStart:start])
		utf16RunLen := utf16Len(text[start:end])
		buf.style = append(buf.style, uint32(utf16Start), uint32(utf16RunLen), uint32(run.FontID))
		count++
	}
	return
}

func overlap(aStart, aEnd, bStart, bEnd cursor.ByteOffset) (cursor.ByteOffset, cursor.ByteOffset, bool) {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// Build populates Buffers with every page intersecting
// [viewportY, viewportY+viewportHeight): page and line geometry, line
// text, per-line style spans, per-line selection offsets against sel,
// and cursor geometry when sel is collapsed. The encoder never fails;
// an unresolvable paragraph id (stale layout cache entry) is skipped.
func (e *Encoder) Build(viewportY, viewportHeight float32, sel cursor.Selection) {
	buf := &e.buf
	buf.reset()
	e.pendingCursor = nil

	buf.u32 = append(buf.u32, make([]uint32, headerSlots)...)

	if sel.IsEmpty() {
		if id, local, err := e.store.ParagraphAt(sel.Head); err == nil {
			if pageIdx, x, y, height, utf16InLine, err := e.eng.CaretGeometry(id, local); err == nil {
				e.WriteCursor(pageIdx, utf16InLine, x, y, height)
			}
		}
	}

	hasSelection := !sel.IsEmpty()
	selRange := sel.Range()

	var visible []layout.Page
	for _, p := range e.eng.Pages() {
		if p.YOffset < viewportY+viewportHeight && p.YOffset+p.Height > viewportY {
			visible = append(visible, p)
		}
	}

	for _, page := range visible {
		var lineCount int
		for _, entry := range page.Entries {
			lineCount += entry.LineEnd - entry.LineStart
		}
		buf.u32 = append(buf.u32, uint32(page.PageIndex), uint32(lineCount))
		buf.f32 = append(buf.f32, page.YOffset, page.Width, page.Height)

		var curY float32
		for _, entry := range page.Entries {
			pl, ok := e.eng.ParagraphLayout(entry.ParagraphID)
			if !ok {
				continue
			}
			para, _, ok2 := e.store.ParaByID(entry.ParagraphID)
			if !ok2 {
				continue
			}
			text := para.Text()
			styles := para.Styles()
			blockType, flags := blockTypeAndFlags(para.Kind())

			for li := entry.LineStart; li < entry.LineEnd && li < len(pl.Lines); li++ {
				line := pl.Lines[li]

				textByteOff, textByteLen, textUTF16Off, textUTF16Length := buf.writeText(text[line.ByteStart:line.ByteEnd])
				markerByteOff, markerByteLen, markerUTF16Off, markerUTF16Length := buf.writeText(line.MarkerText)

				selStartU16, selEndU16 := noSelection, noSelection
				if hasSelection {
					lineAbsStart, err1 := e.store.AbsoluteOffsetOf(entry.ParagraphID, line.ByteStart)
					lineAbsEnd, err2 := e.store.AbsoluteOffsetOf(entry.ParagraphID, line.ByteEnd)
					if err1 == nil && err2 == nil {
						if ovStart, ovEnd, ok := overlap(selRange.Start, selRange.End, lineAbsStart, lineAbsEnd); ok {
							localStart := line.ByteStart + (ovStart - lineAbsStart)
							localEnd := line.ByteStart + (ovEnd - lineAbsStart)
							selStartU16 = uint32(utf16Len(text[line.ByteStart:localStart]))
							selEndU16 = uint32(utf16Len(text[line.ByteStart:localEnd]))
						}
					}
				}

				styleStart, styleCount := appendStyleSpans(buf, text, styles, line.ByteStart, line.ByteEnd)

				buf.u32 = append(buf.u32,
					uint32(textByteOff), uint32(textByteLen), uint32(textUTF16Off), uint32(textUTF16Length),
					uint32(blockType), flags,
					uint32(markerByteOff), uint32(markerByteLen), uint32(markerUTF16Off), uint32(markerUTF16Length),
					selStartU16, selEndU16,
					styleStart, styleCount,
				)
				buf.f32 = append(buf.f32, line.MarkerWidth, curY)
				curY += line.Height
			}
		}
	}

	e.finalize(len(visible))
}

func (e *Encoder) finalize(pageCount int) {
	buf := &e.buf

	buf.u32[hdrMagic] = Magic
	buf.u32[hdrSchemaVersion] = SchemaVersion
	ver := e.store.DocumentVersion()
	buf.u32[hdrDocVersionLow] = uint32(ver)
	buf.u32[hdrDocVersionHigh] = uint32(ver >> 32)
	buf.u32[hdrPageCount] = uint32(pageCount)
	buf.u32[hdrSelectionPresent] = 0
	buf.u32[hdrTextBufferLen] = uint32(len(buf.text))

	if e.pendingCursor == nil {
		buf.u32[hdrCursorPresent] = 0
		buf.u32[hdrU32CursorOffset] = 0
		buf.u32[hdrF32CursorOffset] = 0
		return
	}

	cw := e.pendingCursor
	u32Off := uint32(len(buf.u32))
	buf.u32 = append(buf.u32, uint32(cw.pageIndex), uint32(cw.utf16InLine))
	f32Off := uint32(len(buf.f32))
	buf.f32 = append(buf.f32, cw.x, cw.y, cw.height)

	buf.u32[hdrCursorPresent] = 1
	buf.u32[hdrU32CursorOffset] = u32Off
	buf.u32[hdrF32CursorOffset] = f32Off
}
