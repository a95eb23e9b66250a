package layout

import (
	"errors"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/font"
)

// ErrOutOfRange is returned by queries against a page index, or a
// y-coordinate, the current pagination doesn't contain.
var ErrOutOfRange = errors.New("layout: out of range")

// RelayoutSummary reports what a call to Relayout actually did.
type RelayoutSummary struct {
	RelaidParagraphIDs []document.ID
	Repaginated        bool
}

// Engine is the incremental layout engine: it owns a dirty set of
// paragraph ids plus a pagination-dirty flag, and relays out only
// what Invalidate marked since the last Relayout.
type Engine struct {
	store *document.Store
	fonts *font.Registry
	cfg   Config

	layouts         map[document.ID]*ParagraphLayout
	dirty           map[document.ID]bool
	paginationDirty bool
	everLaidOut     bool
	pages           []Page
}

// NewEngine creates a layout engine bound to store and fonts with cfg.
func NewEngine(store *document.Store, fonts *font.Registry, cfg Config) *Engine {
	return &Engine{
		store:   store,
		fonts:   fonts,
		cfg:     cfg,
		layouts: make(map[document.ID]*ParagraphLayout),
		dirty:   make(map[document.ID]bool),
	}
}

// Invalidate marks paragraphs as needing relayout. Pagination is also
// marked dirty for any paragraph that already had a cached height,
// since its height may be about to change.
func (e *Engine) Invalidate(ids []document.ID) {
	for _, id := range ids {
		if _, had := e.layouts[id]; had {
			e.paginationDirty = true
		}
		e.dirty[id] = true
	}
}

// InvalidateAll marks every current paragraph dirty and forces repagination.
func (e *Engine) InvalidateAll() {
	for _, p := range e.store.Paragraphs() {
		e.dirty[p.ID()] = true
	}
	e.paginationDirty = true
}

// MarkStructuralChange forces repagination without requiring a height
// change, per the spec: structural edits change page composition even
// when no paragraph's height moved.
func (e *Engine) MarkStructuralChange() {
	e.paginationDirty = true
}

func (e *Engine) layoutParagraph(p *document.Para) *ParagraphLayout {
	indent := 0
	marker := ""
	if p.Kind().Tag == document.KindListItem {
		indent = p.Kind().Indent
		marker = p.Kind().Marker
	}
	width := e.cfg.ContentWidthFor(indent)
	pl := breakParagraph(p.Text(), p.Styles(), e.fonts, width, e.cfg.DefaultFont, marker, e.cfg.DefaultFont)
	return &pl
}

// Relayout processes the dirty set in document order, then
// repaginates if pagination was marked dirty or any paragraph's
// height changed as a result.
func (e *Engine) Relayout() RelayoutSummary {
	var relaid []document.ID
	order := e.store.Paragraphs()
	existing := make(map[document.ID]bool, len(order))

	for _, p := range order {
		existing[p.ID()] = true
		if !e.dirty[p.ID()] {
			continue
		}
		newLayout := e.layoutParagraph(p)
		if old, ok := e.layouts[p.ID()]; !ok || old.TotalHeight != newLayout.TotalHeight {
			e.paginationDirty = true
		}
		e.layouts[p.ID()] = newLayout
		relaid = append(relaid, p.ID())
		delete(e.dirty, p.ID())
	}

	for id := range e.layouts {
		if !existing[id] {
			delete(e.layouts, id)
			e.paginationDirty = true
		}
	}

	repaginated := false
	if e.paginationDirty || !e.everLaidOut {
		e.repaginate(order)
		e.paginationDirty = false
		repaginated = true
	}
	e.everLaidOut = true

	return RelayoutSummary{RelaidParagraphIDs: relaid, Repaginated: repaginated}
}

func (e *Engine) repaginate(order []*document.Para) {
	ids := make([]document.ID, len(order))
	headings := make(map[document.ID]bool, len(order))
	for i, p := range order {
		ids[i] = p.ID()
		if p.Kind().Tag == document.KindHeading {
			headings[p.ID()] = true
		}
	}
	e.pages = paginate(ids, e.layouts, headings, e.cfg)
}

// ensureLayout lazily forces a relayout pass when a query arrives
// before any layout has ever run or while the dirty set is non-empty.
func (e *Engine) ensureLayout() {
	if !e.everLaidOut || len(e.dirty) > 0 || e.paginationDirty {
		e.Relayout()
	}
}

// Pages returns the current pagination. Empty documents still
// produce exactly one page with zero lines.
func (e *Engine) Pages() []Page {
	e.ensureLayout()
	return e.pages
}

// ParagraphLayout returns the cached layout for id, if any.
func (e *Engine) ParagraphLayout(id document.ID) (*ParagraphLayout, bool) {
	e.ensureLayout()
	pl, ok := e.layouts[id]
	return pl, ok
}

func (e *Engine) lineHeightsForPage(page Page) (runningY []float32, lines []Line, owners []document.ID) {
	var y float32
	for _, entry := range page.Entries {
		pl := e.layouts[entry.ParagraphID]
		if pl == nil {
			continue
		}
		for li := entry.LineStart; li < entry.LineEnd && li < len(pl.Lines); li++ {
			runningY = append(runningY, y)
			lines = append(lines, pl.Lines[li])
			owners = append(owners, entry.ParagraphID)
			y += pl.Lines[li].Height
		}
	}
	return
}

// HitTest locates the paragraph and local byte offset under (x, y) on
// the given page. Out-of-range page indices fail.
func (e *Engine) HitTest(pageIndex int, x, y float32) (document.ID, int64, error) {
	e.ensureLayout()
	if pageIndex < 0 || pageIndex >= len(e.pages) {
		return 0, 0, ErrOutOfRange
	}
	ys, lines, owners := e.lineHeightsForPage(e.pages[pageIndex])
	if len(lines) == 0 {
		return 0, 0, ErrOutOfRange
	}

	li := 0
	for i := range lines {
		if y >= ys[i] && y < ys[i]+lines[i].Height {
			li = i
			break
		}
		li = i // snap to nearest (last one wins if we run off the end)
	}

	id, off := hitTestLine(owners[li], lines[li], x)
	return id, off, nil
}

func hitTestLine(owner document.ID, line Line, x float32) (document.ID, int64) {
	cur := line.MarkerWidth
	if x < cur || len(line.Clusters) == 0 {
		return owner, line.ByteStart
	}
	for i, c := range line.Clusters {
		start := cur
		end := cur + c.AdvanceWidth
		if x >= start && x < end {
			distStart := x - start
			distEnd := end - x
			if distEnd <= distStart {
				if i+1 < len(line.Clusters) {
					return owner, line.Clusters[i+1].ByteOffset
				}
				return owner, line.ByteEnd
			}
			return owner, c.ByteOffset
		}
		cur = end
	}
	return owner, line.ByteEnd
}

// CaretGeometry returns the page, pixel position, height, and
// UTF-16-in-line offset of the caret at byteOffset within paragraph id.
func (e *Engine) CaretGeometry(id document.ID, byteOffset int64) (pageIndex int, x, y, height float32, utf16InLine int, err error) {
	e.ensureLayout()
	pl, ok := e.layouts[id]
	if !ok {
		return 0, 0, 0, 0, 0, ErrOutOfRange
	}
	lineIdx := -1
	for i, l := range pl.Lines {
		if byteOffset >= l.ByteStart && byteOffset <= l.ByteEnd {
			lineIdx = i
			if byteOffset < l.ByteEnd || i == len(pl.Lines)-1 {
				break
			}
		}
	}
	if lineIdx < 0 {
		return 0, 0, 0, 0, 0, ErrOutOfRange
	}
	line := pl.Lines[lineIdx]

	text, _ := e.store.TextOf(id)
	utf16InLine = len(utf16Encode(text[line.ByteStart:byteOffset]))

	x = line.MarkerWidth
	for _, c := range line.Clusters {
		if c.ByteOffset >= byteOffset {
			break
		}
		x += c.AdvanceWidth
	}
	height = line.Height

	for pIdx, page := range e.pages {
		ys, lines, owners := e.lineHeightsForPage(page)
		for i := range lines {
			if owners[i] == id && lines[i].ByteStart == line.ByteStart && lines[i].ByteEnd == line.ByteEnd {
				return pIdx, x, ys[i], height, utf16InLine, nil
			}
		}
	}
	return 0, 0, 0, 0, 0, ErrOutOfRange
}
