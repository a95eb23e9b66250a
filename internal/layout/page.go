package layout

import "github.com/dshills/keystorm/internal/document"

// PageEntry names the line range of one paragraph that appears on a page.
type PageEntry struct {
	ParagraphID    document.ID
	LineStart      int // inclusive index into the paragraph's ParagraphLayout.Lines
	LineEnd        int // exclusive
}

// Page is one page of the paginated document.
type Page struct {
	PageIndex int
	YOffset   float32
	Width     float32
	Height    float32
	Entries   []PageEntry
}

// paginate lays paragraphs, in document order, onto pages of
// contentHeight, splitting a paragraph across pages at a line
// boundary when it doesn't fit, honoring widow/orphan Rules.
// headings names the paragraphs whose block kind is Heading, used by
// the KeepHeadingWithNext rule.
func paginate(order []document.ID, layouts map[document.ID]*ParagraphLayout, headings map[document.ID]bool, cfg Config) []Page {
	contentHeight := cfg.ContentHeight()
	var pages []Page
	cur := Page{PageIndex: 0, YOffset: 0, Width: cfg.PageWidth, Height: cfg.PageHeight}
	var cursorY float32

	closePage := func() {
		pages = append(pages, cur)
		cur = Page{PageIndex: len(pages), YOffset: 0, Width: cfg.PageWidth, Height: cfg.PageHeight}
		cursorY = 0
	}

	for pi, id := range order {
		pl := layouts[id]
		if pl == nil || len(pl.Lines) == 0 {
			continue
		}
		lineStart := 0
		for lineStart < len(pl.Lines) {
			fits := 0
			y := cursorY
			for i := lineStart; i < len(pl.Lines); i++ {
				if y+pl.Lines[i].Height > contentHeight && fits > 0 {
					break
				}
				y += pl.Lines[i].Height
				fits++
				if y > contentHeight {
					break
				}
			}
			if fits == 0 {
				// A single line taller than the page: force it alone.
				fits = 1
			}
			remaining := len(pl.Lines) - lineStart
			splitting := fits < remaining
			if splitting {
				fits = applyWidowOrphan(fits, remaining, cfg.Rules)
			}
			if cfg.Rules.KeepHeadingWithNext && !splitting && headings[id] && pi+1 < len(order) {
				// Avoid leaving a heading as the sole content on a page
				// with nothing of the next paragraph following it.
				next := layouts[order[pi+1]]
				if next != nil && len(next.Lines) > 0 {
					if cursorY+pl.Lines[lineStart].Height == 0 {
						// heading is first on an otherwise empty page: fine.
					} else if y+next.Lines[0].Height > contentHeight && len(cur.Entries) > 0 {
						closePage()
						y = 0
						for i := lineStart; i < len(pl.Lines); i++ {
							if y+pl.Lines[i].Height > contentHeight {
								break
							}
							y += pl.Lines[i].Height
						}
					}
				}
			}

			cur.Entries = append(cur.Entries, PageEntry{ParagraphID: id, LineStart: lineStart, LineEnd: lineStart + fits})
			cursorY = y
			lineStart += fits

			if lineStart < len(pl.Lines) {
				closePage()
			}
		}
	}

	pages = append(pages, cur)
	for i := range pages {
		pages[i].PageIndex = i
		// YOffset is this page's vertical position in the continuous
		// scroll space spanning every page back to back, not a position
		// within the page itself (every page's own content always starts
		// at y=0). The render encoder's viewport culling operates in this
		// same continuous space.
		pages[i].YOffset = float32(i) * cfg.PageHeight
	}
	return pages
}

// applyWidowOrphan nudges how many lines stay before a split so at
// least MinLinesBeforeBreak remain and at least MinLinesAfterBreak
// follow, when the paragraph has enough lines to honor both.
func applyWidowOrphan(fits, total int, r Rules) int {
	if r.MinLinesBeforeBreak <= 0 && r.MinLinesAfterBreak <= 0 {
		return fits
	}
	if total < r.MinLinesBeforeBreak+r.MinLinesAfterBreak {
		return fits // not enough lines to honor the policy at all
	}
	if fits < r.MinLinesBeforeBreak {
		fits = r.MinLinesBeforeBreak
	}
	if total-fits < r.MinLinesAfterBreak {
		fits = total - r.MinLinesAfterBreak
	}
	if fits < 1 {
		fits = 1
	}
	if fits > total {
		fits = total
	}
	return fits
}

