package layout

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/font"
)

// workCluster is the breaking algorithm's internal view of a grapheme
// cluster; Line.Clusters only needs the public Cluster fields once a
// line is finalized.
type workCluster struct {
	byteStart, byteEnd   int64
	utf16Start, utf16End int
	width                float32
}

func isBreakOpportunity(s string) bool {
	return s == "-" || strings.TrimSpace(s) == ""
}

func styleFontAt(runs document.StyleRuns, at int64, fallback font.ID) font.ID {
	for _, r := range runs {
		if at >= r.ByteStart && at < r.End() {
			return r.FontID
		}
	}
	return fallback
}

func clusterWidth(s string, m font.Metrics) float32 {
	var w float32
	for _, r := range s {
		w += m.WidthOf(r)
	}
	return w
}

// breakParagraph line-breaks text greedily (UAX #14-inspired), never
// splitting a single grapheme cluster, preferring the latest
// whitespace/hyphen opportunity before an overflow and falling back
// to the latest cluster boundary when no opportunity has been seen.
func breakParagraph(text string, styles document.StyleRuns, fonts *font.Registry, contentWidth float32, defaultFont font.ID, markerText string, markerFont font.ID) ParagraphLayout {
	if text == "" {
		line := emptyLine(styles, fonts, defaultFont, markerText, markerFont)
		return ParagraphLayout{Lines: []Line{line}, TotalHeight: line.Height}
	}

	var lines []Line
	var pending []workCluster
	var pendingWidth float32
	candidate := -1
	seenOpportunity := false
	utf16Pos := 0
	firstLine := true

	avail := func() float32 {
		if firstLine && markerText != "" {
			m := fonts.MustLookup(markerFont)
			return contentWidth - clusterWidth(markerText, m)
		}
		return contentWidth
	}

	flush := func(upTo int) {
		lineClusters := pending[:upTo]
		carry := append([]workCluster(nil), pending[upTo:]...)
		lines = append(lines, buildLine(lineClusters, text, styles, fonts, defaultFont, firstLine, markerText, markerFont))
		firstLine = false
		pending = carry
		pendingWidth = 0
		for _, c := range pending {
			pendingWidth += c.width
		}
		candidate = -1
		seenOpportunity = false
		for i, c := range pending {
			s := text[c.byteStart:c.byteEnd]
			if isBreakOpportunity(s) {
				candidate = i
				seenOpportunity = true
			} else if !seenOpportunity {
				candidate = i
			}
		}
	}

	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		start, end := gr.Positions()
		str := gr.Str()
		fid := styleFontAt(styles, int64(start), defaultFont)
		m := fonts.MustLookup(fid)
		w := clusterWidth(str, m)
		utf16Len := len(utf16Encode(str))

		if str == "\n" {
			if len(pending) > 0 {
				flush(len(pending))
			}
			continue
		}

		if len(pending) > 0 && pendingWidth+w > avail() {
			breakAt := candidate
			if breakAt < 0 {
				breakAt = len(pending) - 1
			}
			flush(breakAt + 1)
		}

		wc := workCluster{
			byteStart:  int64(start),
			byteEnd:    int64(end),
			utf16Start: utf16Pos,
			utf16End:   utf16Pos + utf16Len,
			width:      w,
		}
		pending = append(pending, wc)
		pendingWidth += w
		utf16Pos += utf16Len

		if isBreakOpportunity(str) {
			candidate = len(pending) - 1
			seenOpportunity = true
		} else if !seenOpportunity {
			candidate = len(pending) - 1
		}
	}

	if len(pending) > 0 || len(lines) == 0 {
		lines = append(lines, buildLine(pending, text, styles, fonts, defaultFont, firstLine, markerText, markerFont))
	}

	var total float32
	for _, l := range lines {
		total += l.Height
	}
	return ParagraphLayout{Lines: lines, TotalHeight: total}
}

func buildLine(wcs []workCluster, text string, styles document.StyleRuns, fonts *font.Registry, defaultFont font.ID, isFirst bool, markerText string, markerFont font.ID) Line {
	line := Line{}
	if len(wcs) == 0 {
		return emptyLine(styles, fonts, defaultFont, markerOrEmpty(isFirst, markerText), markerFont)
	}
	line.ByteStart = wcs[0].byteStart
	line.ByteEnd = wcs[len(wcs)-1].byteEnd
	line.Clusters = make([]Cluster, len(wcs))
	var maxLH float32
	for i, c := range wcs {
		line.Clusters[i] = Cluster{ByteOffset: c.byteStart, UTF16Offset: c.utf16Start, AdvanceWidth: c.width}
		line.Width += c.width
		fid := styleFontAt(styles, c.byteStart, defaultFont)
		if h := fonts.MustLookup(fid).LineHeight; h > maxLH {
			maxLH = h
		}
	}
	if maxLH == 0 {
		maxLH = fonts.MustLookup(defaultFont).LineHeight
	}
	line.Height = maxLH
	line.Ascent = maxLH * 0.8
	if isFirst && markerText != "" {
		line.MarkerText = markerText
		line.MarkerWidth = clusterWidth(markerText, fonts.MustLookup(markerFont))
	}
	return line
}

func markerOrEmpty(isFirst bool, markerText string) string {
	if isFirst {
		return markerText
	}
	return ""
}

func emptyLine(styles document.StyleRuns, fonts *font.Registry, defaultFont font.ID, markerText string, markerFont font.ID) Line {
	fid := defaultFont
	if len(styles) > 0 {
		fid = styles[0].FontID
	}
	h := fonts.MustLookup(fid).LineHeight
	line := Line{ByteStart: 0, ByteEnd: 0, Height: h, Ascent: h * 0.8}
	if markerText != "" {
		line.MarkerText = markerText
		line.MarkerWidth = clusterWidth(markerText, fonts.MustLookup(markerFont))
	}
	return line
}

// utf16Encode returns the UTF-16 code units of s. Layout only needs
// the count to track per-cluster offsets as it walks; the encoder
// (internal/renderer/encode) is the component that owes the wire
// protocol's text_utf16_len field, and uses golang.org/x/text there.
func utf16Encode(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		if r < 0x10000 {
			out = append(out, uint16(r))
			continue
		}
		r -= 0x10000
		out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
	}
	return out
}
