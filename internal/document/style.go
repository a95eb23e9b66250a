package document

import "github.com/dshills/keystorm/internal/font"

// StyleRun is a contiguous byte range within a paragraph sharing a
// single font id. Runs cover a paragraph's text contiguously, without
// gaps, and are normalized after every edit.
type StyleRun struct {
	ByteStart int64
	ByteLen   int64
	FontID    font.ID
}

// End returns the exclusive end offset of the run.
func (r StyleRun) End() int64 { return r.ByteStart + r.ByteLen }

// StyleRuns is a normalized, gap-free, contiguous cover of a
// paragraph's byte range by font id.
type StyleRuns []StyleRun

// singleRun returns the normalized cover of [0, length) with fontID.
func singleRun(length int64, fontID font.ID) StyleRuns {
	if length <= 0 {
		return StyleRuns{}
	}
	return StyleRuns{{ByteStart: 0, ByteLen: length, FontID: fontID}}
}

// normalize merges adjacent runs sharing a font id and drops
// zero-length runs, in place over a copy of runs.
func normalize(runs StyleRuns) StyleRuns {
	out := make(StyleRuns, 0, len(runs))
	for _, r := range runs {
		if r.ByteLen <= 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].FontID == r.FontID && out[n-1].End() == r.ByteStart {
			out[n-1].ByteLen += r.ByteLen
			continue
		}
		out = append(out, r)
	}
	return out
}

// fontAt returns the font id covering byte offset at. When at falls
// exactly on the boundary between two runs, the preceding run's font
// is returned (the "extend preceding run on boundary insertion"
// policy from the store's insert rules). defaultFont is returned if
// runs is empty or at is before the first run.
func fontAt(runs StyleRuns, at int64, defaultFont font.ID) font.ID {
	if len(runs) == 0 {
		return defaultFont
	}
	for _, r := range runs {
		if at < r.ByteStart {
			return defaultFont
		}
		if at < r.End() {
			return r.FontID
		}
		if at == r.End() {
			// Boundary: prefer this (preceding) run over whatever comes next.
			return r.FontID
		}
	}
	return runs[len(runs)-1].FontID
}

// insertSpan returns runs with a span of length insLen inserted at
// byte offset at, taking the font id that covers at under the
// boundary-extension policy.
func insertSpan(runs StyleRuns, at, insLen int64, defaultFont font.ID) StyleRuns {
	if insLen <= 0 {
		return runs
	}
	if len(runs) == 0 {
		return singleRun(insLen, defaultFont)
	}
	fid := fontAt(runs, at, defaultFont)
	out := make(StyleRuns, 0, len(runs)+1)
	inserted := false
	for _, r := range runs {
		switch {
		case r.End() <= at:
			out = append(out, r)
		case r.ByteStart >= at:
			if !inserted {
				out = append(out, StyleRun{ByteStart: at, ByteLen: insLen, FontID: fid})
				inserted = true
			}
			out = append(out, StyleRun{ByteStart: r.ByteStart + insLen, ByteLen: r.ByteLen, FontID: r.FontID})
		default: // r.ByteStart < at < r.End()
			out = append(out, StyleRun{ByteStart: r.ByteStart, ByteLen: at - r.ByteStart, FontID: r.FontID})
			out = append(out, StyleRun{ByteStart: at, ByteLen: insLen, FontID: fid})
			inserted = true
			out = append(out, StyleRun{ByteStart: at + insLen, ByteLen: r.End() - at, FontID: r.FontID})
		}
	}
	if !inserted {
		out = append(out, StyleRun{ByteStart: at, ByteLen: insLen, FontID: fid})
	}
	return normalize(out)
}

// deleteSpan removes [start, end) from the covered byte range,
// shifting everything after end left by (end-start).
func deleteSpan(runs StyleRuns, start, end int64) StyleRuns {
	if end <= start {
		return runs
	}
	delta := end - start
	out := make(StyleRuns, 0, len(runs))
	for _, r := range runs {
		switch {
		case r.End() <= start:
			out = append(out, r)
		case r.ByteStart >= end:
			out = append(out, StyleRun{ByteStart: r.ByteStart - delta, ByteLen: r.ByteLen, FontID: r.FontID})
		default:
			newStart := r.ByteStart
			newEnd := r.End()
			if newStart < start {
				newStart = start
			}
			if newEnd > end {
				newEnd = end
			}
			// The portion of r inside [start,end) is removed; keep
			// whatever survives outside that window, remapped.
			if r.ByteStart < start {
				out = append(out, StyleRun{ByteStart: r.ByteStart, ByteLen: start - r.ByteStart, FontID: r.FontID})
			}
			if r.End() > end {
				out = append(out, StyleRun{ByteStart: start, ByteLen: r.End() - end, FontID: r.FontID})
			}
		}
	}
	return normalize(out)
}

// formatRange overwrites the font id of [start, end) with fontID,
// splitting any runs that straddle the boundaries.
func formatRange(runs StyleRuns, start, end int64, fontID font.ID) StyleRuns {
	if end <= start {
		return runs
	}
	out := make(StyleRuns, 0, len(runs)+2)
	placed := false
	for _, r := range runs {
		switch {
		case r.End() <= start || r.ByteStart >= end:
			out = append(out, r)
		default:
			if r.ByteStart < start {
				out = append(out, StyleRun{ByteStart: r.ByteStart, ByteLen: start - r.ByteStart, FontID: r.FontID})
			}
			if !placed {
				out = append(out, StyleRun{ByteStart: start, ByteLen: end - start, FontID: fontID})
				placed = true
			}
			if r.End() > end {
				out = append(out, StyleRun{ByteStart: end, ByteLen: r.End() - end, FontID: r.FontID})
			}
		}
	}
	if !placed {
		out = append(out, StyleRun{ByteStart: start, ByteLen: end - start, FontID: fontID})
	}
	// out may be unsorted if the loop above inserted the new run
	// before trailing untouched runs; normalize sorts by merging only
	// adjacent entries, so sort first.
	sortRuns(out)
	return normalize(out)
}

func sortRuns(runs StyleRuns) {
	for i := 1; i < len(runs); i++ {
		for j := i; j > 0 && runs[j-1].ByteStart > runs[j].ByteStart; j-- {
			runs[j-1], runs[j] = runs[j], runs[j-1]
		}
	}
}

// slice returns the sub-cover of [start, end) shifted to local
// coordinates starting at 0.
func slice(runs StyleRuns, start, end int64) StyleRuns {
	if end <= start {
		return StyleRuns{}
	}
	out := make(StyleRuns, 0, len(runs))
	for _, r := range runs {
		lo, hi := r.ByteStart, r.End()
		if hi <= start || lo >= end {
			continue
		}
		if lo < start {
			lo = start
		}
		if hi > end {
			hi = end
		}
		out = append(out, StyleRun{ByteStart: lo - start, ByteLen: hi - lo, FontID: r.FontID})
	}
	return normalize(out)
}

// concat appends b (already in its own local coordinates) after a,
// shifting b by a's total covered length.
func concat(a, b StyleRuns, aLen int64) StyleRuns {
	out := make(StyleRuns, 0, len(a)+len(b))
	out = append(out, a...)
	for _, r := range b {
		out = append(out, StyleRun{ByteStart: r.ByteStart + aLen, ByteLen: r.ByteLen, FontID: r.FontID})
	}
	return normalize(out)
}
