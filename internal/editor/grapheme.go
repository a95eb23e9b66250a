package editor

import "github.com/rivo/uniseg"

// clusterBefore returns the byte length of the grapheme cluster ending
// at offset in text, or 0 at the start of text. offset must already be
// a cluster boundary (every caret position the editor produces is),
// so walking the prefix up to offset always ends exactly on one.
func clusterBefore(text string, offset int64) int {
	if offset <= 0 {
		return 0
	}
	prefix := text[:offset]
	gr := uniseg.NewGraphemes(prefix)
	lastLen := 0
	for gr.Next() {
		start, end := gr.Positions()
		lastLen = end - start
	}
	return lastLen
}

// clusterAfter returns the byte length of the grapheme cluster
// starting at offset in text, or 0 at the end of text.
func clusterAfter(text string, offset int64) int {
	if int(offset) >= len(text) {
		return 0
	}
	gr := uniseg.NewGraphemes(text[offset:])
	if !gr.Next() {
		return 0
	}
	start, end := gr.Positions()
	return end - start
}
