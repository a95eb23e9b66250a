package layout

// Cluster is the measurement of a single grapheme cluster within a line.
type Cluster struct {
	ByteOffset   int64 // offset within the paragraph
	UTF16Offset  int   // UTF-16 code-unit offset from the start of the paragraph
	AdvanceWidth float32
}

// Line is one laid-out line of a paragraph.
type Line struct {
	ByteStart, ByteEnd int64 // [start,end) within the paragraph's text
	Clusters           []Cluster
	Ascent             float32
	Height             float32
	Width              float32
	MarkerText         string
	MarkerWidth        float32
}

// ByteLen returns the number of bytes the line covers.
func (l Line) ByteLen() int64 { return l.ByteEnd - l.ByteStart }

// ParagraphLayout is the cached line-broken layout of one paragraph.
type ParagraphLayout struct {
	Lines       []Line
	TotalHeight float32
}
