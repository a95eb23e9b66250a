// Package rope provides an immutable rope data structure backing each
// paragraph's text in internal/engine/buffer.
//
// A rope is a B+ tree variant where leaf nodes hold text chunks and
// internal nodes hold aggregated TextSummary metrics (byte count,
// UTF-16 code unit count) for every subtree. Operations return new
// ropes; originals are never modified, so sharing a Rope across
// goroutines for reads is always safe.
//
// internal/document.Store never lets a "\n" reach a Rope (it splits
// on newlines into separate paragraphs first), so this package carries
// no line-indexed navigation surface; TextSummary.Lines is retained
// only to feed the longest-line/first-line/last-line bookkeeping a
// paragraph's layout needs. UTF16Units is read back through
// Rope.UTF16Len and Rope.UTF16OffsetAt to answer a paragraph's UTF-16
// length and prefix length in O(log n) from the cached per-subtree
// summaries, instead of transcoding the paragraph's text on every
// query.
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r = r.Insert(5, ",")           // "hello, world"
//	r = r.Delete(0, 7)             // "world"
//	text := r.String()             // "world"
package rope
