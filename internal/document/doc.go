// Package document implements the rope-backed paragraph store: an
// ordered sequence of paragraphs, each with its own text rope and
// style runs, addressed by stable id and by a document-wide byte
// offset that the Store resolves through a paragraph index.
//
// The store never interprets layout or undo; it reports which
// paragraphs an edit touched (EditResult) and lets the caller
// (internal/editor) drive invalidation and transaction bookkeeping.
package document
