// Package layout implements paragraph line breaking and document
// pagination: the incremental layout engine that turns a document's
// paragraphs into a list of pages of measured lines, driven by a
// dirty set of paragraph ids rather than a full relayout on every
// edit.
//
// Layout caches are owned exclusively by Engine; a paragraph id that
// no longer resolves in the document simply drops out of the cache on
// the next relayout, so the cache never holds a dangling reference.
package layout
