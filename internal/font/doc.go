// Package font provides the registry mapping font identifiers to the
// metrics the layout engine needs to measure text: line height and
// per-code-point advance widths.
//
// Metrics are registered once per id and never replaced; a host that
// changes a font's metrics must register a new id rather than mutate
// an existing one, so that cached layouts keyed by font id never go
// stale retroactively.
package font
