// Package editor is the facade the host embeds: it wires a
// document.Store, a font.Registry, a layout.Engine, and an
// engine/history.History together behind the single caret/selection
// that is the only mutable cursor state in the system (there is no
// multi-cursor, no global document registry — one Editor owns one
// document end to end). Every mutating method returns a bool
// reporting whether the edit actually happened; a false return is a
// no-op (document boundary, empty document, collapsed selection where
// one is required) and never opens an undo entry.
package editor
