package editor

import (
	"time"

	"github.com/dshills/keystorm/internal/document"
	"github.com/dshills/keystorm/internal/engine/cursor"
	"github.com/dshills/keystorm/internal/engine/history"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/layout"
)

// Editor owns one document's store, fonts, layout, and undo history,
// plus the single caret/selection that positions every command.
type Editor struct {
	cfg     layout.Config
	store   *document.Store
	fonts   *font.Registry
	layout  *layout.Engine
	history *history.History

	sel        cursor.Selection
	prefX      float32
	prefXValid bool
}

// New creates an Editor laid out against cfg, with a single empty
// paragraph and a caret at offset 0.
func New(cfg layout.Config) *Editor {
	fonts := font.New()
	store := document.New(cfg.DefaultFont)
	return &Editor{
		cfg:     cfg,
		store:   store,
		fonts:   fonts,
		layout:  layout.NewEngine(store, fonts, cfg),
		history: history.NewHistory(0),
		sel:     cursor.NewCursorSelection(0),
	}
}

// SetMaxUndo changes the undo depth. A non-positive value restores the
// history package's default.
func (e *Editor) SetMaxUndo(n int) { e.history.SetMaxEntries(n) }

// SetMergeWindow changes how long consecutive typing or deleting may
// merge into a single undo entry.
func (e *Editor) SetMergeWindow(d time.Duration) { e.history.SetMergeWindow(d) }

// applyTouch invalidates the layout for whatever the last history call
// touched, so the next geometry/pagination query relays out exactly
// the paragraphs that changed.
func (e *Editor) applyTouch() {
	ids, structural := e.history.LastTouched()
	if structural {
		e.layout.MarkStructuralChange()
	}
	if len(ids) > 0 {
		e.layout.Invalidate(ids)
	}
}

// resolve converts an absolute caret offset to its owning paragraph id
// and local offset.
func (e *Editor) resolve(abs cursor.ByteOffset) (document.ID, int64, error) {
	return e.store.ParagraphAt(abs)
}
