package font

import (
	"errors"
	"fmt"
	"sync"
)

// ID identifies a registered font. The zero value is never assigned by
// Register; DefaultID is reserved for the registry's synthetic default.
type ID uint32

// DefaultID is the font every document can lay out against before the
// host registers any real font.
const DefaultID ID = 0

// ASCIIWidths is the number of explicit per-code-point advance widths
// a Metrics value carries; code points at or above this use DefaultWidth.
const ASCIIWidths = 128

// ErrAlreadyRegistered is returned by Register when id has been used before.
// Registrations are monotonic: a given id is set once and never replaced.
var ErrAlreadyRegistered = errors.New("font: id already registered")

// ErrNotFound is returned by Lookup for an id that was never registered.
var ErrNotFound = errors.New("font: id not found")

// Metrics describes everything the layout engine needs to measure and
// stack text set in one font.
type Metrics struct {
	LineHeight   float32
	CharWidths   [ASCIIWidths]float32
	DefaultWidth float32
}

// WidthOf returns the advance width of code point c under these metrics.
func (m Metrics) WidthOf(c rune) float32 {
	if c >= 0 && int(c) < ASCIIWidths {
		return m.CharWidths[c]
	}
	return m.DefaultWidth
}

// defaultMetrics are the synthetic metrics installed under DefaultID so
// the core can lay out documents before the host registers real fonts.
func defaultMetrics() Metrics {
	var m Metrics
	m.LineHeight = 16.8
	m.DefaultWidth = 7.0
	for i := range m.CharWidths {
		m.CharWidths[i] = 7.0
	}
	return m
}

// Registry is a monotonic, O(1)-lookup map from font id to Metrics.
// It is safe for concurrent reads; the core calls it from a single
// thread per the editor's single-threaded contract, but registration
// may race a concurrent render build in a host-level wrapper, so the
// registry protects itself with a mutex regardless.
type Registry struct {
	mu         sync.RWMutex
	metrics    map[ID]Metrics
	defaultID  ID
	nextAuto   ID
}

// New creates a Registry pre-populated with the synthetic default font
// at DefaultID.
func New() *Registry {
	r := &Registry{
		metrics:  make(map[ID]Metrics),
		nextAuto: DefaultID + 1,
	}
	r.metrics[DefaultID] = defaultMetrics()
	r.defaultID = DefaultID
	return r
}

// Register installs metrics under id. It fails if id was already registered.
func (r *Registry) Register(id ID, m Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.metrics[id]; exists {
		return fmt.Errorf("%w: %d", ErrAlreadyRegistered, id)
	}
	r.metrics[id] = m
	if id >= r.nextAuto {
		r.nextAuto = id + 1
	}
	return nil
}

// RegisterAuto installs metrics under a fresh id the registry allocates
// itself, and returns that id. Used by SetDefaultMetrics to satisfy the
// "never replace" invariant when the host wants to change the default
// font's metrics.
func (r *Registry) RegisterAuto(m Metrics) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextAuto
	r.nextAuto++
	r.metrics[id] = m
	return id
}

// Lookup returns the metrics registered under id.
func (r *Registry) Lookup(id ID) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metrics[id]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return m, nil
}

// MustLookup returns the metrics for id, falling back to the default
// font's metrics if id is unregistered. Layout code uses this so a
// style run referencing a stale or unregistered font id degrades
// gracefully instead of failing layout.
func (r *Registry) MustLookup(id ID) Metrics {
	if m, err := r.Lookup(id); err == nil {
		return m
	}
	return r.metrics[r.DefaultFontID()]
}

// SetDefault marks id (which must already be registered) as the
// document's default font, used for bytes that carry no explicit
// style run.
func (r *Registry) SetDefault(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metrics[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.defaultID = id
	return nil
}

// DefaultFontID returns the current default font id.
func (r *Registry) DefaultFontID() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// SetDefaultMetrics registers a fresh font id with m and makes it the
// document default, honoring the "ids are never replaced" invariant.
func (r *Registry) SetDefaultMetrics(m Metrics) ID {
	id := r.RegisterAuto(m)
	r.mu.Lock()
	r.defaultID = id
	r.mu.Unlock()
	return id
}
