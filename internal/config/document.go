package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/layout"
)

// DocumentSettings holds the paginated document core's layout and undo
// configuration: page geometry, the default font's metrics, and how the
// undo stack batches consecutive edits. These fields map straight onto
// layout.Config and editor.Editor construction, so they are loaded by
// a direct struct unmarshal over the defaults.
type DocumentSettings struct {
	PageWidth    float32 `toml:"page_width"`
	PageHeight   float32 `toml:"page_height"`
	MarginTop    float32 `toml:"margin_top"`
	MarginBottom float32 `toml:"margin_bottom"`
	MarginLeft   float32 `toml:"margin_left"`
	MarginRight  float32 `toml:"margin_right"`

	// DefaultLineHeight and DefaultCharWidth describe the monospace
	// metrics NewEditor installs as the document's default font. Real
	// fonts are registered by the host at runtime through
	// editor.Editor.RegisterFont; these two fields only seed the
	// document's starting measurements.
	DefaultLineHeight float32 `toml:"default_line_height"`
	DefaultCharWidth  float32 `toml:"default_char_width"`

	// MaxUndoEntries bounds the undo stack depth; zero keeps the
	// history package's own default.
	MaxUndoEntries int `toml:"max_undo_entries"`

	// MergeWindow is how long consecutive typing or deleting commands
	// may merge into a single undo entry, as a Go duration string
	// ("300ms").
	MergeWindow string `toml:"merge_window"`
}

// DefaultDocumentSettings mirrors layout.DefaultConfig and the
// history package's built-in merge window, so a host that loads no
// file and sets no environment variables gets the same geometry the
// core would use standalone.
func DefaultDocumentSettings() DocumentSettings {
	lc := layout.DefaultConfig()
	return DocumentSettings{
		PageWidth:         lc.PageWidth,
		PageHeight:        lc.PageHeight,
		MarginTop:         lc.MarginTop,
		MarginBottom:      lc.MarginBottom,
		MarginLeft:        lc.MarginLeft,
		MarginRight:       lc.MarginRight,
		DefaultLineHeight: 16.8,
		DefaultCharWidth:  7.0,
		MaxUndoEntries:    0,
		MergeWindow:       "500ms",
	}
}

// LoadDocumentSettings reads path as TOML over top of
// DefaultDocumentSettings, then applies KEYSTORM_-prefixed environment
// variable overrides. A missing file is not an error: the defaults
// (plus any environment overrides) are returned as-is.
func LoadDocumentSettings(path string) (DocumentSettings, error) {
	settings := DefaultDocumentSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return DocumentSettings{}, fmt.Errorf("reading document settings %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &settings); err != nil {
			return DocumentSettings{}, fmt.Errorf("parsing document settings %s: %w", path, err)
		}
	}

	applyDocumentSettingsEnv(&settings)
	return settings, nil
}

func applyDocumentSettingsEnv(s *DocumentSettings) {
	overrideFloat32(&s.PageWidth, "KEYSTORM_PAGE_WIDTH")
	overrideFloat32(&s.PageHeight, "KEYSTORM_PAGE_HEIGHT")
	overrideFloat32(&s.MarginTop, "KEYSTORM_MARGIN_TOP")
	overrideFloat32(&s.MarginBottom, "KEYSTORM_MARGIN_BOTTOM")
	overrideFloat32(&s.MarginLeft, "KEYSTORM_MARGIN_LEFT")
	overrideFloat32(&s.MarginRight, "KEYSTORM_MARGIN_RIGHT")
	overrideFloat32(&s.DefaultLineHeight, "KEYSTORM_DEFAULT_LINE_HEIGHT")
	overrideFloat32(&s.DefaultCharWidth, "KEYSTORM_DEFAULT_CHAR_WIDTH")
	overrideInt(&s.MaxUndoEntries, "KEYSTORM_MAX_UNDO_ENTRIES")
	if v, ok := os.LookupEnv("KEYSTORM_MERGE_WINDOW"); ok {
		s.MergeWindow = v
	}
}

func overrideFloat32(dst *float32, envVar string) {
	v, ok := os.LookupEnv(envVar)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return
	}
	*dst = float32(f)
}

func overrideInt(dst *int, envVar string) {
	v, ok := os.LookupEnv(envVar)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

// LayoutConfig converts these settings into a layout.Config, keeping
// layout.DefaultRules() and the layout package's fixed ListIndentWidth:
// neither is exposed as a configurable setting.
func (s DocumentSettings) LayoutConfig() layout.Config {
	return layout.Config{
		PageWidth:    s.PageWidth,
		PageHeight:   s.PageHeight,
		MarginTop:    s.MarginTop,
		MarginBottom: s.MarginBottom,
		MarginLeft:   s.MarginLeft,
		MarginRight:  s.MarginRight,
		DefaultFont:  font.DefaultID,
		Rules:        layout.DefaultRules(),
	}
}

// DefaultFontMetrics builds a font.Metrics from DefaultLineHeight and
// DefaultCharWidth: a uniform advance width across the ASCII table, the
// same metrics NewEditor installs as the default font.
func (s DocumentSettings) DefaultFontMetrics() font.Metrics {
	var m font.Metrics
	m.LineHeight = s.DefaultLineHeight
	m.DefaultWidth = s.DefaultCharWidth
	for i := range m.CharWidths {
		m.CharWidths[i] = s.DefaultCharWidth
	}
	return m
}

// ParsedMergeWindow parses MergeWindow, falling back to 300ms for an
// empty or malformed value rather than failing settings load over one
// cosmetic field.
func (s DocumentSettings) ParsedMergeWindow() time.Duration {
	d, err := time.ParseDuration(s.MergeWindow)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// NewEditor builds an editor.Editor from these settings: layout
// geometry, the seeded default font metrics (as a freshly registered
// default font, honoring font.Registry's never-replace invariant),
// undo depth, and merge window.
func (s DocumentSettings) NewEditor() *editor.Editor {
	e := editor.New(s.LayoutConfig())

	var charWidths [font.ASCIIWidths]float32
	for i := range charWidths {
		charWidths[i] = s.DefaultCharWidth
	}
	e.SetFontMetrics(s.DefaultLineHeight, charWidths, s.DefaultCharWidth)

	e.SetMaxUndo(s.MaxUndoEntries)
	e.SetMergeWindow(s.ParsedMergeWindow())
	return e
}
