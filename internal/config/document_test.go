package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDocumentSettingsMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadDocumentSettings(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadDocumentSettings: %v", err)
	}
	want := DefaultDocumentSettings()
	if s != want {
		t.Errorf("got %+v, want defaults %+v", s, want)
	}
}

func TestLoadDocumentSettingsFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "document.toml")
	toml := `
page_width = 600
page_height = 800
max_undo_entries = 50
merge_window = "500ms"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadDocumentSettings(path)
	if err != nil {
		t.Fatalf("LoadDocumentSettings: %v", err)
	}
	if s.PageWidth != 600 || s.PageHeight != 800 {
		t.Errorf("page size = %vx%v, want 600x800", s.PageWidth, s.PageHeight)
	}
	if s.MaxUndoEntries != 50 {
		t.Errorf("MaxUndoEntries = %d, want 50", s.MaxUndoEntries)
	}
	if s.ParsedMergeWindow().String() != "500ms" {
		t.Errorf("ParsedMergeWindow = %v, want 500ms", s.ParsedMergeWindow())
	}
	// Fields absent from the file keep their defaults.
	if s.MarginTop != DefaultDocumentSettings().MarginTop {
		t.Errorf("MarginTop = %v, want default %v", s.MarginTop, DefaultDocumentSettings().MarginTop)
	}
}

func TestLoadDocumentSettingsEnvOverride(t *testing.T) {
	t.Setenv("KEYSTORM_PAGE_WIDTH", "1000")
	t.Setenv("KEYSTORM_MAX_UNDO_ENTRIES", "7")

	s, err := LoadDocumentSettings("")
	if err != nil {
		t.Fatalf("LoadDocumentSettings: %v", err)
	}
	if s.PageWidth != 1000 {
		t.Errorf("PageWidth = %v, want 1000 from env override", s.PageWidth)
	}
	if s.MaxUndoEntries != 7 {
		t.Errorf("MaxUndoEntries = %d, want 7 from env override", s.MaxUndoEntries)
	}
}

func TestDocumentSettingsNewEditorUsesConfiguredGeometry(t *testing.T) {
	s := DefaultDocumentSettings()
	s.PageWidth = 500
	s.PageHeight = 700

	e := s.NewEditor()
	if e.PageWidth() != 500 || e.PageHeight() != 700 {
		t.Errorf("editor page size = %vx%v, want 500x700", e.PageWidth(), e.PageHeight())
	}
}

func TestParsedMergeWindowFallsBackOnInvalidValue(t *testing.T) {
	s := DefaultDocumentSettings()
	s.MergeWindow = "not-a-duration"
	if got := s.ParsedMergeWindow(); got.String() != "300ms" {
		t.Errorf("ParsedMergeWindow = %v, want fallback 300ms", got)
	}
}
