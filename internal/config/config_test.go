package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	if cfg.Paths == nil {
		t.Fatal("DefaultConfig() returned nil Paths")
	}
	if cfg.Typeahead.Style == "" {
		t.Fatal("DefaultConfig() returned empty style")
	}
	if len(cfg.Typeahead.ExcludePrograms) == 0 {
		t.Fatal("DefaultConfig() should exclude full-screen programs")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.Typeahead, DefaultTypeahead()) {
		t.Fatalf("settings = %+v, want defaults", cfg.Typeahead)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"typeahead": {"style": "italic", "threshold_ms": 0, "exclude_programs": ["less"]}, "other": 1}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	want := Typeahead{Style: "italic", ThresholdMs: 0, ExcludePrograms: []string{"less"}}
	if !reflect.DeepEqual(cfg.Typeahead, want) {
		t.Fatalf("settings = %+v, want %+v", cfg.Typeahead, want)
	}
}

func TestLoadFromPartialSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"typeahead": {"threshold_ms": -1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Typeahead.ThresholdMs != -1 {
		t.Errorf("threshold = %d, want -1", cfg.Typeahead.ThresholdMs)
	}
	if cfg.Typeahead.Style != DefaultTypeahead().Style {
		t.Errorf("style = %q, want default", cfg.Typeahead.Style)
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"typeahead":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() should fail on invalid JSON")
	}
}

func TestSaveKeepsOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"theme": "dark"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Paths: PathsAt(filepath.Dir(path)), Typeahead: DefaultTypeahead()}
	cfg.Typeahead.Style = "#ff8800"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Typeahead.Style != "#ff8800" {
		t.Fatalf("style = %q, want #ff8800", loaded.Typeahead.Style)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"theme"`) {
		t.Fatalf("other sections were dropped: %s", raw)
	}
}

func TestExcludePattern(t *testing.T) {
	re := Typeahead{ExcludePrograms: []string{"vim", "a.b"}}.ExcludePattern()
	if re == nil {
		t.Fatal("pattern should not be nil")
	}
	for _, title := range []string{"vim main.go", "VIM", "x a.b y"} {
		if !re.MatchString(title) {
			t.Errorf("%q should match", title)
		}
	}
	for _, title := range []string{"vimrc-editor", "axb", "zsh"} {
		if re.MatchString(title) {
			t.Errorf("%q should not match", title)
		}
	}
	if (Typeahead{}).ExcludePattern() != nil {
		t.Error("empty list should yield nil pattern")
	}
}

func TestPathsEnsureDirectories(t *testing.T) {
	paths := PathsAt(filepath.Join(t.TempDir(), "typeahead"))
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}
	for _, dir := range []string{paths.Home, paths.LogDir, paths.ReplayDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}
	if filepath.Base(paths.ConfigPath) != "config.json" {
		t.Fatalf("ConfigPath = %s", paths.ConfigPath)
	}
}
