package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Typeahead configures local echo.
type Typeahead struct {
	// Style is bold, dim, italic, underlined, inverted or a #rrggbb color.
	Style string
	// ThresholdMs is the latency above which predictions are shown. 0 always
	// shows them and a negative value turns them off.
	ThresholdMs int
	// ExcludePrograms are title substrings for which predictions are hidden.
	ExcludePrograms []string
}

// DefaultTypeahead returns the default typeahead settings.
func DefaultTypeahead() Typeahead {
	return Typeahead{
		Style:           "dim",
		ThresholdMs:     30,
		ExcludePrograms: []string{"vim", "vi", "nano", "tmux"},
	}
}

// Threshold returns ThresholdMs as a duration.
func (t Typeahead) Threshold() time.Duration {
	return time.Duration(t.ThresholdMs) * time.Millisecond
}

// ExcludePattern compiles ExcludePrograms into one case-insensitive pattern
// matching any of them as a word. It returns nil when the list is empty.
func (t Typeahead) ExcludePattern() *regexp.Regexp {
	var parts []string
	for _, p := range t.ExcludePrograms {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, regexp.QuoteMeta(p))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}

func saveTypeahead(path string, settings Typeahead) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	payload := map[string]any{}
	if existing, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(existing, &payload)
	}

	section, ok := payload["typeahead"].(map[string]any)
	if !ok || section == nil {
		section = map[string]any{}
	}
	section["style"] = settings.Style
	section["threshold_ms"] = settings.ThresholdMs
	section["exclude_programs"] = settings.ExcludePrograms
	payload["typeahead"] = section

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
