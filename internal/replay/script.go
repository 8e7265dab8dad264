package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Kind names what a step feeds to the engine.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
	KindTitle  Kind = "title"
	KindResize Kind = "resize"
)

// maxLine bounds a single step; process output chunks are read in 32 KiB
// pieces so this leaves room for escaping.
const maxLine = 1 << 20

// Step is one line of a session script.
//
// Data is a JSON string, so bytes that are not valid UTF-8 are replaced
// with U+FFFD when a recording is written.
type Step struct {
	AtMs int64  `json:"at_ms"`
	Kind Kind   `json:"kind"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// At is the step's offset from the start of the session.
func (s Step) At() time.Duration { return time.Duration(s.AtMs) * time.Millisecond }

func (s Step) validate() error {
	switch s.Kind {
	case KindInput, KindOutput, KindTitle:
	case KindResize:
		if s.Cols <= 0 || s.Rows <= 0 {
			return fmt.Errorf("resize needs positive cols and rows, got %dx%d", s.Cols, s.Rows)
		}
	default:
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	if s.AtMs < 0 {
		return fmt.Errorf("negative offset %d", s.AtMs)
	}
	return nil
}

// Read parses a session script: one JSON step per line. Blank lines and
// lines starting with # are skipped. Offsets must not go backwards.
func Read(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var steps []Step
	var last int64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var step Step
		if err := json.Unmarshal([]byte(line), &step); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if step.AtMs < last {
			return nil, fmt.Errorf("line %d: offset %dms before previous step at %dms", lineNo, step.AtMs, last)
		}
		last = step.AtMs
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

// Load reads the session script at path.
func Load(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	steps, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}
