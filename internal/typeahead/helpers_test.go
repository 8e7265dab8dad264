package typeahead

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/andyrewlee/typeahead/internal/config"
)

const testCSI = "\x1b["

// fakeTerm is a view with fixed line contents. A '|' in one of the lines
// marks the cursor.
type fakeTerm struct {
	lines   []string
	cols    int
	rows    int
	x, y    int
	alt     bool
	written strings.Builder
}

func newFakeTerm(lines ...string) *fakeTerm {
	t := &fakeTerm{cols: 80, rows: 5}
	for i, line := range lines {
		if idx := strings.IndexByte(line, '|'); idx >= 0 {
			t.x, t.y = idx, i
			lines[i] = line[:idx] + line[idx+1:]
		}
	}
	t.lines = lines
	return t
}

func (f *fakeTerm) Size() (int, int)        { return f.cols, f.rows }
func (f *fakeTerm) Cursor() (int, int, int) { return f.x, f.y, 0 }
func (f *fakeTerm) AltScreen() bool         { return f.alt }
func (f *fakeTerm) WriteString(s string) (int, error) {
	f.written.WriteString(s)
	return len(s), nil
}

func (f *fakeTerm) Cell(row, col int) (Cell, bool) {
	var line string
	if row >= 0 && row < len(f.lines) {
		line = f.lines[row]
	}
	if col < 0 || col >= f.cols {
		return Cell{}, false
	}
	c := Cell{Width: 1}
	if col < len(line) {
		c.Chars = line[col : col+1]
	}
	return c, true
}

func (f *fakeTerm) expectWritten(t *testing.T, want string) {
	t.Helper()
	if got := f.written.String(); got != want {
		t.Fatalf("written = %s, want %s", strconv.Quote(got), strconv.Quote(want))
	}
	f.written.Reset()
}

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1700000000, 0)} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestEngine predicts with an italic highlight and always shows
// predictions.
func newTestEngine(t *testing.T, term *fakeTerm) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	e := NewEngine(Options{
		Terminal:  term,
		Config:    config.Typeahead{Style: StyleItalic, ThresholdMs: 0},
		Telemetry: TelemetryFunc(func(LatencyStats, float64) {}),
		Clock:     clock.Now,
	})
	e.Activate()
	t.Cleanup(e.Close)
	return e, clock
}

func expectProcessed(t *testing.T, e *Engine, input, want string) {
	t.Helper()
	if got := e.BeforeProcessData(input); got != want {
		t.Fatalf("BeforeProcessData(%s) = %s, want %s",
			strconv.Quote(input), strconv.Quote(got), strconv.Quote(want))
	}
}

func wrapped(parts ...string) string {
	return testCSI + "?25l" + strings.Join(parts, "") + testCSI + "?25h"
}
