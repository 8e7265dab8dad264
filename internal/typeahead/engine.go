package typeahead

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/andyrewlee/typeahead/internal/attr"
	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/logging"
	"github.com/andyrewlee/typeahead/internal/sgr"
)

const (
	// samples needed before latency decides whether predictions are shown
	statsRequiredSampleSize = 5
	statsMinAccuracyToShow  = 0.3
	// predictions hide once latency drops below threshold divided by this
	statsToggleOffThreshold = 0.5

	minClearTimeout   = 500 * time.Millisecond
	telemetryInterval = 5 * time.Minute

	maxPromptTail = 256
)

var (
	// arrow keys in normal and application mode, with ctrl/alt word moves
	csiMoveRe = regexp.MustCompile(`^\x1b\[?([0-9]*)(;[35])?O?([DC])`)
	// matched against the last line of process output
	passwordPromptRe = regexp.MustCompile(`(?i)(password|passphrase|passwd|pin).*:\s*$`)
)

// Options configures an Engine.
type Options struct {
	// Terminal is the view the user sees.
	Terminal Terminal
	// Process receives keystrokes after they have been predicted. Only Run
	// writes to it.
	Process io.Writer
	Config  config.Typeahead
	// Telemetry defaults to perf counters.
	Telemetry Telemetry
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// lineBounds records where the user typed on the cursor's current row, so
// edits into the prompt are only ever tentative.
type lineBounds struct {
	y         int
	startingX int
	endingX   int
}

// Engine predicts the echo of keystrokes on a slow connection and reconciles
// the predictions with what the process actually prints.
type Engine struct {
	term      Terminal
	process   io.Writer
	telemetry Telemetry
	now       func() time.Time

	settings  config.Typeahead
	excludeRe *regexp.Regexp
	title     string

	style    *Style
	timeline *Timeline
	stats    *Stats
	pen      attr.State

	lastRow  *lineBounds
	password bool
	// stripped text after the last line break, carried across chunks
	promptTail string

	clearAt       time.Time
	lastTelemetry time.Time

	// stats changed; re-evaluated on the next Tick
	statsDirty bool

	active bool
	unsubs []func()
}

// NewEngine creates an inactive engine. Call Activate before feeding it.
func NewEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Telemetry == nil {
		opts.Telemetry = PerfTelemetry{}
	}
	e := &Engine{
		term:      opts.Terminal,
		process:   opts.Process,
		telemetry: opts.Telemetry,
		now:       opts.Clock,
		pen:       attr.New(),
	}
	e.applySettings(opts.Config)
	return e
}

// Activate attaches the engine to its terminal.
func (e *Engine) Activate() {
	if e.active {
		return
	}
	e.active = true
	e.timeline = NewTimeline(e.term, e.style, e.Pen)
	e.stats = NewStats(e.timeline, e.now)
	e.lastTelemetry = e.now()
	e.unsubs = []func(){
		e.stats.OnChange(func() { e.statsDirty = true }),
		e.timeline.OnPredictionFailed(func(p Prediction) {
			if pos, ok := PositionOf(p); ok {
				logging.Debug("typeahead: %s prediction failed at %d,%d", p.Kind(), pos.X, pos.Y)
				return
			}
			logging.Debug("typeahead: %s prediction failed", p.Kind())
		}),
	}
	e.reevaluate()
}

// Close rolls back anything still rendered and detaches from the timeline.
func (e *Engine) Close() {
	if !e.active {
		return
	}
	e.active = false
	// hiding also writes output held back mid-escape
	e.timeline.SetShowPredictions(false)
	e.timeline.UndoAllPredictions()
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
	e.stats.Close()
	e.clearAt = time.Time{}
}

// Stats returns the prediction statistics, nil before Activate.
func (e *Engine) Stats() *Stats { return e.stats }

// Timeline returns the prediction queue, nil before Activate.
func (e *Engine) Timeline() *Timeline { return e.timeline }

// Pen returns the attributes the process last selected.
func (e *Engine) Pen() attr.State { return e.pen }

// Settings returns the active configuration.
func (e *Engine) Settings() config.Typeahead { return e.settings }

// ConfigChanged applies new settings.
func (e *Engine) ConfigChanged(settings config.Typeahead) {
	e.applySettings(settings)
	if e.active {
		e.reevaluate()
	}
}

func (e *Engine) applySettings(settings config.Typeahead) {
	e.settings = settings
	e.excludeRe = settings.ExcludePattern()
	if e.style == nil {
		e.style = NewStyle(settings.Style)
	} else {
		e.style.Update(settings.Style)
	}
}

// TitleChanged records the terminal title; excluded programs hide predictions.
func (e *Engine) TitleChanged(title string) {
	e.title = title
	if e.active {
		e.reevaluate()
	}
}

// Resize must be called after the view changed size.
func (e *Engine) Resize() {
	if !e.active {
		return
	}
	e.timeline.SetShowPredictions(false)
	e.timeline.ClearCursor()
	e.reevaluate()
}

// HandleInput predicts the effect of keystrokes the user typed. It does not
// forward them to the process.
func (e *Engine) HandleInput(data string) {
	if !e.active || e.password || e.timeline.Disabled() || e.term.AltScreen() {
		return
	}
	if e.pagerPrompt() {
		return
	}

	x, y, baseY := e.term.Cursor()
	row := y + baseY
	if e.lastRow == nil || e.lastRow.y != row {
		e.lastRow = &lineBounds{y: row, startingX: x, endingX: x}
	} else {
		e.lastRow.startingX = min(e.lastRow.startingX, x)
		e.lastRow.endingX = max(e.lastRow.endingX, e.timeline.PhysicalCursor().X())
	}

	if e.timeline.Len() == 0 {
		e.style.Track(e.pen)
	}

	cols, rows := e.term.Size()
	r := newReader(data)
	for r.remaining() > 0 {
		if r.eatChar(0x7f) {
			e.addBackspace()
			continue
		}

		if c, ok := e.eatPrintable(r); ok {
			e.timeline.AddPrediction(NewCharacterPrediction(e.style, c))
			if e.timeline.TentativeCursor().X() >= cols {
				e.timeline.AddTentative(NewLinewrapPrediction())
			}
			continue
		}

		if m := r.eatRe(csiMoveRe); m != nil {
			amount, _ := strconv.Atoi(m[1])
			dir := DirectionForwards
			if m[3] == "D" {
				dir = DirectionBack
			}
			p := NewCursorMovePrediction(dir, m[2] != "", amount)
			if dir == DirectionBack {
				e.addLeftNavigating(p)
			} else {
				e.addRightNavigating(p)
			}
			continue
		}

		if r.eatStr("\x1bf") {
			e.addRightNavigating(NewCursorMovePrediction(DirectionForwards, true, 1))
			continue
		}
		if r.eatStr("\x1bb") {
			e.addLeftNavigating(NewCursorMovePrediction(DirectionBack, true, 1))
			continue
		}

		if r.eatChar('\r') && y < rows-1 {
			e.timeline.AddPrediction(NewNewlinePrediction())
			continue
		}

		// anything else has effects we cannot guess
		e.timeline.AddTentative(NewHardBoundary())
		break
	}

	if e.timeline.Len() > 0 && e.clearAt.IsZero() {
		e.deferClearing()
	}
}

func (e *Engine) addBackspace() {
	if _, ok := e.timeline.PeekEnd().(*CharacterPrediction); ok {
		e.timeline.AddBoundary()
	}
	p := NewBackspacePrediction(e.Pen)
	if e.timeline.TentativeCursor().X() <= e.lastRow.startingX {
		e.timeline.AddTentative(p)
		return
	}
	// backspacing shortens how far right the user can go
	e.lastRow.endingX--
	e.timeline.AddPrediction(p)
}

func (e *Engine) addLeftNavigating(p Prediction) {
	if e.timeline.TentativeCursor().X() <= e.lastRow.startingX {
		e.timeline.AddTentative(p)
		return
	}
	e.timeline.AddPrediction(p)
}

func (e *Engine) addRightNavigating(p Prediction) {
	if e.timeline.TentativeCursor().X() >= e.lastRow.endingX-1 {
		e.timeline.AddTentative(p)
		return
	}
	e.timeline.AddPrediction(p)
}

// eatPrintable consumes one printable character that occupies a single cell.
// Wide and zero-width runes are left for the hard boundary.
func (e *Engine) eatPrintable(r *reader) (string, bool) {
	if c, ok := r.eatRange(0x20, 0x7e); ok {
		return string(c), true
	}
	rest := r.rest()
	ch, size := utf8.DecodeRuneInString(rest)
	if ch < 0xa0 || ch == utf8.RuneError || runewidth.RuneWidth(ch) != 1 {
		return "", false
	}
	r.index += size
	return rest[:size], true
}

// pagerPrompt detects less and git log style pagers, which use the normal
// buffer but do not echo input.
func (e *Engine) pagerPrompt() bool {
	_, rows := e.term.Size()
	x, y, baseY := e.term.Cursor()
	if x != 1 || y != rows-1 {
		return false
	}
	cell, ok := e.term.Cell(y+baseY, 0)
	return ok && cell.Chars == ":"
}

// BeforeProcessData reconciles a chunk of process output with pending
// predictions and returns what the view should receive.
func (e *Engine) BeforeProcessData(data string) string {
	if !e.active {
		return data
	}
	sgr.Scan(data, func(params sgr.Params) { sgr.Apply(&e.pen, params) })

	out := e.timeline.BeforeServerInput(data)
	e.trackPassword(data)
	e.deferClearing()
	return out
}

func (e *Engine) trackPassword(data string) {
	if e.password && strings.ContainsAny(data, "\r\n") {
		e.password = false
	}
	// a prompt may arrive in pieces
	text := e.promptTail + ansi.Strip(data)
	if i := strings.LastIndexAny(text, "\r\n"); i >= 0 {
		text = text[i+1:]
	}
	if len(text) > maxPromptTail {
		text = text[len(text)-maxPromptTail:]
	}
	e.promptTail = text
	if text != "" && passwordPromptRe.MatchString(text) {
		if !e.password {
			logging.Debug("typeahead: password prompt, pausing predictions")
		}
		e.password = true
		e.timeline.UndoAllPredictions()
	}
}

// deferClearing rearms the timeout after which unconfirmed predictions are
// undone.
func (e *Engine) deferClearing() {
	if e.timeline.Len() == 0 {
		e.clearAt = time.Time{}
		return
	}
	timeout := e.stats.MaxLatency() * 3 / 2
	if timeout < minClearTimeout {
		timeout = minClearTimeout
	}
	e.clearAt = e.now().Add(timeout)
}

// Tick fires the clear timeout and periodic telemetry.
func (e *Engine) Tick(now time.Time) {
	if !e.active {
		return
	}
	if e.statsDirty {
		e.statsDirty = false
		e.reevaluate()
	}
	if !e.clearAt.IsZero() && !now.Before(e.clearAt) {
		e.clearAt = time.Time{}
		if e.timeline.Len() > 0 {
			logging.Debug("typeahead: %d predictions timed out", e.timeline.Len())
			e.timeline.UndoAllPredictions()
		}
	}
	if now.Sub(e.lastTelemetry) >= telemetryInterval {
		e.lastTelemetry = now
		if e.stats.SampleSize() > 0 {
			e.telemetry.PublishLatency(e.stats.Latency(), e.stats.Accuracy())
		}
	}
}

func (e *Engine) reevaluate() {
	show, decided := e.shouldShow()
	if decided {
		e.timeline.SetShowPredictions(show)
	}
}

// shouldShow reports whether predictions are rendered and whether the
// current state decides it at all.
func (e *Engine) shouldShow() (show, decided bool) {
	threshold := e.settings.Threshold()
	switch {
	case e.excludeRe != nil && e.excludeRe.MatchString(e.title):
		return false, true
	case threshold < 0:
		return false, true
	case threshold == 0:
		return true, true
	case e.stats.SampleSize() > statsRequiredSampleSize && e.stats.Accuracy() > statsMinAccuracyToShow:
		median := e.stats.Latency().Median
		if median >= threshold {
			return true, true
		}
		if float64(median) < float64(threshold)/statsToggleOffThreshold {
			return false, true
		}
	}
	return false, false
}
