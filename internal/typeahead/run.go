package typeahead

import (
	"context"
	"time"

	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/logging"
)

// tickInterval drives the clear timeout and telemetry inside Run.
const tickInterval = 100 * time.Millisecond

// Event is one unit of work for Run.
type Event interface {
	isEvent()
}

// InputEvent carries keystrokes from the user.
type InputEvent struct{ Data string }

// DataEvent carries a chunk of process output.
type DataEvent struct{ Data string }

// ConfigEvent carries reloaded settings.
type ConfigEvent struct{ Config config.Typeahead }

// TitleEvent carries a new terminal title.
type TitleEvent struct{ Title string }

// ResizeEvent is sent after the window changed size. A terminal that can be
// resized is resized before the engine re-reads it.
type ResizeEvent struct{ Cols, Rows int }

type resizer interface {
	Resize(cols, rows int)
}

func (InputEvent) isEvent()  {}
func (DataEvent) isEvent()   {}
func (ConfigEvent) isEvent() {}
func (TitleEvent) isEvent()  {}
func (ResizeEvent) isEvent() {}

// Run processes events one at a time until ctx is done or events is closed,
// then closes the engine. Keystrokes are predicted before they are written to
// the process so the echo always finds its prediction queued; processed
// output is written to the terminal.
func (e *Engine) Run(ctx context.Context, events <-chan Event) error {
	e.Activate()
	defer e.Close()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(now)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.dispatch(ev); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) dispatch(ev Event) error {
	switch ev := ev.(type) {
	case InputEvent:
		e.HandleInput(ev.Data)
		if e.process != nil {
			if _, err := e.process.Write([]byte(ev.Data)); err != nil {
				return err
			}
		}
	case DataEvent:
		out := e.BeforeProcessData(ev.Data)
		if out != "" {
			if _, err := e.term.WriteString(out); err != nil {
				return err
			}
		}
	case ConfigEvent:
		e.ConfigChanged(ev.Config)
	case TitleEvent:
		e.TitleChanged(ev.Title)
	case ResizeEvent:
		if r, ok := e.term.(resizer); ok && ev.Cols > 0 && ev.Rows > 0 {
			r.Resize(ev.Cols, ev.Rows)
		}
		e.Resize()
	default:
		logging.Warn("typeahead: unknown event %T", ev)
	}
	return nil
}
