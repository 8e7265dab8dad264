package replay

import (
	"time"

	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/typeahead"
	"github.com/andyrewlee/typeahead/internal/vterm"
)

// Options configures Play.
type Options struct {
	Cols, Rows int
	Settings   config.Typeahead
	// Telemetry defaults to a sink that drops reports.
	Telemetry typeahead.Telemetry
}

// Result summarizes a replayed session.
type Result struct {
	Latency  typeahead.LatencyStats
	Accuracy float64
	Samples  int
	// Disabled is set when the engine turned predictions off for good.
	Disabled bool
	// Screen is the visible screen after the last step.
	Screen []string
}

// Play feeds steps through an engine predicting against a fresh vterm. Time
// is taken from the step offsets, so a replay is deterministic.
func Play(steps []Step, opts Options) Result {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Telemetry == nil {
		opts.Telemetry = typeahead.TelemetryFunc(func(typeahead.LatencyStats, float64) {})
	}

	start := time.Unix(0, 0)
	now := start
	vt := vterm.New(opts.Cols, opts.Rows)
	e := typeahead.NewEngine(typeahead.Options{
		Terminal:  vt,
		Config:    opts.Settings,
		Telemetry: opts.Telemetry,
		Clock:     func() time.Time { return now },
	})

	// titles arrive mid-parse; hand them to the engine once the write is done
	var titles []string
	vt.SetTitleHandler(func(title string) { titles = append(titles, title) })
	flushTitles := func() {
		for _, title := range titles {
			e.TitleChanged(title)
		}
		titles = titles[:0]
	}

	e.Activate()
	for _, step := range steps {
		now = start.Add(step.At())
		e.Tick(now)
		switch step.Kind {
		case KindInput:
			e.HandleInput(step.Data)
		case KindOutput:
			_, _ = vt.WriteString(e.BeforeProcessData(step.Data))
		case KindTitle:
			e.TitleChanged(step.Data)
		case KindResize:
			vt.Resize(step.Cols, step.Rows)
			e.Resize()
		}
		flushTitles()
	}

	res := Result{
		Latency:  e.Stats().Latency(),
		Accuracy: e.Stats().Accuracy(),
		Samples:  e.Stats().SampleSize(),
		Disabled: e.Timeline().Disabled(),
	}
	// predictions still pending are not part of what the process printed
	e.Close()
	res.Screen = vt.ScreenText()
	return res
}
