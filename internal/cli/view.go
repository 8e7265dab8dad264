package cli

import (
	"io"
	"sync"
	"time"

	"github.com/andyrewlee/typeahead/internal/logging"
	"github.com/andyrewlee/typeahead/internal/safego"
	"github.com/andyrewlee/typeahead/internal/vterm"
)

// teeView is what the user sees: everything written to it goes to the real
// terminal and into a vterm the engine reads cursor and cells from.
type teeView struct {
	*vterm.VTerm
	out io.Writer
}

func newTeeView(vt *vterm.VTerm, out io.Writer) *teeView {
	return &teeView{VTerm: vt, out: out}
}

func (v *teeView) WriteString(s string) (int, error) {
	if _, err := io.WriteString(v.out, s); err != nil {
		return 0, err
	}
	return v.VTerm.WriteString(s)
}

type delayedChunk struct {
	data []byte
	due  time.Time
}

// delayedWriter holds every write back for a fixed delay before passing it
// on, in order. It simulates the round trip to a remote host.
type delayedWriter struct {
	w     io.Writer
	delay time.Duration
	queue chan delayedChunk

	closeOnce sync.Once
	done      <-chan struct{}
}

// newDelayedWriter returns w itself when delay is not positive.
func newDelayedWriter(w io.Writer, delay time.Duration) io.WriteCloser {
	if delay <= 0 {
		return nopWriteCloser{w}
	}
	d := &delayedWriter{w: w, delay: delay, queue: make(chan delayedChunk, 256)}
	d.done = safego.Go("cli.delayed-writer", d.loop)
	return d
}

func (d *delayedWriter) Write(p []byte) (int, error) {
	chunk := delayedChunk{data: append([]byte(nil), p...), due: time.Now().Add(d.delay)}
	d.queue <- chunk
	return len(p), nil
}

func (d *delayedWriter) loop() {
	for chunk := range d.queue {
		if wait := time.Until(chunk.due); wait > 0 {
			time.Sleep(wait)
		}
		if _, err := d.w.Write(chunk.data); err != nil {
			logging.Warn("delayed write: %v", err)
		}
	}
}

// Close flushes queued writes and waits for them.
func (d *delayedWriter) Close() error {
	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
