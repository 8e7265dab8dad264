package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andyrewlee/typeahead/internal/typeahead"
)

// Recorder appends the events of a live session to a script. It is safe for
// concurrent use; the CLI records from its reader goroutines.
type Recorder struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	now    func() time.Time
	start  time.Time
	err    error
}

// NewRecorder writes steps to w. A nil clock uses time.Now.
func NewRecorder(w io.Writer, clock func() time.Time) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	r := &Recorder{enc: json.NewEncoder(w), now: clock}
	r.start = clock()
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Create records into a new file at path, creating its directory.
func Create(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return NewRecorder(f, nil), nil
}

// Record appends ev. Config changes are not part of a script and are
// skipped; use Resize for size changes.
func (r *Recorder) Record(ev typeahead.Event) {
	switch ev := ev.(type) {
	case typeahead.InputEvent:
		r.write(Step{Kind: KindInput, Data: ev.Data})
	case typeahead.DataEvent:
		r.write(Step{Kind: KindOutput, Data: ev.Data})
	case typeahead.TitleEvent:
		r.write(Step{Kind: KindTitle, Data: ev.Title})
	}
}

// Resize appends a size change.
func (r *Recorder) Resize(cols, rows int) {
	r.write(Step{Kind: KindResize, Cols: cols, Rows: rows})
}

func (r *Recorder) write(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	step.AtMs = r.now().Sub(r.start).Milliseconds()
	// the first failure stops recording; Close reports it
	r.err = r.enc.Encode(step)
}

// Close closes the underlying file and returns the first write error.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.err
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
		r.closer = nil
	}
	return err
}
