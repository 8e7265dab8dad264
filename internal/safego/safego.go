package safego

import (
	"runtime/debug"
	"sync"

	"github.com/andyrewlee/typeahead/internal/logging"
)

// PanicHandler receives panic details from recovered goroutines.
type PanicHandler func(name string, recovered any, stack []byte)

var (
	handlerMu    sync.RWMutex
	panicHandler PanicHandler
)

// SetPanicHandler registers a global handler for recovered panics.
func SetPanicHandler(handler PanicHandler) {
	handlerMu.Lock()
	panicHandler = handler
	handlerMu.Unlock()
}

// Run executes fn and converts a panic into a logged error. It reports
// whether fn panicked. Runtime-fatal errors such as concurrent map writes
// are not recoverable.
func Run(name string, fn func()) (panicked bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		panicked = true
		if name == "" {
			name = "goroutine"
		}
		stack := debug.Stack()
		logging.Error("panic in %s: %v\n%s", name, r, stack)

		handlerMu.RLock()
		handler := panicHandler
		handlerMu.RUnlock()
		if handler == nil {
			return
		}
		defer func() { _ = recover() }()
		handler(name, r, stack)
	}()
	fn()
	return false
}

// Go runs fn in a new goroutine with panic recovery. The returned channel is
// closed when fn returns or panics.
func Go(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(name, fn)
	}()
	return done
}
