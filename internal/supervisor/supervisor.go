// Package supervisor runs the long-lived workers of a session and stops them
// together.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andyrewlee/typeahead/internal/logging"
	"github.com/andyrewlee/typeahead/internal/safego"
)

// Policy controls whether a worker is restarted after it returns.
type Policy int

const (
	RestartNever Policy = iota
	RestartOnError
)

type workerOptions struct {
	policy      Policy
	maxRestarts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// Option configures one worker.
type Option func(*workerOptions)

// WithPolicy sets the restart policy. The default is RestartNever.
func WithPolicy(policy Policy) Option {
	return func(o *workerOptions) { o.policy = policy }
}

// WithMaxRestarts limits restarts; 0 means unlimited.
func WithMaxRestarts(n int) Option {
	return func(o *workerOptions) { o.maxRestarts = n }
}

// WithBackoff sets the first delay between restarts and its cap. The delay
// doubles after every restart.
func WithBackoff(initial, max time.Duration) Option {
	return func(o *workerOptions) {
		o.backoff = initial
		o.maxBackoff = max
	}
}

// Supervisor owns a context shared by its workers.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	onError func(name string, err error)
}

// New creates a supervisor bound to parent.
func New(parent context.Context) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{ctx: ctx, cancel: cancel}
}

// Context is canceled by Stop.
func (s *Supervisor) Context() context.Context { return s.ctx }

// OnError registers a handler for errors returned by workers. Errors after
// Stop are not reported.
func (s *Supervisor) OnError(fn func(name string, err error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *Supervisor) reportError(name string, err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil {
		fn(name, err)
		return
	}
	logging.Warn("supervisor: %s: %v", name, err)
}

// Start runs fn in its own goroutine. A panic counts as an error.
func (s *Supervisor) Start(name string, fn func(context.Context) error, opts ...Option) {
	cfg := workerOptions{
		backoff:    200 * time.Millisecond,
		maxBackoff: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxBackoff < cfg.backoff {
		cfg.maxBackoff = cfg.backoff
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		restarts := 0
		backoff := cfg.backoff
		for {
			err := s.runOnce(name, fn)
			if s.ctx.Err() != nil {
				return
			}
			if err != nil {
				s.reportError(name, err)
			}
			if err == nil || cfg.policy != RestartOnError {
				return
			}
			restarts++
			if cfg.maxRestarts > 0 && restarts > cfg.maxRestarts {
				logging.Error("supervisor: %s exceeded max restarts (%d)", name, cfg.maxRestarts)
				return
			}
			if !s.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, cfg.maxBackoff)
		}
	}()
}

func (s *Supervisor) runOnce(name string, fn func(context.Context) error) error {
	var err error
	if safego.Run(name, func() { err = fn(s.ctx) }) {
		return fmt.Errorf("panic in %s", name)
	}
	return err
}

// sleep waits for d and reports false if the supervisor stopped first.
func (s *Supervisor) sleep(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Stop cancels the workers and waits for them to return. Workers blocked in
// a read must be unblocked by closing what they read from.
func (s *Supervisor) Stop() {
	s.cancel()
	s.wg.Wait()
}
