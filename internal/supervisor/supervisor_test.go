package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSupervisor_RunsWorkerOnce(t *testing.T) {
	s := New(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	s.Start("once", func(ctx context.Context) error {
		calls.Add(1)
		close(done)
		return errors.New("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for worker")
	}
	s.Stop()
	if got := calls.Load(); got != 1 {
		t.Fatalf("worker ran %d times, want 1 without a restart policy", got)
	}
}

func TestSupervisor_RestartsOnError(t *testing.T) {
	s := New(context.Background())
	var calls atomic.Int32
	var mu sync.Mutex
	var reported []string
	s.OnError(func(name string, err error) {
		mu.Lock()
		reported = append(reported, name+": "+err.Error())
		mu.Unlock()
	})

	finished := make(chan struct{})
	s.Start("flaky", func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		close(finished)
		return nil
	}, WithPolicy(RestartOnError), WithBackoff(time.Millisecond, 2*time.Millisecond))

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("worker was not restarted")
	}
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 2 || reported[0] != "flaky: transient" {
		t.Fatalf("reported = %v", reported)
	}
}

func TestSupervisor_MaxRestarts(t *testing.T) {
	s := New(context.Background())
	s.OnError(func(string, error) {})
	var calls atomic.Int32
	s.Start("failing", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("always")
	}, WithPolicy(RestartOnError), WithMaxRestarts(2), WithBackoff(0, 0))

	deadline := time.Now().Add(time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	if got := calls.Load(); got != 3 {
		t.Fatalf("worker ran %d times, want 3", got)
	}
}

func TestSupervisor_PanicIsAnError(t *testing.T) {
	s := New(context.Background())
	errs := make(chan error, 1)
	s.OnError(func(_ string, err error) { errs <- err })
	s.Start("panicky", func(ctx context.Context) error {
		panic("kaboom")
	})

	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected an error")
		}
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}
	s.Stop()
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	s := New(context.Background())
	started := make(chan struct{})
	s.Start("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, WithPolicy(RestartOnError))
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	if s.Context().Err() == nil {
		t.Fatal("context should be canceled after Stop")
	}
}

func TestSupervisor_StopsDuringBackoff(t *testing.T) {
	s := New(context.Background())
	s.OnError(func(string, error) {})
	failed := make(chan struct{}, 1)
	s.Start("slow-restart", func(ctx context.Context) error {
		select {
		case failed <- struct{}{}:
		default:
		}
		return errors.New("fail")
	}, WithPolicy(RestartOnError), WithBackoff(time.Hour, time.Hour))
	<-failed

	start := time.Now()
	s.Stop()
	if time.Since(start) > time.Second {
		t.Fatal("Stop waited for the backoff")
	}
}
