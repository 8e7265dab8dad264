package safego

import (
	"sync"
	"testing"
	"time"
)

func TestRun_NoPanic(t *testing.T) {
	called := false
	if Run("test", func() { called = true }) {
		t.Error("Run reported a panic")
	}
	if !called {
		t.Error("function was not called")
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	if !Run("test-panic", func() { panic("test panic") }) {
		t.Error("Run should report the panic")
	}
}

func TestRun_CallsPanicHandler(t *testing.T) {
	var (
		mu           sync.Mutex
		handlerName  string
		handlerValue any
	)
	SetPanicHandler(func(name string, recovered any, stack []byte) {
		mu.Lock()
		handlerName = name
		handlerValue = recovered
		mu.Unlock()
	})
	defer SetPanicHandler(nil)

	Run("pty-reader", func() { panic("oops") })

	mu.Lock()
	defer mu.Unlock()
	if handlerName != "pty-reader" {
		t.Errorf("expected name 'pty-reader', got %q", handlerName)
	}
	if handlerValue != "oops" {
		t.Errorf("expected recovered value 'oops', got %v", handlerValue)
	}
}

func TestRun_PanicHandlerPanicIsRecovered(t *testing.T) {
	SetPanicHandler(func(string, any, []byte) { panic("handler panic") })
	defer SetPanicHandler(nil)

	Run("test", func() { panic("original panic") })
}

func TestRun_EmptyName(t *testing.T) {
	var name string
	SetPanicHandler(func(n string, _ any, _ []byte) { name = n })
	defer SetPanicHandler(nil)

	Run("", func() { panic("test") })
	if name != "goroutine" {
		t.Errorf("expected default name 'goroutine', got %q", name)
	}
}

func TestGo_ClosesDone(t *testing.T) {
	for _, fn := range []func(){func() {}, func() { panic("boom") }} {
		select {
		case <-Go("test", fn):
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for goroutine")
		}
	}
}
