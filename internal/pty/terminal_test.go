package pty

import (
	"io"
	"strings"
	"testing"
	"time"
)

// readUntil collects output until want shows up, EOF or the deadline.
func readUntil(t *testing.T, term *Terminal, want string) string {
	t.Helper()
	buf := make([]byte, 1024)
	var output strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := term.Read(buf)
		if n > 0 {
			output.Write(buf[:n])
		}
		if strings.Contains(output.String(), want) || err != nil {
			break
		}
	}
	return output.String()
}

func TestNew_EchoCommand(t *testing.T) {
	term, err := New("echo hello", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer term.Close()

	if out := readUntil(t, term, "hello"); !strings.Contains(out, "hello") {
		t.Errorf("expected output to contain 'hello', got %q", out)
	}
}

func TestNewWithSize_ZeroDimensions(t *testing.T) {
	term, err := NewWithSize("echo zero", t.TempDir(), nil, 0, 0)
	if err != nil {
		t.Fatalf("NewWithSize with zero dimensions failed: %v", err)
	}
	defer term.Close()
}

func TestNewWithSize_ReportsSize(t *testing.T) {
	term, err := NewWithSize("stty size", t.TempDir(), nil, 24, 80)
	if err != nil {
		t.Fatalf("NewWithSize failed: %v", err)
	}
	defer term.Close()

	if out := readUntil(t, term, "24 80"); !strings.Contains(out, "24 80") {
		t.Errorf("expected stty to report 24 80, got %q", out)
	}
}

func TestTerminal_EchoesInput(t *testing.T) {
	term, err := New("cat", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer term.Close()

	n, err := term.Write([]byte("test input\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 11 {
		t.Errorf("expected 11 bytes written, got %d", n)
	}
	if out := readUntil(t, term, "test input"); !strings.Contains(out, "test input") {
		t.Errorf("expected echo of input, got %q", out)
	}
}

func TestTerminal_AfterClose(t *testing.T) {
	term, err := New("cat", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := term.Write([]byte("data")); err != io.ErrClosedPipe {
		t.Errorf("expected io.ErrClosedPipe after close, got %v", err)
	}
	if _, err := term.Read(make([]byte, 8)); err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
	if err := term.SetSize(40, 120); err != nil {
		t.Errorf("SetSize on closed terminal should return nil, got %v", err)
	}
	if term.Running() {
		t.Error("expected terminal not to be running after close")
	}
	if !term.IsClosed() {
		t.Error("terminal should be closed after Close()")
	}
}

func TestTerminal_Running(t *testing.T) {
	term, err := New("sleep 10", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer term.Close()

	if !term.Running() {
		t.Error("expected terminal to be running")
	}
	if err := term.SendInterrupt(); err != nil {
		t.Errorf("SendInterrupt failed: %v", err)
	}
}

func TestTerminal_DoneOnExit(t *testing.T) {
	term, err := New("exit 3", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer term.Close()

	select {
	case <-term.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit")
	}
	if term.ExitErr() == nil {
		t.Error("expected a non-zero exit error")
	}
}

func TestTerminal_EnvPropagation(t *testing.T) {
	term, err := New("echo $TEST_VAR $TERM", t.TempDir(), []string{"TEST_VAR=test_value_12345"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer term.Close()

	out := readUntil(t, term, "xterm-256color")
	if !strings.Contains(out, "test_value_12345") {
		t.Errorf("expected env output to contain TEST_VAR, got %q", out)
	}
	if !strings.Contains(out, "xterm-256color") {
		t.Errorf("expected TERM to be set, got %q", out)
	}
}
