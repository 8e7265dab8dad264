package pty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/andyrewlee/typeahead/internal/logging"
)

// Terminal runs a command on a pseudo terminal
type Terminal struct {
	mu      sync.Mutex
	ptyFile *os.File
	cmd     *exec.Cmd
	closed  bool
	done    chan struct{}
	exitErr error
}

// New starts command under sh on a new pty.
func New(command string, dir string, env []string) (*Terminal, error) {
	return NewWithSize(command, dir, env, 0, 0)
}

// NewWithSize starts command with the given window size. Zero dimensions
// leave the size unset.
func NewWithSize(command string, dir string, env []string, rows, cols uint16) (*Terminal, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	var (
		ptmx *os.File
		err  error
	)
	if rows > 0 && cols > 0 {
		ptmx, err = pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	} else {
		ptmx, err = pty.Start(cmd)
	}
	if err != nil {
		return nil, fmt.Errorf("start %q: %w", command, err)
	}

	t := &Terminal{ptyFile: ptmx, cmd: cmd, done: make(chan struct{})}
	go t.wait()
	return t, nil
}

func (t *Terminal) wait() {
	err := t.cmd.Wait()
	t.mu.Lock()
	t.exitErr = err
	t.mu.Unlock()
	close(t.done)
}

// SetSize sets the terminal size
func (t *Terminal) SetSize(rows, cols uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.ptyFile == nil {
		return nil
	}
	return pty.Setsize(t.ptyFile, &pty.Winsize{Rows: rows, Cols: cols})
}

// Write sends input to the process.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	closed, f := t.closed, t.ptyFile
	t.mu.Unlock()

	if closed || f == nil {
		return 0, io.ErrClosedPipe
	}
	return f.Write(p)
}

// Read reads process output. The blocking read runs without the mutex.
func (t *Terminal) Read(p []byte) (int, error) {
	t.mu.Lock()
	closed, f := t.closed, t.ptyFile
	t.mu.Unlock()

	if closed || f == nil {
		return 0, io.EOF
	}
	n, err := f.Read(p)
	// Linux reports EIO once the child side is gone
	if errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EIO) {
		err = io.EOF
	}
	return n, err
}

// SendInterrupt sends Ctrl+C to the terminal
func (t *Terminal) SendInterrupt() error {
	_, err := t.Write([]byte{0x03})
	return err
}

// Done is closed when the process exits.
func (t *Terminal) Done() <-chan struct{} { return t.done }

// ExitErr returns the process's exit error once Done is closed.
func (t *Terminal) ExitErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitErr
}

// Close closes the pty and kills the process.
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	f, cmd := t.ptyFile, t.cmd
	t.mu.Unlock()

	if f != nil {
		_ = f.Close()
	}
	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logging.Debug("pty: kill: %v", err)
		}
		<-t.done
	}
	return nil
}

// Running reports whether the process has not exited yet.
func (t *Terminal) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return !t.IsClosed()
	}
}

// IsClosed reports whether Close was called.
func (t *Terminal) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
