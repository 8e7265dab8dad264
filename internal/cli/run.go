package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/logging"
	"github.com/andyrewlee/typeahead/internal/pty"
	"github.com/andyrewlee/typeahead/internal/replay"
	"github.com/andyrewlee/typeahead/internal/safego"
	"github.com/andyrewlee/typeahead/internal/supervisor"
	"github.com/andyrewlee/typeahead/internal/typeahead"
	"github.com/andyrewlee/typeahead/internal/vterm"
)

type runOptions struct {
	shell   string
	latency time.Duration
	record  bool
	stats   bool
}

func buildRunCommand(gf *globalFlags) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a shell with local echo",
		Long: `Run a shell on a pseudo terminal and predict the echo of every keystroke.

Use --latency to delay keystrokes on their way to the shell, which makes the
predictions visible on a local machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), gf, opts)
		},
	}
	cmd.Flags().StringVar(&opts.shell, "shell", "", "Shell to run (default $SHELL)")
	cmd.Flags().DurationVar(&opts.latency, "latency", 0, "Artificial delay for keystrokes, e.g. 150ms")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Record the session into the replay directory")
	cmd.Flags().BoolVar(&opts.stats, "stats", true, "Print prediction stats on exit")
	return cmd
}

func resolveShell(flag string) string {
	if flag != "" {
		return flag
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "sh"
}

func runShell(ctx context.Context, gf *globalFlags, opts runOptions) error {
	stdin, stdout := os.Stdin, os.Stdout
	if !term.IsTerminal(stdin.Fd()) || !term.IsTerminal(stdout.Fd()) {
		return errors.New("run needs an interactive terminal")
	}

	cfg, err := gf.loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := gf.setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	cols, rows, err := term.GetSize(stdout.Fd())
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = 80, 24
	}

	shell := resolveShell(opts.shell)
	cwd, _ := os.Getwd()
	proc, err := pty.NewWithSize(shell, cwd, nil, uint16(rows), uint16(cols))
	if err != nil {
		return err
	}
	defer proc.Close()
	logging.Info("started %s (%dx%d, latency %s)", shell, cols, rows, opts.latency)

	fd := int(stdin.Fd())
	oldState, err := xterm.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	restored := false
	restore := func() {
		if !restored {
			restored = true
			_ = xterm.Restore(fd, oldState)
		}
	}
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rec *replay.Recorder
	if opts.record {
		path := filepath.Join(cfg.Paths.ReplayDir, time.Now().Format("20060102-150405")+".jsonl")
		rec, err = replay.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logging.Warn("recording: %v", err)
			}
		}()
		logging.Info("recording session to %s", path)
	}

	events := make(chan typeahead.Event, 64)
	emit := func(ev typeahead.Event) {
		if rec != nil {
			rec.Record(ev)
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	vt := vterm.New(cols, rows)
	// titles are reported mid-parse, on the engine's goroutine
	vt.SetTitleHandler(func(title string) {
		safego.Go("cli.title", func() { emit(typeahead.TitleEvent{Title: title}) })
	})
	// the real terminal answers the shell's queries; the vterm stays quiet

	keys := newDelayedWriter(proc, opts.latency)
	defer keys.Close()

	engine := typeahead.NewEngine(typeahead.Options{
		Terminal: newTeeView(vt, stdout),
		Process:  keys,
		Config:   cfg.Typeahead,
	})

	// stdin is never closed, so this reader is left blocked in Read on exit
	safego.Go("cli.stdin", func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdin.Read(buf)
			if n > 0 {
				emit(typeahead.InputEvent{Data: string(buf[:n])})
			}
			if err != nil {
				return
			}
		}
	})

	sup := supervisor.New(ctx)
	sup.Start("cli.pty", func(context.Context) error {
		defer cancel()
		buf := make([]byte, 32*1024)
		for {
			n, err := proc.Read(buf)
			if n > 0 {
				emit(typeahead.DataEvent{Data: string(buf[:n])})
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	sup.Start("cli.resize", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-winch:
			}
			w, h, err := term.GetSize(stdout.Fd())
			if err != nil || w <= 0 || h <= 0 {
				continue
			}
			if err := proc.SetSize(uint16(h), uint16(w)); err != nil {
				logging.Warn("resize pty: %v", err)
			}
			if rec != nil {
				rec.Resize(w, h)
			}
			emit(typeahead.ResizeEvent{Cols: w, Rows: h})
		}
	})

	if watcher, err := config.NewWatcher(cfg, func(settings config.Typeahead) {
		emit(typeahead.ConfigEvent{Config: settings})
	}); err != nil {
		logging.Warn("config watcher: %v", err)
	} else {
		defer watcher.Close()
		sup.Start("cli.config-watch", watcher.Run, supervisor.WithPolicy(supervisor.RestartOnError), supervisor.WithMaxRestarts(3))
	}

	runErr := engine.Run(ctx, events)
	cancel()
	restore()
	_ = keys.Close()
	// closing the pty unblocks its reader
	_ = proc.Close()
	sup.Stop()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if opts.stats {
		fmt.Fprintln(stdout, renderSummary(summaryFromStats(shell, engine)))
	}

	// a shell killed by Close reports -1 and exits cleanly here
	var exitErr *exec.ExitError
	if errors.As(proc.ExitErr(), &exitErr) && exitErr.ExitCode() > 0 {
		return exitError{code: exitErr.ExitCode()}
	}
	return nil
}
