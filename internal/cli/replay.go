package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/typeahead/internal/replay"
)

type replayOptions struct {
	cols, rows int
	screen     bool
}

func buildReplayCommand(gf *globalFlags) *cobra.Command {
	var opts replayOptions
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Feed a recorded session through the engine",
		Long: `Replay a session script and print prediction stats.

A script has one JSON step per line:
  {"at_ms": 0, "kind": "output", "data": "$ "}
  {"at_ms": 10, "kind": "input", "data": "l"}
  {"at_ms": 90, "kind": "output", "data": "l"}

A bare file name is also looked up in the replay directory, where
"typeahead run --record" saves sessions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), gf, opts, args[0])
		},
	}
	cmd.Flags().IntVar(&opts.cols, "cols", 80, "Screen width")
	cmd.Flags().IntVar(&opts.rows, "rows", 24, "Screen height")
	cmd.Flags().BoolVar(&opts.screen, "screen", false, "Print the final screen")
	return cmd
}

// resolveScript finds name as given or inside dir.
func resolveScript(name, dir string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if filepath.Base(name) == name {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("replay script %q not found", name)
}

func runReplay(w io.Writer, gf *globalFlags, opts replayOptions, name string) error {
	cfg, err := gf.loadConfig()
	if err != nil {
		return err
	}
	path, err := resolveScript(name, cfg.Paths.ReplayDir)
	if err != nil {
		return err
	}
	steps, err := replay.Load(path)
	if err != nil {
		return err
	}

	res := replay.Play(steps, replay.Options{Cols: opts.cols, Rows: opts.rows, Settings: cfg.Typeahead})
	if opts.screen {
		for _, line := range res.Screen {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, renderSummary(summary{
		title:    filepath.Base(path),
		latency:  res.Latency,
		accuracy: res.Accuracy,
		samples:  res.Samples,
		disabled: res.Disabled,
	}))
	return nil
}
