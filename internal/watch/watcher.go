package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/hupe1980/colorwatch/internal/palette"
	"github.com/hupe1980/colorwatch/internal/pipeline"
)

// RunFunc processes the palette at path. It is the pipeline's Process
// method in production.
type RunFunc func(ctx context.Context, path string) (*pipeline.Result, error)

// Options configures the watch behaviour.
type Options struct {
	// Path is the palette file to watch. It must exist.
	Path string

	// Backend selects the notification backend (auto, inotify, fsnotify).
	Backend string

	// Debounce is the quiet period used by the fsnotify backend.
	Debounce time.Duration

	// Notifier overrides backend selection. Run takes ownership and
	// closes it.
	Notifier Notifier

	// Logger receives one line per error.
	Logger *slog.Logger

	// Out is the writer for user-facing status lines.
	Out io.Writer

	// Quiet suppresses status lines; errors are still logged.
	Quiet bool

	// Color enables colored status lines.
	Color bool
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Backend:  BackendAuto,
		Debounce: DefaultDebounce,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run processes the palette once, then once per notification, until the
// context is cancelled, SIGINT/SIGTERM arrives, or the watch ends.
//
// A *SubscriptionError is returned when the watch cannot be established.
// Read, parse, and validation failures are logged and absorbed. A
// *pipeline.SinkError ends the loop and is returned, since nobody is
// left to receive palettes.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil || opts.Quiet {
		opts.Out = io.Discard
	}

	notifier := opts.Notifier
	if notifier == nil {
		n, err := NewNotifier(opts.Backend, opts.Path, opts.Debounce)
		if err != nil {
			return err
		}

		notifier = n
	}
	defer notifier.Close() //nolint:errcheck // best effort on shutdown

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := newStatus(opts.Out, opts.Color)

	opts.Logger.Info("watching palette",
		slog.String("path", opts.Path),
		slog.String("backend", opts.Backend),
	)

	if err := doRun(sigCtx, opts, st, runFn, opts.Path, "(initial)"); err != nil {
		return err
	}

	events := notifier.Events()
	watchErrs := notifier.Errors()

	for {
		select {
		case <-sigCtx.Done():
			opts.Logger.Info("shutting down watcher")
			return nil

		case path, ok := <-events:
			if !ok {
				opts.Logger.Warn("watch ended; the palette file was removed or replaced",
					slog.String("path", opts.Path))

				return nil
			}

			if err := doRun(sigCtx, opts, st, runFn, path, path); err != nil {
				return err
			}

		case watchErr, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}

			opts.Logger.Error("watcher error",
				slog.String("kind", "watch"),
				slog.String("path", opts.Path),
				slog.String("error", watchErr.Error()),
			)
		}
	}
}

// doRun executes one pipeline run. Only fatal errors are returned.
func doRun(ctx context.Context, opts Options, st *status, runFn RunFunc, path, trigger string) error {
	result, err := runFn(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}

		pipeline.LogError(opts.Logger, path, err)

		var sinkErr *pipeline.SinkError
		if errors.As(err, &sinkErr) {
			return err
		}

		return nil
	}

	st.ok(trigger, result)

	return nil
}

// status prints human-readable progress lines.
type status struct {
	out   io.Writer
	okClr *color.Color
	dim   *color.Color
}

func newStatus(out io.Writer, enabled bool) *status {
	s := &status{
		out:   out,
		okClr: color.New(color.FgGreen, color.Bold),
		dim:   color.New(color.FgHiBlack),
	}

	for _, c := range []*color.Color{s.okClr, s.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return s
}

func (s *status) ok(trigger string, res *pipeline.Result) {
	now := time.Now().Format("15:04:05")

	line := fmt.Sprintf("%s %s → %s (%d bytes)",
		s.dim.Sprintf("[%s]", now), trigger, s.okClr.Sprint("OK"), res.Bytes)

	if !res.First {
		line += " " + s.dim.Sprint(palette.DiffSummary(res.Changes))
	}

	fmt.Fprintln(s.out, line)
}
