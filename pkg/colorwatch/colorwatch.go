// Package colorwatch provides a public Go API for loading base16 palette
// files and streaming them as length-prefixed frames.
//
// This package exposes the colorwatch pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := colorwatch.Check(ctx, "colors.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.JSON))
//
// Watching a file until ctx is cancelled:
//
//	err := colorwatch.Watch(ctx, "colors.toml", os.Stdout,
//	    colorwatch.WithByteOrder("big"),
//	    colorwatch.WithLogger(logger),
//	)
package colorwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/palette"
	"github.com/hupe1980/colorwatch/internal/pipeline"
	"github.com/hupe1980/colorwatch/internal/watch"
)

// Palette is a validated set of the 16 base16 colors.
type Palette = palette.Palette

// Change describes one color slot that differs between two palettes.
type Change = palette.Change

// Error types returned by Check and Watch. Use errors.As to inspect them.
type (
	ReadError         = palette.ReadError
	ParseError        = palette.ParseError
	ValidationError   = palette.ValidationError
	SinkError         = pipeline.SinkError
	SubscriptionError = watch.SubscriptionError
)

// FieldNames lists the palette keys in wire order.
var FieldNames = palette.FieldNames

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option configures Check and Watch.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	byteOrder string
	backend   string
	debounce  time.Duration
	logger    *slog.Logger
	status    io.Writer
	onChange  func(Palette, []Change)
}

// WithByteOrder sets the frame header byte order: little (default), big,
// or native.
func WithByteOrder(order string) Option { return func(o *options) { o.byteOrder = order } }

// WithBackend selects the notification backend: auto (default), inotify,
// or fsnotify.
func WithBackend(backend string) Option { return func(o *options) { o.backend = backend } }

// WithDebounce sets the quiet period used by the fsnotify backend.
func WithDebounce(d time.Duration) Option { return func(o *options) { o.debounce = d } }

// WithLogger sets the logger for error lines. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithStatus writes a human-readable line per delivered palette to w.
func WithStatus(w io.Writer) Option { return func(o *options) { o.status = w } }

// WithOnChange registers a callback invoked after every delivered palette
// with the slots that changed since the previous one (nil the first time).
func WithOnChange(fn func(Palette, []Change)) Option {
	return func(o *options) { o.onChange = fn }
}

func buildOptions(opts []Option) *options {
	o := &options{
		byteOrder: output.ByteOrderLittle,
		backend:   watch.BackendAuto,
		debounce:  watch.DefaultDebounce,
		logger:    discardLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Result holds a palette loaded by Check.
type Result struct {
	Palette Palette
	// JSON is the compact payload that Watch would send.
	JSON []byte
	// Frame is JSON preceded by its length header.
	Frame []byte
}

// Check loads and validates the palette at path once.
func Check(ctx context.Context, path string, opts ...Option) (*Result, error) {
	if path == "" {
		return nil, errors.New("palette path must not be empty")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	order, err := output.ParseByteOrder(o.byteOrder)
	if err != nil {
		return nil, err
	}

	p, err := palette.Load(path)
	if err != nil {
		return nil, err
	}

	payload, err := output.Serialize(p)
	if err != nil {
		return nil, fmt.Errorf("serializing palette: %w", err)
	}

	frame, err := output.AppendFrame(nil, order, payload)
	if err != nil {
		return nil, err
	}

	return &Result{Palette: p, JSON: payload, Frame: frame}, nil
}

// Watch writes a frame for the palette at path to w, then one per save,
// until ctx is cancelled or the file is removed. Invalid versions of the
// file are logged and skipped. A failure to write to w ends the watch
// with a *SinkError.
func Watch(ctx context.Context, path string, w io.Writer, opts ...Option) error {
	if path == "" {
		return errors.New("palette path must not be empty")
	}

	o := buildOptions(opts)

	order, err := output.ParseByteOrder(o.byteOrder)
	if err != nil {
		return err
	}

	backend, err := watch.ResolveBackend(o.backend)
	if err != nil {
		return err
	}

	p := pipeline.New(output.NewFrameWriter(w, order), o.logger)

	run := p.Process
	if o.onChange != nil {
		run = func(ctx context.Context, path string) (*pipeline.Result, error) {
			res, err := p.Process(ctx, path)
			if err == nil {
				o.onChange(res.Palette, res.Changes)
			}

			return res, err
		}
	}

	wo := watch.DefaultOptions()
	wo.Path = path
	wo.Backend = backend
	wo.Debounce = o.debounce
	wo.Logger = o.logger
	wo.Out = o.status
	wo.Quiet = o.status == nil

	return watch.Run(ctx, wo, run)
}
