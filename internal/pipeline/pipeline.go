// Package pipeline turns a palette file into a frame on the sink:
// read, parse, validate, serialize, write. Each stage fails with its own
// error type and nothing reaches the sink unless every stage succeeds.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/palette"
)

// SinkError reports that a validated palette could not be delivered.
// The consumer is assumed gone; callers should stop processing.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "delivering palette: " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }

// Result describes one successful Process call.
type Result struct {
	Palette palette.Palette
	// Bytes is the payload size, excluding the frame header.
	Bytes int
	// Changes lists slots that differ from the previously delivered
	// palette. It is nil for the first delivery.
	Changes []palette.Change
	// First is true when no palette had been delivered before.
	First bool
}

// Pipeline processes palette files and writes the result to Sink.
type Pipeline struct {
	sink   output.Writer
	logger *slog.Logger

	// last is only used to report changes; it never influences what is sent.
	last *palette.Palette
}

// New creates a Pipeline writing to sink. A nil logger selects slog.Default().
func New(sink output.Writer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{sink: sink, logger: logger}
}

// Process reads the palette at path and delivers it to the sink. Read,
// parse, and validation failures are returned as *palette.ReadError,
// *palette.ParseError, and *palette.ValidationError; sink failures as
// *SinkError.
func (p *Pipeline) Process(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pal, err := palette.Load(path)
	if err != nil {
		return nil, err
	}

	payload, err := output.Serialize(pal)
	if err != nil {
		return nil, err
	}

	if err := p.sink.Write(payload); err != nil {
		return nil, &SinkError{Err: err}
	}

	res := &Result{Palette: pal, Bytes: len(payload), First: p.last == nil}
	if p.last != nil {
		res.Changes = palette.Diff(*p.last, pal)
	}

	p.last = &pal

	p.logger.Debug("palette delivered",
		slog.String("path", path),
		slog.Int("bytes", len(payload)),
		slog.Int("changed", len(res.Changes)),
	)

	return res, nil
}

// LogError writes one structured line describing err. The attributes
// depend on the failing stage so the line alone is enough to diagnose.
func LogError(logger *slog.Logger, path string, err error) {
	var (
		readErr  *palette.ReadError
		parseErr *palette.ParseError
		valErr   *palette.ValidationError
		sinkErr  *SinkError
	)

	switch {
	case errors.As(err, &readErr):
		logger.Error("cannot read palette",
			slog.String("kind", "read"),
			slog.String("path", readErr.Path),
			slog.String("error", readErr.Err.Error()),
		)
	case errors.As(err, &parseErr):
		attrs := []any{slog.String("kind", "parse"), slog.String("path", path)}
		if parseErr.Field != "" {
			attrs = append(attrs, slog.String("field", parseErr.Field))
		}

		attrs = append(attrs, slog.String("error", parseErr.Reason))
		logger.Error("cannot parse palette", attrs...)
	case errors.As(err, &valErr):
		logger.Error("invalid palette",
			slog.String("kind", "validation"),
			slog.String("path", path),
			slog.String("field", valErr.Field),
			slog.String("value", valErr.Value),
		)
	case errors.As(err, &sinkErr):
		logger.Error("cannot deliver palette",
			slog.String("kind", "sink"),
			slog.String("error", sinkErr.Err.Error()),
		)
	default:
		logger.Error("processing palette failed",
			slog.String("path", path),
			slog.String("error", fmt.Sprint(err)),
		)
	}
}
