package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/logging"
	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/pipeline"
	"github.com/hupe1980/colorwatch/internal/watch"
)

func runWatch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	path, err := cfg.ResolvedColorsPath()
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	order, err := output.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	p := pipeline.New(output.NewFrameWriter(cmd.OutOrStdout(), order), logger)

	opts := watch.DefaultOptions()
	opts.Path = path
	opts.Backend = cfg.Backend
	opts.Debounce = cfg.Debounce
	opts.Logger = logger
	opts.Out = cmd.ErrOrStderr()
	opts.Quiet = cfg.Quiet
	opts.Color = colorEnabled(cfg, cmd.ErrOrStderr())

	if err := watch.Run(ctx, opts, p.Process); err != nil {
		// Delivery failures were already logged by the pipeline.
		var sinkErr *pipeline.SinkError
		if errors.As(err, &sinkErr) {
			return &ExitError{Code: 1}
		}

		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
