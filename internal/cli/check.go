package cli

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/logging"
	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/palette"
)

type checkOptions struct {
	frame  bool
	pretty bool
	output string
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [palette-file]",
		Short: "Validate a palette file once and print it",
		Long: `Check reads, parses, and validates a palette file exactly like the
watcher does, then prints the JSON payload that would be sent.

Without an argument the configured --colors-path is checked.

Exit codes:
  0  Palette is valid
  1  Palette could not be read, parsed, or validated
  2  Invalid arguments or configuration`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.frame, "frame", false, "write a length-prefixed frame instead of a JSON line")
	f.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	f.StringVarP(&opts.output, "output", "o", "", "write the payload (framed with --frame) to a file instead of stdout")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	cfg := config.FromContext(cmd.Context())

	if opts.frame && opts.pretty {
		return &ExitError{Code: 2, Err: fmt.Errorf("--frame and --pretty are mutually exclusive")}
	}

	path, err := cfg.ResolvedColorsPath()
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	if len(args) == 1 {
		path = args[0]
	}

	p, err := palette.Load(path)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	serialize := output.Serialize
	if opts.pretty {
		serialize = output.SerializeIndent
	}

	payload, err := serialize(p)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	var order binary.ByteOrder

	if opts.frame {
		if order, err = output.ParseByteOrder(cfg.ByteOrder); err != nil {
			return &ExitError{Code: 2, Err: err}
		}
	}

	var w output.Writer

	switch {
	case opts.output != "":
		w = output.NewFileWriter(opts.output, output.WithLogger(logging.FromContext(cmd.Context())))

		if opts.frame {
			if payload, err = output.AppendFrame(nil, order, payload); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
		}
	case opts.frame:
		w = output.NewFrameWriter(cmd.OutOrStdout(), order)
	default:
		w = output.NewStdoutWriter(cmd.OutOrStdout())
	}

	if err := w.Write(payload); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
