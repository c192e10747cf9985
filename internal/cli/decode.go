package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/palette"
)

func newDecodeCommand() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print frames read from stdin",
		Long: `Decode reads length-prefixed palette frames from stdin and prints each
payload on its own line. Use it to inspect the watcher's output:

  colorwatch -c colors.toml | colorwatch decode

The --byte-order flag must match the one the frames were written with.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecode(cmd, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent each palette")

	return cmd
}

func runDecode(cmd *cobra.Command, pretty bool) error {
	cfg := config.FromContext(cmd.Context())

	order, err := output.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	r := output.NewFrameReader(cmd.InOrStdin(), order)
	w := output.NewStdoutWriter(cmd.OutOrStdout())

	for n := 1; ; n++ {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("reading frame %d: %w", n, err)}
		}

		if pretty {
			var p palette.Palette
			if err := json.Unmarshal(payload, &p); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("decoding frame %d: %w", n, err)}
			}

			if payload, err = output.SerializeIndent(p); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
		}

		if err := w.Write(payload); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
	}
}
