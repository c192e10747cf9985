// Package cli implements the cobra command tree for colorwatch.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/logging"
	"github.com/hupe1980/colorwatch/internal/output"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
// Errors not already logged by a command are reported on stderr.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				slog.Error(exitErr.Err.Error())
			}

			return exitErr.Code
		}

		slog.Error(err.Error())

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached. Run without a subcommand, it watches the
// palette file.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "colorwatch",
		Short: "Watch a base16 palette file and stream it to a browser",
		Long: `colorwatch watches a base16 color palette file (TOML or YAML) and
streams every valid version of it to its consumer.

It is meant to run as a browser native-messaging host: each palette is
written to stdout as a frame of a 4-byte length header followed by a JSON
object with the 16 colors base00..base0F. One frame is sent at startup
and one each time the file is saved. Invalid palettes are reported on
stderr and skipped; the consumer keeps the last valid palette.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("colorsPath", cfg.ColorsPath),
				slog.String("backend", cfg.Backend),
				slog.String("byteOrder", cfg.ByteOrder),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .colorwatch.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.StringP("colors-path", "c", config.DefaultColorsPath, "palette file (TOML, or YAML by extension)")
	pf.String("byte-order", output.ByteOrderLittle, "frame length header byte order: little, big, native")

	registerWatchFlags(cmd)

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newCheckCommand(),
		newDiffCommand(),
		newDecodeCommand(),
	)

	return cmd
}
