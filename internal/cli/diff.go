package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/diff"
	"github.com/hupe1980/colorwatch/internal/palette"
)

func newDiffCommand() *cobra.Command {
	var contextLines int

	cmd := &cobra.Command{
		Use:   "diff <old-palette> <new-palette>",
		Short: "Compare two palette files",
		Long: `Diff validates two palette files and prints a unified diff of their
canonical form (one "baseXX = value" line per color) followed by a
summary of the changed colors.

Values are compared verbatim, so "#FFF" and "#fff" differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], args[1], contextLines)
		},
	}

	cmd.Flags().IntVar(&contextLines, "context", 3, "lines of context around changes")

	return cmd
}

func runDiff(cmd *cobra.Command, oldPath, newPath string, contextLines int) error {
	cfg := config.FromContext(cmd.Context())

	oldPalette, err := palette.Load(oldPath)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	newPalette, err := palette.Load(newPath)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	opts := diff.DefaultOptions()
	opts.OldLabel = oldPath
	opts.NewLabel = newPath
	opts.Context = contextLines

	result, err := diff.Compute(palette.Render(oldPalette), palette.Render(newPalette), opts)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	w := cmd.OutOrStdout()
	diff.Write(w, result, colorEnabled(cfg, w))

	if result.HasDifferences {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, palette.DiffSummary(palette.Diff(oldPalette, newPalette)))
	}

	return nil
}
