// Package diff renders unified text diffs between two palette renderings.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns sensible default diff options.
func DefaultOptions() Options {
	return Options{
		OldLabel: "old",
		NewLabel: "new",
		Context:  3,
	}
}

// Compute computes a unified diff between two documents.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	return &Result{Unified: unified, HasDifferences: unified != ""}, nil
}

// Write writes a formatted diff to w, optionally colored.
func Write(w io.Writer, result *Result, enableColor bool) {
	if !result.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	styles := map[string]*color.Color{
		"---": color.New(color.Bold),
		"+++": color.New(color.Bold),
		"@@":  color.New(color.FgCyan),
		"-":   color.New(color.FgRed),
		"+":   color.New(color.FgGreen),
	}

	for _, c := range styles {
		if enableColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		_, _ = fmt.Fprintln(w, styleFor(styles, line).Sprint(line))
	}
}

// styleFor picks the style for a diff line; headers win over +/- markers.
func styleFor(styles map[string]*color.Color, line string) *color.Color {
	for _, prefix := range []string{"---", "+++", "@@", "-", "+"} {
		if strings.HasPrefix(line, prefix) {
			return styles[prefix]
		}
	}

	plain := color.New()
	plain.DisableColor()

	return plain
}

// splitLines splits a string into lines for difflib, keeping the trailing
// newline on each element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
