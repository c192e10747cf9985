package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/config"
	"github.com/hupe1980/colorwatch/internal/watch"
)

// registerWatchFlags adds the palette watching flags to a cobra command.
func registerWatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", watch.BackendAuto, "file notification backend: auto, inotify, fsnotify")
	f.Duration("debounce", config.Default().Debounce, "fsnotify fallback backend only: quiet period after the last write (inotify reacts to close-write)")
}

// colorEnabled reports whether colored output should be written to w.
func colorEnabled(cfg *config.Config, w io.Writer) bool {
	if cfg.NoColor {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
