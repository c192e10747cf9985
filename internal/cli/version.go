package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/version"
	"github.com/hupe1980/colorwatch/internal/watch"
)

// versionInfo extends the build metadata with what a native-messaging
// manifest author needs to know about this host.
type versionInfo struct {
	version.Info

	WatchBackend string `json:"watchBackend"`
	FrameHeader  int    `json:"frameHeaderBytes"`
	MaxFrameSize int    `json:"maxFrameBytes"`
}

func newVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, git commit, build date, Go version, and platform,
together with the watch backend "auto" selects on this platform and the
frame limits of the output protocol.`,
		Args: cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := watch.ResolveBackend(watch.BackendAuto)
			if err != nil {
				return err
			}

			info := versionInfo{
				Info:         version.GetInfo(),
				WatchBackend: backend,
				FrameHeader:  output.HeaderSize,
				MaxFrameSize: output.MaxFrameSize,
			}

			w := cmd.OutOrStdout()

			if jsonOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling version info: %w", err)
				}

				_, err = fmt.Fprintln(w, string(data))

				return err
			}

			_, err = fmt.Fprintf(w, "%s\nwatch backend: %s, frame: %d-byte header, max %d bytes\n",
				info.Info, info.WatchBackend, info.FrameHeader, info.MaxFrameSize)

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")

	return cmd
}
