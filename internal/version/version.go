// Package version provides build-time metadata for the colorwatch binary.
// Version, GitCommit, and BuildDate are injected at compile time via
// -ldflags; binaries built with `go install` fall back to the module
// version and VCS stamp recorded by the toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	v, commit, date := version, gitCommit, buildDate

	if bi, ok := debug.ReadBuildInfo(); ok {
		v, commit, date = fromBuildInfo(bi, v, commit, date)
	}

	return Info{
		Version:   v,
		GitCommit: shortCommit(commit),
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("colorwatch %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}

// fromBuildInfo fills values still at their ldflags defaults from the
// toolchain-recorded build info.
func fromBuildInfo(bi *debug.BuildInfo, v, commit, date string) (string, string, string) {
	if v == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "none":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}

	return v, commit, date
}
