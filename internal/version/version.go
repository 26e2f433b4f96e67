// Package version reports build metadata for the dander binary. Release
// builds inject the values with -ldflags; `go install` builds fall back to
// the module version and VCS stamps recorded by the toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/hupe1980/dander/internal/document"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// GetInfo returns the current build information.
func GetInfo() Info {
	info := Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(info, bi)
	}

	info.GitCommit = shortCommit(info.GitCommit)

	return info
}

// fromBuildInfo fills the fields ldflags left at their defaults.
func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "none":
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}

	return info
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("dander %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// JSON renders the info as an indented JSON object, newline-terminated.
func (i Info) JSON() string {
	obj := document.Object(
		document.Member{Key: "version", Value: document.String(i.Version)},
		document.Member{Key: "gitCommit", Value: document.String(i.GitCommit)},
		document.Member{Key: "buildDate", Value: document.String(i.BuildDate)},
		document.Member{Key: "goVersion", Value: document.String(i.GoVersion)},
		document.Member{Key: "platform", Value: document.String(i.Platform)},
	)

	return string(document.Marshal(obj, 2)) + "\n"
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
