// Package version exposes the build metadata stamped into the sysops
// binary. Release builds overwrite the package variables through
// -ldflags; anything else reports as a dev build.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag, or "dev" for unstamped builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

// Info is a point-in-time snapshot of the build metadata plus the
// toolchain and platform the binary was compiled for.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
}

// GetInfo snapshots the stamped variables and the runtime environment.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the one-line banner printed by `sysops version`. Commit
// hashes are shortened to eight characters.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("sysops %s (%s) built %s with %s for %s",
		i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// Short returns the bare version, for scripts that parse the output.
func (i Info) Short() string {
	return i.Version
}
