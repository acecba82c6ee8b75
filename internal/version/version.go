// Package version holds build metadata injected at link time.
package version

import "fmt"

// Version contains the application version information.
// Set via ldflags in production builds:
// go build -ldflags "-X git.home.luguber.info/inful/semcheck/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line shown by --version.
func String() string {
	return fmt.Sprintf("semcheck %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
