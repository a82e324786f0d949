// Package version exposes build-time metadata for the health check tool.
// The variables are overridden at link time via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.2.0"

	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Info returns a human-readable version string for the version command.
func Info() string {
	return fmt.Sprintf("eos-healthcheck %s (commit %s, built %s)", Version, Commit, Date)
}
