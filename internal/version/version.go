// Package version holds build metadata for the vendry binary, injected
// via -ldflags and reported in the startup log line.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
