// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/recdex/internal/version.Version=v0.3.0
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for logs, e.g. "v0.3.0 (abc123, 2026-01-02)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
