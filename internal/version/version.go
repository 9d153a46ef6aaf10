package version

import "context"

// Sentinel marks a build without an assigned version, e.g. a local development build.
// Update detection is disabled whenever either side of a comparison equals it.
const Sentinel = "dev"

// Default build-time variable.
// These values are overridden via ldflags
var (
	Version   = Sentinel
	GitCommit = "unknown-commit-sha"
)

// IsSentinel returns true if v is the development build marker.
func IsSentinel(v string) bool {
	return v == Sentinel
}

// Checker represents an interface for looking up the currently deployed version.
type Checker interface {
	LatestVersion(ctx context.Context) (string, error)
}
