// Package version reports build metadata stamped in with -ldflags:
//
//	go build -ldflags "-X github.com/example/ladder/internal/version.Commit=$(git rev-parse HEAD)"
package version

import "fmt"

var (
	Tag       = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line printed by `ladder version`.
func String() string {
	return fmt.Sprintf("ladder %s (commit: %s, built: %s)", Tag, Short(Commit), BuildTime)
}

// Short abbreviates a commit hash to seven characters.
func Short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
