// Package version reports the pickup CLI build identity shown by --version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags, e.g.
// -X github.com/example/pickup/internal/version.Version=v0.3.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "pickup <version> (commit: <sha>, built: <time>)".
// Falls back to the VCS revision embedded by the go tool when Commit was not set.
func String() string {
	return fmt.Sprintf("pickup %s (commit: %s, built: %s)", Version, shortCommit(resolveCommit()), BuildTime)
}

func resolveCommit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
