// Package version reports the popsite build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/popsite/internal/version.Version=v1.0.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the one-line version banner.
func String() string {
	commit := GitCommit
	if commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	return fmt.Sprintf("popsite %s (commit %s, built %s)", Version, commit, BuildTime)
}
