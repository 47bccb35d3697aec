// Package version carries build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sitesmith/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the metadata for --version output.
func String() string {
	return fmt.Sprintf("sitesmith %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, runtime.Version())
}
