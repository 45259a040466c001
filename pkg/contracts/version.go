// Package contracts defines the shared contracts between the service
// binaries, the HTTP transport and the WebSocket protocol.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "1.0.0"

	// APIVersion is the version of the API (WebSocket messages)
	APIVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo returns a human-readable version string
func VersionInfo() string {
	return fmt.Sprintf("bordereau %s (%s, %s/%s, built %s)",
		Version, GitCommit, runtime.GOOS, runtime.GOARCH, BuildTime)
}
