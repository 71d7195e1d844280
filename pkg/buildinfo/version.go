// Package buildinfo holds version information injected at build time.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/setup-pdm/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/setup-pdm/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/setup-pdm/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the release tag (e.g., "v4.1.0").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// UserAgent identifies this build in outgoing HTTP requests.
func UserAgent() string {
	return "setup-pdm/" + Version
}
