// Package version provides version information for the harness binary.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags.
var (
	// Version is the semantic version of the harness.
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetBaseVersion returns major.minor.patch without build metadata.
func GetBaseVersion() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
}

// GetDetailedVersion returns the version with commit, build date and
// platform information.
func GetDetailedVersion() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// IsValid reports whether the configured version parses as semver.
func IsValid() bool {
	_, err := semver.NewVersion(Version)
	return err == nil
}
