// Package version exposes the build version string for the bicache binary.
package version

// Version is the semantic version of the build. It is overridden at release
// time via -ldflags "-X .../pkg/version.Version=v1.2.3".
var Version = "0.1.0-dev"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
