// Package version holds build information set at link time.
package version

var (
	// Version is the semantic version of the mindflow CLI.
	Version = "0.1.0"

	// GitCommit is overridden with -ldflags at release time.
	GitCommit = ""
)

// Full returns the version with the commit appended when known.
func Full() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
