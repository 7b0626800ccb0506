// Package version provides centralized version information for modtrack.
// This allows all packages to reference a single source of truth for version info.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X modtrack/internal/version.Version=1.0.0 -X modtrack/internal/version.Commit=abc123"
var (
	// Version is the semantic version of modtrack
	Version = "1.0.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// RulesVersion is the version of the report contract consumed by the dashboard.
// Bump it when the shape of the exported bundle changes.
const RulesVersion = "2.0"

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "modtrack version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate + "\n" +
		"Rules: " + RulesVersion
}
