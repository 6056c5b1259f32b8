// Package version provides information about the build version of the bot
package version

import "fmt"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are set at build time:
// -ldflags "-X 'meitanbot/internal/core/version.version=v1.0.0' -X 'meitanbot/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: "meitanbot",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// UserAgent is sent on every outbound request
func UserAgent() string {
	return fmt.Sprintf("Nowhere-type Meitan bot %s", version)
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
