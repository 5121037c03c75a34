package version

import "fmt"

var (
	// Version is the release of setup-biome. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// productName prefixes the User-Agent sent to GitHub.
const productName = "setup-biome"

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("%s version: %s, commit: %s, built at: %s", productName, Version, Commit, BuildTime)
}

// UserAgent identifies this build in HTTP requests, e.g. "setup-biome/0.1.0".
func UserAgent() string {
	return productName + "/" + Version
}
