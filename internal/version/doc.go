// Package version exposes build metadata of setup-biome.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short and Full render them for the CLI, UserAgent for requests
// to the GitHub API.
package version
