// Package github talks to the GitHub REST API on behalf of the installer.
//
// Registry is the narrow capability the services depend on (list releases,
// get a release by tag, list release assets); Client implements it over HTTP,
// drains Link-header pagination and turns 404 and rate-limit responses into
// ErrNotFound and *RateLimitError. Client also downloads release assets.
package github
