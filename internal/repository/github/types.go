package github

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Release is the subset of the GitHub release payload the tool uses.
type Release struct {
	// ID identifies the release in asset listing calls.
	ID int64 `json:"id"`
	// TagName is the git tag the release was cut from.
	TagName string `json:"tag_name"`
	// Draft releases are unpublished and never installed.
	Draft bool `json:"draft"`
	// Prerelease is the flag set on the GitHub release page.
	Prerelease bool `json:"prerelease"`
}

// Asset is the subset of the GitHub release asset payload the tool uses.
type Asset struct {
	// ID identifies the asset.
	ID int64 `json:"id"`
	// Name is the uploaded file name, e.g. biome-linux-x64.
	Name string `json:"name"`
	// BrowserDownloadURL is the public download location.
	BrowserDownloadURL string `json:"browser_download_url"`
	// Size in bytes.
	Size int64 `json:"size"`
	// Digest is "sha256:<hex>" when GitHub computed one for the asset.
	Digest string `json:"digest,omitempty"`
}

// Registry lists and looks up releases of a single repository.
type Registry interface {
	ListReleases(ctx context.Context) ([]Release, error)
	GetReleaseByTag(ctx context.Context, tag string) (*Release, error)
	ListAssets(ctx context.Context, releaseID int64) ([]Asset, error)
}

// Downloader stores the body behind a URL at a local path.
type Downloader interface {
	Download(ctx context.Context, url, destination string) error
}

var (
	// ErrNotFound is returned when GitHub answers 404.
	ErrNotFound = errors.New("not found")
	// errUnexpectedStatus is returned for any other non-2xx answer.
	errUnexpectedStatus = errors.New("unexpected http status")
)

// RateLimitError reports an exhausted GitHub API quota.
type RateLimitError struct {
	// Reset is when the quota is replenished; zero if GitHub did not say.
	Reset time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "github api rate limit exceeded"
	}

	return fmt.Sprintf("github api rate limit exceeded, quota resets at %s", e.Reset.UTC().Format(time.RFC3339))
}
