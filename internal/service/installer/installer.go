package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/repository/github"
	"github.com/oshokin/setup-biome/internal/service/common"
)

var (
	// ErrInvalidVersion is returned when no version can be coerced from the input,
	// or when "latest" finds no stable release.
	ErrInvalidVersion = errors.New("invalid version specified, it should be a valid semver version, range or 'latest'")
	// ErrVersionNotFound is returned when no release is tagged with the version.
	ErrVersionNotFound = errors.New("release not found")
	// ErrAssetNotFound is returned when the release has no binary for the target.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrRateLimited is returned when the GitHub API quota is exhausted.
	ErrRateLimited = errors.New("github api rate limit exceeded")
)

// Options describe what to install and where.
type Options struct {
	// Version is a version, possibly partial or decorated, or biome.Latest.
	Version string
	// Platform the binary is built for.
	Platform biome.Platform
	// Architecture the binary is built for.
	Architecture biome.Architecture
	// InstallDir receives the binary; empty means a fresh temporary directory.
	InstallDir string
	// Musl prefers the statically linked Linux build when the release has one.
	Musl bool
}

// Result describes a completed installation.
type Result struct {
	// Version that was installed.
	Version string
	// Tag of the release the binary came from.
	Tag string
	// Asset is the name of the downloaded release asset.
	Asset string
	// Path of the installed executable.
	Path string
}

// Installer finds, downloads and installs Biome CLI binaries.
type Installer struct {
	registry   github.Registry
	downloader github.Downloader
}

// New creates an Installer reading releases from registry and fetching assets with downloader.
func New(registry github.Registry, downloader github.Downloader) *Installer {
	return &Installer{
		registry:   registry,
		downloader: downloader,
	}
}

// Install runs the whole installation for opts. Nothing is written to disk
// before both the release and the matching asset have been found.
func (i *Installer) Install(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "installer")

	logger.InfoKV(ctx, "Looking for the Biome CLI release", "version", opts.Version)

	release, version, err := i.findRelease(ctx, opts.Version)
	if err != nil {
		return nil, explainRegistryError(err)
	}

	logger.InfoKV(ctx, "Found release", "tag", release.TagName, "id", release.ID)

	asset, err := i.findAsset(ctx, release, version, opts)
	if err != nil {
		return nil, explainRegistryError(err)
	}

	logger.InfoKV(ctx, "Found asset", "name", asset.Name, "size", asset.Size)

	path, err := i.installAsset(ctx, asset, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Version: version.String(),
		Tag:     release.TagName,
		Asset:   asset.Name,
		Path:    path,
	}, nil
}

// findRelease turns the requested version into a published release. Anything
// but "latest" is coerced to a single version whose tag must exist, so "^1.5.0"
// means 1.5.0 and "1.9" means 1.9.0.
func (i *Installer) findRelease(ctx context.Context, requested string) (*github.Release, *semver.Version, error) {
	requested = strings.TrimSpace(requested)

	if biome.ClassifySpecifier(requested) == biome.SpecifierLatest {
		published, err := common.ListPublished(ctx, i.registry, common.StableVersion)
		if err != nil {
			return nil, nil, err
		}

		if len(published) == 0 {
			return nil, nil, ErrInvalidVersion
		}

		logger.InfoKV(ctx, "Resolved the latest version", "version", published[0].Version)

		return &published[0].Release, published[0].Version, nil
	}

	version, ok := biome.Coerce(requested)
	if !ok {
		return nil, nil, ErrInvalidVersion
	}

	logger.DebugKV(ctx, "Coerced the requested version", "requested", requested, "version", version)

	return i.releaseByVersion(ctx, requested, version)
}

// releaseByVersion fetches the release tagged for version.
func (i *Installer) releaseByVersion(
	ctx context.Context,
	requested string,
	version *semver.Version,
) (*github.Release, *semver.Version, error) {
	release, err := i.registry.GetReleaseByTag(ctx, biome.Tag(version))
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			return nil, nil, fmt.Errorf("version %s of the Biome CLI does not exist: %w", requested, ErrVersionNotFound)
		}

		return nil, nil, err
	}

	return release, version, nil
}

// findAsset picks the asset built for the requested platform and architecture.
func (i *Installer) findAsset(
	ctx context.Context,
	release *github.Release,
	version *semver.Version,
	opts *Options,
) (*github.Asset, error) {
	suffix, err := biome.AssetSuffix(opts.Platform, opts.Architecture)
	if err != nil {
		return nil, err
	}

	suffixes := []string{suffix}
	if opts.Musl && opts.Platform == biome.Linux {
		suffixes = []string{biome.MuslAssetSuffix(opts.Architecture), suffix}
	}

	assets, err := i.registry.ListAssets(ctx, release.ID)
	if err != nil {
		return nil, fmt.Errorf("list assets of %s: %w", release.TagName, err)
	}

	logger.DebugKV(ctx, "Listed release assets", "count", len(assets), "suffixes", suffixes)

	for _, candidate := range suffixes {
		for idx := range assets {
			if strings.HasSuffix(assets[idx].Name, candidate) {
				return &assets[idx], nil
			}
		}
	}

	return nil, fmt.Errorf("could not find a Biome CLI release for %s (%s) for the given version (%s): %w",
		opts.Platform, opts.Architecture, version, ErrAssetNotFound)
}

// explainRegistryError rewrites rate limit failures into actionable advice.
func explainRegistryError(err error) error {
	var rateLimitErr *github.RateLimitError
	if !errors.As(err, &rateLimitErr) {
		return err
	}

	retry := "once the quota resets"
	if !rateLimitErr.Reset.IsZero() {
		retry = fmt.Sprintf("after %s (in %s)",
			rateLimitErr.Reset.UTC().Format(time.RFC3339),
			time.Until(rateLimitErr.Reset).Round(time.Second))
	}

	return fmt.Errorf("%w: please try again %s; if you have not already done so, "+
		"authenticate calls to the GitHub API by setting the GITHUB_TOKEN environment variable",
		ErrRateLimited, retry)
}
