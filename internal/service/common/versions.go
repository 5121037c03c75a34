//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/repository/github"
)

// ListMode selects which releases ListPublished keeps.
type ListMode int

const (
	// AnyVersion keeps every published CLI release, prereleases included.
	AnyVersion ListMode = iota
	// StableVersion keeps only releases that are neither flagged as
	// prerelease on GitHub nor carry a prerelease version component.
	StableVersion
)

// ReleaseLister is the part of github.Registry needed to enumerate versions.
type ReleaseLister interface {
	ListReleases(ctx context.Context) ([]github.Release, error)
}

// Published pairs a CLI version with the release it was published in.
type Published struct {
	Version *semver.Version
	Release github.Release
}

// ListPublished fetches all releases, drops drafts and foreign tags, and
// returns the CLI versions newest first.
func ListPublished(ctx context.Context, lister ReleaseLister, mode ListMode) ([]Published, error) {
	releases, err := lister.ListReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}

	published := make([]Published, 0, len(releases))

	for _, release := range releases {
		if release.Draft {
			continue
		}

		version, ok := biome.ParseTag(release.TagName)
		if !ok {
			continue
		}

		if mode == StableVersion && (release.Prerelease || version.Prerelease() != "") {
			continue
		}

		published = append(published, Published{Version: version, Release: release})
	}

	sort.SliceStable(published, func(i, j int) bool {
		return published[i].Version.GreaterThan(published[j].Version)
	})

	logger.DebugKV(ctx, "Listed published versions", "releases", len(releases), "versions", len(published))

	return published, nil
}

// ListVersions is ListPublished reduced to the versions.
func ListVersions(ctx context.Context, lister ReleaseLister, mode ListMode) ([]*semver.Version, error) {
	published, err := ListPublished(ctx, lister, mode)
	if err != nil {
		return nil, err
	}

	versions := make([]*semver.Version, 0, len(published))
	for _, p := range published {
		versions = append(versions, p.Version)
	}

	return versions, nil
}
