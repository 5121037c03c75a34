//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/setup-biome/internal/repository/github"
)

var errTestList = errors.New("test list error")

// staticLister returns a fixed release list.
type staticLister struct {
	releases []github.Release
	err      error
}

// ListReleases returns the configured releases or error.
func (s *staticLister) ListReleases(context.Context) ([]github.Release, error) {
	return s.releases, s.err
}

// TestListVersions_FiltersAndSorts keeps CLI tags of both epochs, newest first.
func TestListVersions_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	lister := &staticLister{releases: []github.Release{
		{ID: 1, TagName: "cli/v1.0.0"},
		{ID: 2, TagName: "@biomejs/biome@2.0.0"},
		{ID: 3, TagName: "cli/v1.5.0"},
		{ID: 4, TagName: "@biomejs/biome@2.1.0", Draft: true},
		{ID: 5, TagName: "@biomejs/js-api@3.0.0"},
		{ID: 6, TagName: "@biomejs/biome@2.0.1-beta.1", Prerelease: true},
		{ID: 7, TagName: "cli/v1.9.0-nightly.abc"},
	}}

	versions, err := ListVersions(context.Background(), lister, AnyVersion)
	require.NoError(t, err)
	require.Equal(t, []string{"2.0.1-beta.1", "2.0.0", "1.9.0-nightly.abc", "1.5.0", "1.0.0"}, versionStrings(versions))

	versions, err = ListVersions(context.Background(), lister, StableVersion)
	require.NoError(t, err)
	require.Equal(t, []string{"2.0.0", "1.5.0", "1.0.0"}, versionStrings(versions))

	published, err := ListPublished(context.Background(), lister, StableVersion)
	require.NoError(t, err)
	require.Equal(t, int64(2), published[0].Release.ID)
}

// TestListVersions_PropagatesErrors surfaces registry failures to the caller.
func TestListVersions_PropagatesErrors(t *testing.T) {
	t.Parallel()

	_, err := ListVersions(context.Background(), &staticLister{err: errTestList}, AnyVersion)
	require.ErrorIs(t, err, errTestList)
}
