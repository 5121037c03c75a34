package biome

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

// TestClassifySpecifier covers every specifier form and the unknown fallback.
func TestClassifySpecifier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  SpecifierKind
	}{
		{"1.2.3", SpecifierVersion},
		{"v1.9.4", SpecifierVersion},
		{"2.0.0-beta.1", SpecifierVersion},
		{"^1.0.0", SpecifierRange},
		{"~1.8", SpecifierRange},
		{">=1.5.0 <2.0.0", SpecifierRange},
		{"catalog:", SpecifierCatalog},
		{"catalog:linting", SpecifierCatalog},
		{"latest", SpecifierLatest},
		{"", SpecifierUnknown},
		{"workspace:*", SpecifierUnknown},
		{"next", SpecifierUnknown},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ClassifySpecifier(tc.input), tc.input)
	}
}

// TestCatalogName checks default and named catalog references.
func TestCatalogName(t *testing.T) {
	t.Parallel()

	require.Empty(t, CatalogName("catalog:"))
	require.Equal(t, "linting", CatalogName("catalog:linting"))
}

// TestCoerce extracts versions from tags, URLs and partial inputs.
func TestCoerce(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"cli/v1.9.4", "1.9.4"},
		{"@biomejs/biome@2.1.0", "2.1.0"},
		{"@biomejs/biome@2.0.0-beta.5", "2.0.0-beta.5"},
		{"https://biomejs.dev/schemas/1.8.3/schema.json", "1.8.3"},
		{"v2", "2.0.0"},
		{"1.7", "1.7.0"},
		{"1.9.4(typescript@5.4.0)", "1.9.4"},
	}

	for _, tc := range cases {
		v, ok := Coerce(tc.input)
		require.True(t, ok, tc.input)
		require.Equal(t, tc.want, v.String(), tc.input)
	}

	_, ok := Coerce("no digits here")
	require.False(t, ok)
}

// TestTagEpochs verifies the tag scheme switches at major version 2 and round-trips.
func TestTagEpochs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0.3.0", "1.0.0", "1.9.4", "1.5.3-nightly.81fdedb", "2.0.0", "2.3.1", "3.0.0-beta.2"} {
		v := semver.MustParse(raw)
		tag := Tag(v)

		if v.Major() >= 2 {
			require.Equal(t, "@biomejs/biome@"+raw, tag)
		} else {
			require.Equal(t, "cli/v"+raw, tag)
		}

		parsed, ok := ParseTag(tag)
		require.True(t, ok, tag)
		require.True(t, v.Equal(parsed), tag)
		require.Equal(t, v.String(), parsed.String())
	}
}

// TestParseTag_RejectsForeignTags ignores tags of other packages and mismatched epochs.
func TestParseTag_RejectsForeignTags(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{
		"@biomejs/js-api@1.0.0",
		"lsp/v1.2.3",
		"v1.9.4",
		"cli/v2.0.0",
		"@biomejs/biome@1.9.4",
	} {
		_, ok := ParseTag(tag)
		require.False(t, ok, tag)
	}
}

// TestHighestSatisfying picks the newest version inside the range.
func TestHighestSatisfying(t *testing.T) {
	t.Parallel()

	versions := []*semver.Version{
		semver.MustParse("1.0.0"),
		semver.MustParse("2.0.0"),
		semver.MustParse("1.5.0"),
	}

	best, ok := HighestSatisfying(versions, "^1.0.0")
	require.True(t, ok)
	require.Equal(t, "1.5.0", best.String())

	_, ok = HighestSatisfying(versions, "^3.0.0")
	require.False(t, ok)

	_, ok = HighestSatisfying(versions, "not a range")
	require.False(t, ok)
}

// TestSortDescending orders newest first, releases before their prereleases.
func TestSortDescending(t *testing.T) {
	t.Parallel()

	versions := []*semver.Version{
		semver.MustParse("1.9.4"),
		semver.MustParse("2.0.0-beta.1"),
		semver.MustParse("2.0.0"),
		semver.MustParse("1.10.0"),
	}

	SortDescending(versions)

	got := make([]string, 0, len(versions))
	for _, v := range versions {
		got = append(got, v.String())
	}

	require.Equal(t, []string{"2.0.0", "2.0.0-beta.1", "1.10.0", "1.9.4"}, got)
}
