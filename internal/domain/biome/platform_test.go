package biome

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAssetSuffix maps every supported target to its asset suffix.
func TestAssetSuffix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		platform Platform
		arch     Architecture
		want     string
	}{
		{Linux, X64, "linux-x64"},
		{Linux, ARM64, "linux-arm64"},
		{Darwin, X64, "darwin-x64"},
		{Darwin, ARM64, "darwin-arm64"},
		{Windows, X64, "win32-x64.exe"},
		{Windows, ARM64, "win32-arm64.exe"},
	}

	for _, tc := range cases {
		got, err := AssetSuffix(tc.platform, tc.arch)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := AssetSuffix("plan9", X64)
	require.ErrorIs(t, err, ErrUnsupportedPlatform)

	require.Equal(t, "linux-arm64-musl", MuslAssetSuffix(ARM64))
}

// TestParsePlatformAndArchitecture accepts Go and Node.js spellings.
func TestParsePlatformAndArchitecture(t *testing.T) {
	t.Parallel()

	p, err := ParsePlatform("windows")
	require.NoError(t, err)
	require.Equal(t, Windows, p)

	p, err = ParsePlatform("Darwin")
	require.NoError(t, err)
	require.Equal(t, Darwin, p)

	_, err = ParsePlatform("freebsd")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)

	a, err := ParseArchitecture("amd64")
	require.NoError(t, err)
	require.Equal(t, X64, a)

	a, err = ParseArchitecture("aarch64")
	require.NoError(t, err)
	require.Equal(t, ARM64, a)

	_, err = ParseArchitecture("386")
	require.ErrorIs(t, err, ErrUnsupportedArchitecture)
}

// TestExecutableName adds the .exe extension on Windows only.
func TestExecutableName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "biome.exe", ExecutableName(Windows))
	require.Equal(t, "biome", ExecutableName(Linux))
	require.Equal(t, "biome", ExecutableName(Darwin))
}
