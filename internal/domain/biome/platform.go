package biome

import (
	"errors"
	"fmt"
	"strings"
)

// Platform is the operating system naming used in Biome asset names.
type Platform string

// Architecture is the CPU naming used in Biome asset names.
type Architecture string

const (
	// Linux platform.
	Linux Platform = "linux"
	// Darwin platform.
	Darwin Platform = "darwin"
	// Windows platform; Biome assets follow Node.js and call it win32.
	Windows Platform = "win32"

	// X64 architecture (amd64 in Go terms).
	X64 Architecture = "x64"
	// ARM64 architecture.
	ARM64 Architecture = "arm64"

	// binaryName is the canonical name the installed CLI is given.
	binaryName = "biome"
	// muslSuffix marks the statically linked Linux builds.
	muslSuffix = "-musl"
)

var (
	// ErrUnsupportedPlatform is returned for operating systems Biome does not publish binaries for.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrUnsupportedArchitecture is returned for CPUs Biome does not publish binaries for.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
)

// ParsePlatform accepts both Biome (win32) and Go (windows) spellings.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linux":
		return Linux, nil
	case "darwin", "macos":
		return Darwin, nil
	case "win32", "windows":
		return Windows, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
}

// ParseArchitecture accepts both Biome (x64) and Go (amd64) spellings.
func ParseArchitecture(s string) (Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x64", "amd64", "x86_64":
		return X64, nil
	case "arm64", "aarch64":
		return ARM64, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedArchitecture, s)
	}
}

// AssetSuffix returns the suffix the release asset name for the target ends with.
func AssetSuffix(platform Platform, arch Architecture) (string, error) {
	switch platform {
	case Linux, Darwin:
		return fmt.Sprintf("%s-%s", platform, arch), nil
	case Windows:
		return fmt.Sprintf("%s-%s.exe", platform, arch), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
}

// MuslAssetSuffix returns the suffix of the statically linked Linux build for arch.
func MuslAssetSuffix(arch Architecture) string {
	return fmt.Sprintf("%s-%s%s", Linux, arch, muslSuffix)
}

// ExecutableName is the file name the CLI is installed under.
func ExecutableName(platform Platform) string {
	if platform == Windows {
		return binaryName + ".exe"
	}

	return binaryName
}
