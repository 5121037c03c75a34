package biome

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// PackageName is the npm package that ships the Biome CLI.
	PackageName = "@biomejs/biome"
	// Owner is the GitHub organization publishing Biome releases.
	Owner = "biomejs"
	// Repository is the GitHub repository publishing Biome releases.
	Repository = "biome"
	// Latest is the sentinel that asks for the newest published release.
	Latest = "latest"

	// catalogPrefix starts a pnpm catalog indirection ("catalog:" or "catalog:<name>").
	catalogPrefix = "catalog:"
	// legacyTagPrefix is used by releases before 2.0.0.
	legacyTagPrefix = "cli/v"
	// packageTagPrefix is used by releases from 2.0.0 on.
	packageTagPrefix = PackageName + "@"
	// packageTagMajor is the first major version tagged with packageTagPrefix.
	packageTagMajor = 2
)

// SpecifierKind is the syntactic class of a version specifier.
type SpecifierKind int

const (
	// SpecifierUnknown is anything that is not recognized; it is treated as absent.
	SpecifierUnknown SpecifierKind = iota
	// SpecifierVersion is a concrete semantic version such as 1.9.4 or 2.0.0-beta.1.
	SpecifierVersion
	// SpecifierRange is a semantic version range such as ^1.0.0 or >=1.5 <2.
	SpecifierRange
	// SpecifierCatalog is a pnpm catalog indirection.
	SpecifierCatalog
	// SpecifierLatest is the "latest" sentinel.
	SpecifierLatest
)

// String implements fmt.Stringer.
func (k SpecifierKind) String() string {
	switch k {
	case SpecifierVersion:
		return "version"
	case SpecifierRange:
		return "range"
	case SpecifierCatalog:
		return "catalog"
	case SpecifierLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// coercePattern finds the first version-looking token in arbitrary text.
var coercePattern = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?(-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?`)

// ClassifySpecifier tells which form a specifier string takes.
// Every input is classifiable; unrecognized strings yield SpecifierUnknown.
func ClassifySpecifier(specifier string) SpecifierKind {
	specifier = strings.TrimSpace(specifier)

	switch {
	case specifier == "":
		return SpecifierUnknown
	case specifier == Latest:
		return SpecifierLatest
	case strings.HasPrefix(specifier, catalogPrefix):
		return SpecifierCatalog
	}

	if _, ok := ParseVersion(specifier); ok {
		return SpecifierVersion
	}

	if _, err := semver.NewConstraint(specifier); err == nil {
		return SpecifierRange
	}

	return SpecifierUnknown
}

// CatalogName returns the catalog referenced by a catalog specifier.
// The empty string designates the default catalog.
func CatalogName(specifier string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(specifier), catalogPrefix))
}

// ParseVersion parses a concrete version, allowing the "v" and "=" prefixes npm accepts.
func ParseVersion(s string) (*semver.Version, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "=")
	s = strings.TrimPrefix(s, "v")

	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, false
	}

	return v, true
}

// Coerce extracts the first version-looking token from s and turns it into a
// full semantic version. Missing minor and patch parts default to zero and a
// prerelease suffix is kept.
func Coerce(s string) (*semver.Version, bool) {
	match := coercePattern.FindStringSubmatch(s)
	if match == nil {
		return nil, false
	}

	minor, patch := match[2], match[3]
	if minor == "" {
		minor = "0"
	}

	if patch == "" {
		patch = "0"
	}

	v, err := semver.StrictNewVersion(fmt.Sprintf("%s.%s.%s%s", match[1], minor, patch, match[4]))
	if err != nil {
		return nil, false
	}

	return v, true
}

// Tag returns the release tag under which version v is published.
func Tag(v *semver.Version) string {
	if v.Major() >= packageTagMajor {
		return packageTagPrefix + v.String()
	}

	return legacyTagPrefix + v.String()
}

// IsReleaseTag reports whether tag follows one of the CLI tagging schemes.
func IsReleaseTag(tag string) bool {
	return strings.HasPrefix(tag, legacyTagPrefix) || strings.HasPrefix(tag, packageTagPrefix)
}

// ParseTag converts a CLI release tag back into its version. Tags whose
// scheme does not match the epoch of the version they carry are rejected.
func ParseTag(tag string) (*semver.Version, bool) {
	if !IsReleaseTag(tag) {
		return nil, false
	}

	v, ok := Coerce(tag)
	if !ok {
		return nil, false
	}

	if strings.HasPrefix(tag, packageTagPrefix) != (v.Major() >= packageTagMajor) {
		return nil, false
	}

	return v, true
}

// SortDescending orders versions from newest to oldest in place.
func SortDescending(versions []*semver.Version) {
	sort.Sort(sort.Reverse(semver.Collection(versions)))
}

// HighestSatisfying returns the newest version matching the range expression.
func HighestSatisfying(versions []*semver.Version, rangeExpr string) (*semver.Version, bool) {
	constraint, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return nil, false
	}

	var best *semver.Version

	for _, v := range versions {
		if !constraint.Check(v) {
			continue
		}

		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}

	return best, best != nil
}
