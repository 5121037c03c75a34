//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import "github.com/Masterminds/semver/v3"

// versionStrings renders versions for readable assertions.
func versionStrings(versions []*semver.Version) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.String())
	}

	return out
}
