//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/oshokin/setup-biome/internal/domain/biome"
)

// Runner describes the machine the job runs on.
type Runner struct {
	// Platform in Biome asset naming.
	Platform biome.Platform
	// Architecture in Biome asset naming.
	Architecture biome.Architecture
	// Distribution is the OS distribution (ubuntu, darwin, Microsoft Windows Server ...), if known.
	Distribution string
	// DistributionVersion is the distribution release, if known.
	DistributionVersion string
}

// muslDistributions ship musl instead of glibc and need the static Linux builds.
//
//nolint:gochecknoglobals // Read-only lookup table.
var muslDistributions = map[string]bool{
	"alpine": true,
}

// Musl reports whether the runner is a Linux distribution built on musl libc.
func (r *Runner) Musl() bool {
	return r.Platform == biome.Linux && muslDistributions[strings.ToLower(r.Distribution)]
}

// DetectRunner maps the Go runtime target to Biome naming and adds the
// distribution details gopsutil can find. Missing distribution details are
// not an error.
func DetectRunner(ctx context.Context) (*Runner, error) {
	platform, err := biome.ParsePlatform(runtime.GOOS)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	arch, err := biome.ParseArchitecture(runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("detect architecture: %w", err)
	}

	r := &Runner{
		Platform:     platform,
		Architecture: arch,
	}

	distribution, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("detect distribution: %w", ctx.Err())
		}

		return r, nil
	}

	r.Distribution = distribution
	r.DistributionVersion = version

	return r, nil
}
