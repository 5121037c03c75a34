package resolver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/service/common"
)

const (
	packageJSONFile   = "package.json"
	pnpmWorkspaceFile = "pnpm-workspace.yaml"
)

// biomeConfigFiles are the configuration file names Biome recognizes, in lookup order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var biomeConfigFiles = []string{"biome.json", "biome.jsonc"}

// packageManifest is the part of package.json the resolver reads.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// pnpmWorkspace is the part of pnpm-workspace.yaml holding catalogs.
type pnpmWorkspace struct {
	Catalog  map[string]string            `yaml:"catalog"`
	Catalogs map[string]map[string]string `yaml:"catalogs"`
}

// fromManifest reads the specifier declared in package.json and turns it into a version.
func (r *Resolver) fromManifest(ctx context.Context, root string) string {
	contents, ok := readSource(ctx, root, packageJSONFile)
	if !ok {
		return ""
	}

	var manifest packageManifest
	if err := json.Unmarshal(contents, &manifest); err != nil {
		skip(ctx, err)
		return ""
	}

	specifier, found := manifest.Dependencies[biome.PackageName]
	if !found {
		specifier = manifest.DevDependencies[biome.PackageName]
	}

	if specifier == "" {
		logger.Debug(ctx, "package.json does not depend on Biome")
		return ""
	}

	return r.fromSpecifier(ctx, root, specifier, true)
}

// fromSpecifier handles pins, ranges and (when allowed) catalog references.
func (r *Resolver) fromSpecifier(ctx context.Context, root, specifier string, followCatalog bool) string {
	specifier = strings.TrimSpace(specifier)

	switch kind := biome.ClassifySpecifier(specifier); kind {
	case biome.SpecifierVersion:
		return specifier
	case biome.SpecifierRange:
		return r.fromRange(ctx, specifier)
	case biome.SpecifierCatalog:
		if !followCatalog {
			logger.DebugKV(ctx, "Ignoring nested catalog reference", "specifier", specifier)
			return ""
		}

		catalogSpecifier := fromCatalog(ctx, root, biome.CatalogName(specifier))
		if catalogSpecifier == "" {
			return ""
		}

		return r.fromSpecifier(ctx, root, catalogSpecifier, false)
	default:
		logger.DebugKV(ctx, "Unsupported version specifier", "specifier", specifier, "kind", kind)
		return ""
	}
}

// fromRange picks the newest published version satisfying rangeExpr.
func (r *Resolver) fromRange(ctx context.Context, rangeExpr string) string {
	r.warn(ctx, msgPinRecommended, "range", rangeExpr)

	if r.registry == nil {
		return ""
	}

	versions, err := common.ListVersions(ctx, r.registry, common.AnyVersion)
	if err != nil {
		logger.InfoKV(ctx, "Could not list published versions", "error", err)
		return ""
	}

	best, ok := biome.HighestSatisfying(versions, rangeExpr)
	if !ok {
		logger.InfoKV(ctx, "No published version satisfies the range", "range", rangeExpr)
		return ""
	}

	return best.String()
}

// fromCatalog looks the package up in the named catalog of the closest pnpm-workspace.yaml.
// The empty name designates the default catalog.
func fromCatalog(ctx context.Context, root, name string) string {
	path, found := findUpward(root, pnpmWorkspaceFile)
	if !found {
		logger.DebugKV(ctx, "No pnpm workspace found", "dir", root)
		return ""
	}

	contents, ok := readSource(ctx, filepath.Dir(path), pnpmWorkspaceFile)
	if !ok {
		return ""
	}

	var workspace pnpmWorkspace
	if err := yaml.Unmarshal(contents, &workspace); err != nil {
		skip(ctx, err)
		return ""
	}

	if name == "" || name == pnpmDefaultCatalog {
		if specifier := workspace.Catalog[biome.PackageName]; specifier != "" {
			return specifier
		}

		name = pnpmDefaultCatalog
	}

	return workspace.Catalogs[name][biome.PackageName]
}

// findUpward searches dir and its parents for a file called name.
func findUpward(dir, name string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(current, name)
		if fileExists(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}

		current = parent
	}
}

// fromBiomeConfig coerces the version embedded in the $schema URL of the Biome configuration.
func fromBiomeConfig(ctx context.Context, root string) string {
	for _, name := range biomeConfigFiles {
		if !fileExists(filepath.Join(root, name)) {
			continue
		}

		contents, ok := readSource(ctx, root, name)
		if !ok {
			continue
		}

		var config struct {
			Schema string `json:"$schema"`
		}

		if err := decodeJSONC(contents, &config); err != nil {
			skip(ctx, err)
			continue
		}

		if version, ok := biome.Coerce(config.Schema); ok {
			return version.String()
		}

		logger.DebugKV(ctx, "No version in the configuration schema", "file", name, "schema", config.Schema)
	}

	return ""
}
