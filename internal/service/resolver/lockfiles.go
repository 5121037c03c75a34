package resolver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
)

const (
	npmLockFile  = "package-lock.json"
	pnpmLockFile = "pnpm-lock.yaml"
	yarnLockFile = "yarn.lock"
	bunLockFile  = "bun.lock"

	// npmInstallPath is the package-lock.json key of the installed CLI package.
	npmInstallPath = "node_modules/" + biome.PackageName
	// pnpmRootImporter is the importer of the workspace root in pnpm lock files v9.
	pnpmRootImporter = "."
	// pnpmDefaultCatalog is the name pnpm gives the unnamed catalog.
	pnpmDefaultCatalog = "default"
)

// fromNpmLock reads the installed version from package-lock.json.
func fromNpmLock(ctx context.Context, root string) string {
	var lock struct {
		Packages map[string]struct {
			Version string `json:"version"`
		} `json:"packages"`
	}

	contents, ok := readSource(ctx, root, npmLockFile)
	if !ok {
		return ""
	}

	if err := json.Unmarshal(contents, &lock); err != nil {
		skip(ctx, err)
		return ""
	}

	return lock.Packages[npmInstallPath].Version
}

// pnpmEntry is a dependency in a pnpm lock file: a bare version in old
// lock files or a {specifier, version} mapping in newer ones.
type pnpmEntry struct {
	Version string
}

// UnmarshalYAML accepts both entry shapes.
func (e *pnpmEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Version = node.Value
		return nil
	}

	var full struct {
		Version string `yaml:"version"`
	}

	if err := node.Decode(&full); err != nil {
		return err
	}

	e.Version = full.Version

	return nil
}

// pnpmDependencies maps package names to lock entries.
type pnpmDependencies map[string]pnpmEntry

// pnpmImporter is one workspace project of a pnpm lock file.
type pnpmImporter struct {
	Dependencies    pnpmDependencies `yaml:"dependencies"`
	DevDependencies pnpmDependencies `yaml:"devDependencies"`
}

// pnpmLock covers the lock file shapes of pnpm 5 through 9.
type pnpmLock struct {
	Importers       map[string]pnpmImporter     `yaml:"importers"`
	Catalogs        map[string]pnpmDependencies `yaml:"catalogs"`
	Dependencies    pnpmDependencies            `yaml:"dependencies"`
	DevDependencies pnpmDependencies            `yaml:"devDependencies"`
}

// fromPnpmLock tries the importer, catalog and flat lock file shapes in that order.
func fromPnpmLock(ctx context.Context, root string) string {
	contents, ok := readSource(ctx, root, pnpmLockFile)
	if !ok {
		return ""
	}

	var lock pnpmLock
	if err := yaml.Unmarshal(contents, &lock); err != nil {
		skip(ctx, err)
		return ""
	}

	importer := lock.Importers[pnpmRootImporter]

	candidates := []pnpmDependencies{
		importer.DevDependencies,
		importer.Dependencies,
		lock.Catalogs[pnpmDefaultCatalog],
	}

	for _, name := range sortedKeys(lock.Catalogs) {
		if name != pnpmDefaultCatalog {
			candidates = append(candidates, lock.Catalogs[name])
		}
	}

	candidates = append(candidates, lock.DevDependencies, lock.Dependencies)

	for _, dependencies := range candidates {
		if version := stripPeerSuffix(dependencies[biome.PackageName].Version); version != "" {
			return version
		}
	}

	return ""
}

// yarnEntry is the part of a yarn.lock block the resolver reads.
type yarnEntry struct {
	Version string `yaml:"version"`
}

// fromYarnLock reads the resolved version from a Berry (YAML) lock file and
// falls back to scanning the Yarn Classic format.
func fromYarnLock(ctx context.Context, root string) string {
	contents, ok := readSource(ctx, root, yarnLockFile)
	if !ok {
		return ""
	}

	var lock map[string]yaml.Node
	if err := yaml.Unmarshal(contents, &lock); err == nil {
		for _, key := range sortedKeys(lock) {
			if !strings.HasPrefix(key, biome.PackageName+"@") {
				continue
			}

			node := lock[key]

			var entry yarnEntry
			if err = node.Decode(&entry); err == nil && entry.Version != "" {
				return entry.Version
			}

			break
		}
	} else {
		logger.DebugKV(ctx, "yarn.lock is not YAML, reading it as a Yarn Classic lock file", "error", err)
	}

	return fromClassicYarnLock(contents)
}

// fromClassicYarnLock scans a Yarn Classic lock file for the version line of the package block.
func fromClassicYarnLock(contents []byte) string {
	var (
		scanner = bufio.NewScanner(bytes.NewReader(contents))
		inBlock bool
	)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			inBlock = classicBlockMatches(trimmed)
			continue
		}

		if !inBlock {
			continue
		}

		if value, found := strings.CutPrefix(trimmed, "version "); found {
			return strings.Trim(strings.TrimSpace(value), `"`)
		}
	}

	return ""
}

// classicBlockMatches checks the descriptors of a Yarn Classic block header.
func classicBlockMatches(header string) bool {
	header = strings.TrimSuffix(header, ":")

	for descriptor := range strings.SplitSeq(header, ",") {
		descriptor = strings.Trim(strings.TrimSpace(descriptor), `"`)
		if strings.HasPrefix(descriptor, biome.PackageName+"@") {
			return true
		}
	}

	return false
}

// fromBunLock reads bun.lock, whose packages map to ["<name>@<version>", ...] tuples.
func fromBunLock(ctx context.Context, root string) string {
	contents, ok := readSource(ctx, root, bunLockFile)
	if !ok {
		return ""
	}

	var lock struct {
		Packages map[string][]json.RawMessage `json:"packages"`
	}

	if err := decodeJSONC(contents, &lock); err != nil {
		skip(ctx, err)
		return ""
	}

	entry := lock.Packages[biome.PackageName]
	if len(entry) == 0 {
		return ""
	}

	var resolution string
	if err := json.Unmarshal(entry[0], &resolution); err != nil {
		skip(ctx, err)
		return ""
	}

	segments := strings.Split(resolution, "@")

	return segments[len(segments)-1]
}

// readSource reads a file of the project, logging and reporting false when it cannot.
func readSource(ctx context.Context, root, name string) ([]byte, bool) {
	contents, err := os.ReadFile(filepath.Clean(filepath.Join(root, name)))
	if err != nil {
		if os.IsNotExist(err) {
			logger.DebugKV(ctx, "File not found", "file", name)
		} else {
			skip(ctx, err)
		}

		return nil, false
	}

	return contents, true
}

// decodeJSONC decodes JSON that may contain comments and trailing commas.
func decodeJSONC(contents []byte, out any) error {
	standardized, err := hujson.Standardize(contents)
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	return json.Unmarshal(standardized, out)
}

// skip logs why a source gave no answer.
func skip(ctx context.Context, err error) {
	logger.InfoKV(ctx, "Skipping unreadable file", "error", err)
}

// stripPeerSuffix drops the peer dependency annotations pnpm appends to versions.
func stripPeerSuffix(version string) string {
	if i := strings.IndexAny(version, "(_"); i >= 0 {
		version = version[:i]
	}

	return strings.TrimSpace(version)
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
