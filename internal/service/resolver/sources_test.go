package resolver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/setup-biome/internal/repository/github"
)

// TestFromPnpmLock covers the importer, catalog and flat lock file shapes.
func TestFromPnpmLock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		lock string
		want string
	}{
		{
			name: "v9 importer dev dependency",
			lock: pnpmLockV9,
			want: "2.0.6",
		},
		{
			name: "v9 importer dependency with peer suffix",
			lock: "importers:\n  .:\n    dependencies:\n      '@biomejs/biome':\n        specifier: 1.9.4\n" +
				"        version: 1.9.4(typescript@5.6.2)\n",
			want: "1.9.4",
		},
		{
			name: "catalog shape",
			lock: "catalogs:\n  default:\n    '@biomejs/biome':\n      specifier: ^1.9.0\n      version: 1.9.2\n",
			want: "1.9.2",
		},
		{
			name: "named catalog shape",
			lock: "catalogs:\n  lint:\n    '@biomejs/biome':\n      specifier: ^1.8.0\n      version: 1.8.1\n",
			want: "1.8.1",
		},
		{
			name: "v6 flat mapping",
			lock: "lockfileVersion: '6.0'\ndevDependencies:\n  '@biomejs/biome':\n    specifier: 1.5.3\n    version: 1.5.3\n",
			want: "1.5.3",
		},
		{
			name: "v5 flat scalar",
			lock: "lockfileVersion: 5.4\ndependencies:\n  '@biomejs/biome': 1.2.2\n",
			want: "1.2.2",
		},
		{
			name: "importer wins over flat",
			lock: pnpmLockV9 + "devDependencies:\n  '@biomejs/biome': 1.0.0\n",
			want: "2.0.6",
		},
		{
			name: "other package only",
			lock: "importers:\n  .:\n    devDependencies:\n      prettier:\n        specifier: 3.0.0\n        version: 3.0.0\n",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, pnpmLockFile, tc.lock)

			require.Equal(t, tc.want, fromPnpmLock(context.Background(), dir))
		})
	}
}

// TestFromYarnLock reads both Berry and Classic lock files.
func TestFromYarnLock(t *testing.T) {
	t.Parallel()

	berry := `# This file is generated by running "yarn install" inside your project.

__metadata:
  version: 8
  cacheKey: 10c0

"@biomejs/biome@npm:^1.9.0":
  version: 1.9.4
  resolution: "@biomejs/biome@npm:1.9.4"
  languageName: node
  linkType: hard

"prettier@npm:3.3.3":
  version: 3.3.3
`

	classic := `# THIS IS AN AUTOGENERATED FILE. DO NOT EDIT THIS FILE DIRECTLY.
# yarn lockfile v1


"@babel/code-frame@^7.0.0":
  version "7.24.7"
  resolved "https://registry.yarnpkg.com/@babel/code-frame/-/code-frame-7.24.7.tgz"

"@biomejs/biome@^1.8.0", "@biomejs/biome@^1.8.3":
  version "1.8.3"
  resolved "https://registry.yarnpkg.com/@biomejs/biome/-/biome-1.8.3.tgz"
  optionalDependencies:
    "@biomejs/cli-linux-x64" "1.8.3"
`

	dir := t.TempDir()
	writeFile(t, dir, yarnLockFile, berry)
	require.Equal(t, "1.9.4", fromYarnLock(context.Background(), dir))

	dir = t.TempDir()
	writeFile(t, dir, yarnLockFile, classic)
	require.Equal(t, "1.8.3", fromYarnLock(context.Background(), dir))

	require.Empty(t, fromYarnLock(context.Background(), t.TempDir()))
}

// TestFromBunLock tolerates the trailing commas bun writes.
func TestFromBunLock(t *testing.T) {
	t.Parallel()

	lock := `{
  "lockfileVersion": 1,
  "workspaces": {
    "": {
      "name": "app",
      "devDependencies": {
        "@biomejs/biome": "^2.0.0",
      },
    },
  },
  "packages": {
    "@biomejs/biome": ["@biomejs/biome@2.0.5", "", { "bin": { "biome": "bin/biome" } }, "sha512-abc"],
    "@biomejs/cli-linux-x64": ["@biomejs/cli-linux-x64@2.0.5", "", {}, "sha512-def"],
  }
}
`

	dir := t.TempDir()
	writeFile(t, dir, bunLockFile, lock)

	require.Equal(t, "2.0.5", fromBunLock(context.Background(), dir))
}

// TestFromManifest_Catalogs resolves default and named pnpm catalogs found in parent directories.
func TestFromManifest_Catalogs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, pnpmWorkspaceFile, `packages:
  - packages/*
catalog:
  '@biomejs/biome': 1.9.1
catalogs:
  lint:
    '@biomejs/biome': 2.0.0
  legacy:
    '@biomejs/biome': ^1.0.0
`)

	project := filepath.Join(root, "packages", "web")

	registry := &memoryRegistry{releases: []github.Release{
		{ID: 1, TagName: "cli/v1.4.0"},
		{ID: 2, TagName: "cli/v1.9.4"},
		{ID: 3, TagName: "@biomejs/biome@2.0.0"},
	}}
	r := newResolver(registry)

	cases := map[string]string{
		"catalog:":        "1.9.1",
		"catalog:default": "1.9.1",
		"catalog:lint":    "2.0.0",
		"catalog:legacy":  "1.9.4",
		"catalog:missing": "",
	}

	for specifier, want := range cases {
		writeFile(t, project, packageJSONFile, `{"devDependencies": {"@biomejs/biome": "`+specifier+`"}}`)

		ctx, _ := observedContext()
		require.Equal(t, want, r.fromManifest(ctx, project), specifier)
	}
}

// TestFromManifest_CatalogWithoutWorkspace has no answer.
func TestFromManifest_CatalogWithoutWorkspace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, packageJSONFile, `{"devDependencies": {"@biomejs/biome": "catalog:"}}`)

	ctx, _ := observedContext()

	// A pnpm-workspace.yaml above the temporary directory would be a broken test environment.
	if _, found := findUpward(dir, pnpmWorkspaceFile); found {
		t.Skip("a pnpm workspace encloses the temporary directory")
	}

	require.Empty(t, newResolver(&memoryRegistry{}).fromManifest(ctx, dir))
}

// TestFromManifest_IgnoresUnsupportedSpecifiers skips tags and workspace protocols.
func TestFromManifest_IgnoresUnsupportedSpecifiers(t *testing.T) {
	t.Parallel()

	for _, specifier := range []string{"latest", "next", "workspace:*", "github:biomejs/biome"} {
		dir := t.TempDir()
		writeFile(t, dir, packageJSONFile, `{"dependencies": {"@biomejs/biome": "`+specifier+`"}}`)

		ctx, _ := observedContext()
		require.Empty(t, newResolver(&memoryRegistry{}).fromManifest(ctx, dir), specifier)
	}
}

// TestFromBiomeConfig reads the schema version from biome.json or biome.jsonc.
func TestFromBiomeConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "biome.jsonc", `{
  // Keep in sync with package.json.
  "$schema": "https://biomejs.dev/schemas/2.1.2/schema.json",
  /* formatter settings */
  "formatter": { "enabled": true, },
}`)

	require.Equal(t, "2.1.2", fromBiomeConfig(context.Background(), dir))

	// biome.json is consulted first.
	writeFile(t, dir, "biome.json", `{"$schema": "https://biomejs.dev/schemas/1.9.4/schema.json"}`)
	require.Equal(t, "1.9.4", fromBiomeConfig(context.Background(), dir))

	// A local schema path carries no version.
	dir = t.TempDir()
	writeFile(t, dir, "biome.json", `{"$schema": "./node_modules/@biomejs/biome/configuration_schema.json"}`)
	require.Empty(t, fromBiomeConfig(context.Background(), dir))
}
