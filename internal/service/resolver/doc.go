// Package resolver decides which Biome CLI version a job should install.
//
// The decision is a fixed cascade: the explicit input, then the lock files of
// npm, pnpm, Yarn and Bun, then package.json (pins, ranges resolved against
// the registry, pnpm catalogs), then the $schema URL of the Biome
// configuration, and finally "latest". Every source that cannot answer, for
// whatever reason, is skipped; Resolve never fails.
package resolver
