package resolver

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/service/common"
)

const (
	msgNoWorkingDir      = "No working directory specified, using the current working directory"
	msgMissingWorkingDir = "The specified working directory does not exist, using the current working directory instead"
	msgNotCheckedOut     = "No package.json found in the working directory; has the repository been checked out?"
	msgPinRecommended    = "The Biome version in package.json is a range; pin an exact version for reproducible results"
	msgFallback          = "Could not determine the Biome version, falling back to the latest release. " +
		"Make sure the working directory is correct and the repository has been checked out"
)

// lookupFunc answers with a version for the project rooted at root, or "" for no opinion.
type lookupFunc func(ctx context.Context, root string) string

// source is one named step of the cascade.
type source struct {
	name   string
	lookup lookupFunc
}

// Resolver runs the version cascade. It only reaches the registry to
// resolve ranges found in package.json.
type Resolver struct {
	registry    common.ReleaseLister
	annotations io.Writer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAnnotations sets where ::warning:: workflow commands are written.
func WithAnnotations(w io.Writer) Option {
	return func(r *Resolver) {
		if w != nil {
			r.annotations = w
		}
	}
}

// New creates a Resolver that resolves ranges against registry.
// Warnings are annotated on stdout unless WithAnnotations says otherwise.
func New(registry common.ReleaseLister, opts ...Option) *Resolver {
	r := &Resolver{
		registry:    registry,
		annotations: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the version to install for the project in root: a concrete
// version, a range given explicitly, or biome.Latest.
func (r *Resolver) Resolve(ctx context.Context, root, explicit string) string {
	ctx = logger.WithName(ctx, "resolver")

	if explicit = strings.TrimSpace(explicit); explicit != "" {
		logger.InfoKV(ctx, "Using the version from the input", "version", explicit)
		return explicit
	}

	if !fileExists(filepath.Join(root, packageJSONFile)) {
		r.warn(ctx, msgNotCheckedOut, "dir", root)
	}

	for _, s := range r.sources() {
		version := s.lookup(logger.WithKV(ctx, "source", s.name), root)
		if version != "" {
			logger.InfoKV(ctx, "Detected the Biome version", "source", s.name, "version", version)
			return version
		}
	}

	r.warn(ctx, msgFallback, "dir", root)

	return biome.Latest
}

// sources lists the cascade in priority order. Later sources assume earlier ones had no answer.
func (r *Resolver) sources() []source {
	return []source{
		{name: npmLockFile, lookup: fromNpmLock},
		{name: pnpmLockFile, lookup: fromPnpmLock},
		{name: yarnLockFile, lookup: fromYarnLock},
		{name: bunLockFile, lookup: fromBunLock},
		{name: packageJSONFile, lookup: r.fromManifest},
		{name: "biome configuration", lookup: fromBiomeConfig},
	}
}

// WorkingDirectory returns dir when it exists and the current directory otherwise.
func (r *Resolver) WorkingDirectory(ctx context.Context, dir string) string {
	ctx = logger.WithName(ctx, "resolver")

	if strings.TrimSpace(dir) != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}

		r.warn(ctx, msgMissingWorkingDir, "dir", dir)
	} else {
		logger.Info(ctx, msgNoWorkingDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return cwd
}

// warn logs message and annotates the job with it.
func (r *Resolver) warn(ctx context.Context, message string, kvs ...any) {
	logger.WarnKV(ctx, message, kvs...)
	common.Warning(r.annotations, message)
}

// fileExists reports whether path names an existing file or directory.
func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
