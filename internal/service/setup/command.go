package setup

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/setup-biome/internal/config"
	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/repository/github"
	"github.com/oshokin/setup-biome/internal/service/common"
	"github.com/oshokin/setup-biome/internal/service/installer"
	"github.com/oshokin/setup-biome/internal/service/resolver"
	"github.com/oshokin/setup-biome/internal/version"
)

// Options carries command line overrides. Empty fields keep the value
// from the settings file or the environment.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Version is an explicit version, range or "latest".
	Version string
	// WorkingDir is where lock files and manifests are looked up.
	WorkingDir string
	// Token authenticates GitHub API calls.
	Token string
	// Platform overrides the detected operating system.
	Platform string
	// Architecture overrides the detected CPU architecture.
	Architecture string
	// InstallDir receives the binary.
	InstallDir string
	// APIBaseURL overrides the GitHub REST API endpoint.
	APIBaseURL string
	// LogLevel overrides the log level.
	LogLevel string

	// Output receives workflow commands; defaults to os.Stdout.
	Output io.Writer
	// LookupEnv reads the environment; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// DetectRunner describes the host; defaults to common.DetectRunner.
	DetectRunner func(context.Context) (*common.Runner, error)
}

// Run resolves the Biome CLI version, installs it and puts it on the PATH.
// Any failure is also reported as an ::error:: workflow command.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "setup-biome")

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	result, err := run(ctx, opts, output)
	if err != nil {
		logger.ErrorKV(ctx, "Setup failed", "error", err)
		common.SetFailed(output, err.Error())

		return err
	}

	logger.InfoKV(ctx, "Biome CLI is ready", "version", result.Version, "path", result.Path)

	return nil
}

func run(ctx context.Context, opts *Options, output io.Writer) (*installer.Result, error) {
	cfg, musl, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	client := github.NewClient(
		github.WithBaseURL(cfg.APIBaseURL),
		github.WithRepository(cfg.Owner, cfg.Repository),
		github.WithToken(cfg.Token),
		github.WithTimeout(cfg.Timeout),
		github.WithUserAgent(version.UserAgent()),
	)

	versionResolver := resolver.New(client, resolver.WithAnnotations(output))
	root := versionResolver.WorkingDirectory(ctx, cfg.WorkingDir)
	requested := versionResolver.Resolve(ctx, root, cfg.Version)

	logger.InfoKV(ctx, "Installing the Biome CLI",
		"version", requested,
		"platform", cfg.Platform,
		"architecture", cfg.Architecture,
		"musl", musl)

	return installer.New(client, client).Install(ctx, &installer.Options{
		Version:      requested,
		Platform:     biome.Platform(cfg.Platform),
		Architecture: biome.Architecture(cfg.Architecture),
		InstallDir:   cfg.InstallDir,
		Musl:         musl,
	})
}

// loadConfig layers the settings file, the environment and opts, in that order.
// A target left unset is taken from the detected runner; musl reports whether
// that runner needs the statically linked Linux build.
func loadConfig(ctx context.Context, opts *Options) (_ *config.Config, musl bool, _ error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, false, fmt.Errorf("load configuration: %w", err)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	config.ApplyEnvironment(cfg, lookup)

	override := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}

	override(&cfg.Version, opts.Version)
	override(&cfg.WorkingDir, opts.WorkingDir)
	override(&cfg.Token, opts.Token)
	override(&cfg.Platform, opts.Platform)
	override(&cfg.Architecture, opts.Architecture)
	override(&cfg.InstallDir, opts.InstallDir)
	override(&cfg.APIBaseURL, opts.APIBaseURL)
	override(&cfg.LogLevel, opts.LogLevel)

	var runner *common.Runner

	if cfg.Platform == "" || cfg.Architecture == "" {
		detect := opts.DetectRunner
		if detect == nil {
			detect = common.DetectRunner
		}

		if runner, err = detect(ctx); err != nil {
			return nil, false, fmt.Errorf("detect runner: %w", err)
		}

		logger.InfoKV(ctx, "Detected runner",
			"platform", runner.Platform,
			"architecture", runner.Architecture,
			"distribution", runner.Distribution,
			"distribution_version", runner.DistributionVersion)

		if cfg.Platform == "" {
			cfg.Platform = string(runner.Platform)
		}

		if cfg.Architecture == "" {
			cfg.Architecture = string(runner.Architecture)
		}
	}

	if err = config.Validate(cfg); err != nil {
		return nil, false, fmt.Errorf("validate configuration: %w", err)
	}

	musl = runner != nil && runner.Musl() && cfg.Platform == string(runner.Platform)

	return cfg, musl, nil
}
