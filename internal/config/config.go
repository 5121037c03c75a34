package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/repository/github"
)

// Config holds the inputs of a single setup run.
type Config struct {
	// Version is the explicit version or range to install; empty means "detect".
	Version string `yaml:"version"`
	// WorkingDir is where lock files and manifests are looked up.
	WorkingDir string `yaml:"working_dir"`
	// Platform is the target operating system (linux, darwin, win32).
	Platform string `yaml:"platform"`
	// Architecture is the target CPU (x64, arm64).
	Architecture string `yaml:"architecture"`
	// InstallDir receives the binary; empty means a fresh temporary directory.
	InstallDir string `yaml:"install_dir"`
	// APIBaseURL is the GitHub REST API endpoint.
	APIBaseURL string `yaml:"api_url"`
	// Owner of the repository releases are read from.
	Owner string `yaml:"owner"`
	// Repository releases are read from.
	Repository string `yaml:"repository"`
	// Timeout bounds each HTTP round trip.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Token authenticates GitHub API calls. It is never read from or written to YAML.
	Token string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the optional settings file looked up in the current directory.
	DefaultConfigFilename = "setup-biome.yaml"

	// DefaultLogLevel is used when neither the file nor the environment set one.
	DefaultLogLevel = "info"

	// DefaultFilePermissions restricts saved settings to the owner.
	DefaultFilePermissions = 0o600
)

// Environment variables set by the GitHub Actions runner.
const (
	envInputVersion    = "INPUT_VERSION"
	envInputWorkingDir = "INPUT_WORKING-DIR"
	envInputToken      = "INPUT_TOKEN"
	envGitHubToken     = "GITHUB_TOKEN"
	envGitHubAPIURL    = "GITHUB_API_URL"
	envRunnerDebug     = "RUNNER_DEBUG"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errTargetIsNotSet is returned when platform or architecture were neither given nor detected.
	errTargetIsNotSet = errors.New("platform and architecture must be set")
	// errUnknownLogLevel is returned for log levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads settings from path. A missing file yields empty settings,
// since every field has a default or comes from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return new(Config), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Save validates cfg and writes it to path as YAML. The token is never written.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ApplyEnvironment overlays action inputs and runner variables found through lookup.
// Pass os.LookupEnv in production.
func ApplyEnvironment(cfg *Config, lookup func(string) (string, bool)) {
	if cfg == nil {
		return
	}

	set := func(target *string, keys ...string) {
		for _, key := range keys {
			if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
				*target = strings.TrimSpace(value)
				return
			}
		}
	}

	set(&cfg.Version, envInputVersion)
	set(&cfg.WorkingDir, envInputWorkingDir)
	set(&cfg.Token, envInputToken, envGitHubToken)
	set(&cfg.APIBaseURL, envGitHubAPIURL)

	if value, ok := lookup(envRunnerDebug); ok && strings.TrimSpace(value) == "1" {
		cfg.LogLevel = "debug"
	}
}

// Validate fills in defaults and checks the provided settings. Platform and
// architecture have no default here; callers fill them from the detected runner.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Platform == "" || cfg.Architecture == "" {
		return errTargetIsNotSet
	}

	platform, err := biome.ParsePlatform(cfg.Platform)
	if err != nil {
		return err
	}

	cfg.Platform = string(platform)

	arch, err := biome.ParseArchitecture(cfg.Architecture)
	if err != nil {
		return err
	}

	cfg.Architecture = string(arch)

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = github.DefaultBaseURL
	}

	if _, err = url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	if cfg.Owner == "" || cfg.Repository == "" {
		cfg.Owner, cfg.Repository = biome.Owner, biome.Repository
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = github.DefaultTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}
