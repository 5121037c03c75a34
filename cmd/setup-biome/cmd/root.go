package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/setup-biome/internal/config"
	"github.com/oshokin/setup-biome/internal/service/setup"
	"github.com/oshokin/setup-biome/internal/version"
)

var (
	// setupOptions collects the flag values.
	setupOptions = new(setup.Options)

	// rootCmd installs the Biome CLI.
	rootCmd = &cobra.Command{
		Use:   "setup-biome",
		Short: "Install the Biome CLI and add it to the PATH.",
		Long: `Downloads the Biome CLI from GitHub releases and adds it to the PATH.

Without an explicit version the project is inspected, in order:
package-lock.json, pnpm-lock.yaml, yarn.lock, bun.lock, package.json
(including pnpm catalogs) and the $schema of biome.json or biome.jsonc.
When none of them names a version, the latest stable release is installed.

Settings are read from the YAML file given by --config, then from the
GitHub Actions inputs (INPUT_VERSION, INPUT_WORKING-DIR, GITHUB_TOKEN),
then from the flags below.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return setup.Run(ctx, setupOptions)
		},
	}
)

// Execute runs the setup-biome CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&setupOptions.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&setupOptions.Version, "version-spec", "", "version or range to install, or \"latest\"")
	flags.StringVarP(&setupOptions.WorkingDir, "working-dir", "w", "", "directory holding the project lock files")
	flags.StringVar(&setupOptions.Token, "token", "", "GitHub token for API calls (defaults to GITHUB_TOKEN)")
	flags.StringVar(&setupOptions.Platform, "platform", "", "target platform: linux, darwin or win32")
	flags.StringVar(&setupOptions.Architecture, "arch", "", "target architecture: x64 or arm64")
	flags.StringVarP(&setupOptions.InstallDir, "install-dir", "o", "", "directory receiving the binary")
	flags.StringVar(&setupOptions.APIBaseURL, "api-url", "", "GitHub REST API endpoint")
	flags.StringVar(&setupOptions.LogLevel, "log-level", "", "log level: debug, info, warn or error")
}
