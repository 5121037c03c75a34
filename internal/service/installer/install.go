package installer

import (
	"bytes"
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
	"github.com/oshokin/setup-biome/internal/repository/github"
	"github.com/oshokin/setup-biome/internal/service/common"

	// Ensure SHA256 is available for digest verification.
	_ "crypto/sha256"
)

const (
	// ExecutableMode is the permission the installed binary gets (rwxr-xr-x).
	ExecutableMode os.FileMode = 0o755

	// envRunnerTemp is the per-job temporary directory on GitHub Actions runners.
	envRunnerTemp = "RUNNER_TEMP"
	// installDirPattern names the temporary install directory.
	installDirPattern = "setup-biome-"
	// sha256DigestPrefix starts the asset digests GitHub publishes.
	sha256DigestPrefix = "sha256:"
)

var errBadDigest = errors.New("malformed asset digest")

// installAsset downloads asset, moves it to its canonical name, makes it
// executable and puts its directory on the PATH. It returns the binary path.
// A temporary install directory is removed again when any step fails.
func (i *Installer) installAsset(ctx context.Context, asset *github.Asset, opts *Options) (_ string, err error) {
	dir, temporary, err := prepareInstallDir(opts.InstallDir)
	if err != nil {
		return "", err
	}

	if temporary {
		defer func() {
			if err != nil {
				_ = os.RemoveAll(dir)
			}
		}()
	}

	downloadPath := filepath.Join(dir, asset.Name)

	logger.InfoKV(ctx, "Downloading the Biome CLI", "url", asset.BrowserDownloadURL)

	if err = i.downloader.Download(ctx, asset.BrowserDownloadURL, downloadPath); err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}

	defer func() {
		_ = os.Remove(downloadPath)
	}()

	binaryPath := filepath.Join(dir, biome.ExecutableName(opts.Platform))

	warnAboutRunningDaemon(ctx, binaryPath)

	if err = applyBinary(downloadPath, binaryPath, asset.Digest); err != nil {
		return "", fmt.Errorf("install %s: %w", binaryPath, err)
	}

	if err = os.Chmod(binaryPath, ExecutableMode); err != nil {
		return "", fmt.Errorf("make %s executable: %w", binaryPath, err)
	}

	if err = common.AddPath(ctx, dir); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Installed the Biome CLI", "path", binaryPath)

	return binaryPath, nil
}

// prepareInstallDir returns dir, created if needed, or a fresh temporary
// directory, in which case temporary is true.
func prepareInstallDir(dir string) (_ string, temporary bool, _ error) {
	if dir == "" {
		temporaryDirectory, err := os.MkdirTemp(os.Getenv(envRunnerTemp), installDirPattern)
		if err != nil {
			return "", false, fmt.Errorf("create install directory: %w", err)
		}

		return temporaryDirectory, true, nil
	}

	if err := os.MkdirAll(dir, ExecutableMode); err != nil {
		return "", false, fmt.Errorf("create install directory: %w", err)
	}

	return filepath.Clean(dir), false, nil
}

// applyBinary swaps the downloaded file in as binaryPath using go-update,
// verifying the registry digest when one is published.
func applyBinary(downloadPath, binaryPath, digest string) error {
	data, err := os.ReadFile(filepath.Clean(downloadPath))
	if err != nil {
		return err
	}

	checksum, err := parseDigest(digest)
	if err != nil {
		return err
	}

	// go-update renames the previous target out of the way, so one must exist.
	if _, err = os.Stat(binaryPath); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		if placeholder, err = os.Create(filepath.Clean(binaryPath)); err != nil {
			return err
		}

		if err = placeholder.Close(); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: binaryPath,
		TargetMode: ExecutableMode,
	}

	if checksum != nil {
		options.Checksum = checksum
		options.Hash = crypto.SHA256
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	oldPath := binaryPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// parseDigest decodes a "sha256:<hex>" digest. Other algorithms are ignored.
func parseDigest(digest string) ([]byte, error) {
	value, found := strings.CutPrefix(strings.TrimSpace(digest), sha256DigestPrefix)
	if !found {
		return nil, nil
	}

	checksum, err := hex.DecodeString(value)
	if err != nil || len(checksum) != crypto.SHA256.Size() {
		return nil, fmt.Errorf("%w: %q", errBadDigest, digest)
	}

	return checksum, nil
}

// warnAboutRunningDaemon flags a Biome process that keeps running the binary being replaced.
func warnAboutRunningDaemon(ctx context.Context, binaryPath string) {
	if _, err := os.Stat(binaryPath); err != nil {
		return
	}

	running, err := common.IsProcessRunning(filepath.Base(binaryPath))
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	if running {
		logger.WarnKV(ctx, "A Biome process is running and keeps using the previous binary until it is restarted",
			"path", binaryPath)
	}
}
