//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/setup-biome/internal/logger"
)

const (
	// envPath is the search path of the current process.
	envPath = "PATH"
	// envGitHubPath names the file the runner reads extra PATH entries from.
	envGitHubPath = "GITHUB_PATH"

	// pathFilePermissions is used if the runner has not created GITHUB_PATH yet.
	pathFilePermissions = 0o644
)

// AddPath prepends dir to the PATH of this process and, when running under
// GitHub Actions, records it so that later steps of the job see it too.
func AddPath(ctx context.Context, dir string) error {
	dir = filepath.Clean(dir)

	current := os.Getenv(envPath)
	if current == "" {
		current = dir
	} else {
		current = dir + string(os.PathListSeparator) + current
	}

	if err := os.Setenv(envPath, current); err != nil {
		return fmt.Errorf("update PATH: %w", err)
	}

	pathFile := os.Getenv(envGitHubPath)
	if pathFile == "" {
		logger.DebugKV(ctx, "Not running under GitHub Actions, PATH updated for this process only", "dir", dir)
		return nil
	}

	file, err := os.OpenFile(filepath.Clean(pathFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, pathFilePermissions)
	if err != nil {
		return fmt.Errorf("open %s: %w", envGitHubPath, err)
	}

	if _, err = fmt.Fprintln(file, dir); err != nil {
		_ = file.Close()

		return fmt.Errorf("append to %s: %w", envGitHubPath, err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", envGitHubPath, err)
	}

	logger.DebugKV(ctx, "Added directory to the job PATH", "dir", dir)

	return nil
}

// SetFailed writes an ::error:: workflow command for message to w.
// The runner shows it as an annotation and the caller exits non-zero.
func SetFailed(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "::error::%s\n", escapeCommandData(message))
}

// Warning writes a ::warning:: workflow command for message to w.
// The runner shows it as an annotation on the job summary.
func Warning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "::warning::%s\n", escapeCommandData(message))
}

// escapeCommandData encodes the characters workflow commands reserve.
func escapeCommandData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}
