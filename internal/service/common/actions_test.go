//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSetFailed escapes reserved characters in the error annotation.
func TestSetFailed(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	SetFailed(&out, "100% broken\nsecond line")

	require.Equal(t, "::error::100%25 broken%0Asecond line\n", out.String())
}

// TestWarning writes a warning annotation on one line.
func TestWarning(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	Warning(&out, "pin it\r\nplease")

	require.Equal(t, "::warning::pin it%0D%0Aplease\n", out.String())
}

// TestAddPath prepends the directory and records it in GITHUB_PATH.
func TestAddPath(t *testing.T) {
	dir := t.TempDir()
	pathFile := filepath.Join(dir, "github_path")
	toolDir := filepath.Join(dir, "tool")

	t.Setenv("PATH", "/usr/bin")
	t.Setenv("GITHUB_PATH", pathFile)

	require.NoError(t, AddPath(context.Background(), toolDir))

	require.True(t, strings.HasPrefix(os.Getenv("PATH"), toolDir+string(os.PathListSeparator)))

	contents, err := os.ReadFile(pathFile)
	require.NoError(t, err)
	require.Equal(t, toolDir+"\n", string(contents))
}

// TestAddPath_OutsideActions only touches the process PATH.
func TestAddPath_OutsideActions(t *testing.T) {
	toolDir := filepath.Join(t.TempDir(), "tool")

	t.Setenv("PATH", "")
	t.Setenv("GITHUB_PATH", "")

	require.NoError(t, AddPath(context.Background(), toolDir))
	require.Equal(t, toolDir, os.Getenv("PATH"))
}
