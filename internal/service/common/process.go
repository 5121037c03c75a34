//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// IsProcessRunning reports whether a process other than this one runs the named executable.
// Names are compared case-insensitively so that biome.exe and BIOME.EXE match on Windows.
func IsProcessRunning(executable string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if strings.EqualFold(process.Executable(), executable) {
			return true, nil
		}
	}

	return false, nil
}
