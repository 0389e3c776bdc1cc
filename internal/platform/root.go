package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDirName is the directory created next to the user's work when no path
// is given.
const DataDirName = ".noteease"

// ErrRootNotFound is returned by FindRoot when no data directory exists in
// startDir or any parent.
var ErrRootNotFound = errors.New("data directory not found")

// FindRoot walks upwards from startDir looking for a DataDirName directory
// and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, DataDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

// DefaultDataPath returns the nearest existing data directory, or
// DataDirName inside startDir when there is none.
func DefaultDataPath(startDir string) string {
	if root, err := FindRoot(startDir); err == nil {
		return root
	}
	return filepath.Join(startDir, DataDirName)
}
