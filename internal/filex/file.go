// Package filex prepares on-disk locations for local client data.
package filex

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir creates dir (and parents) on fs when missing.
func EnsureDir(fs afero.Fs, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := fs.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// EnsureParentDir creates the directory that will hold the file at path.
// In-memory sqlite DSNs (":memory:", "file:...?mode=memory") are left alone.
func EnsureParentDir(fs afero.Fs, path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	return EnsureDir(fs, filepath.Dir(path))
}
