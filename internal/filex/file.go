// Package filex contains small filesystem helpers used by the local payload
// store and the admin tooling.
package filex

import (
	"fmt"
	"os"
)

// EnsureDir creates dir and any missing parents. It is a no-op when the
// directory already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// DeleteFile removes a single file. A missing file is reported as an error
// wrapping os.ErrNotExist; callers treating removal as best-effort decide
// whether that matters.
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
