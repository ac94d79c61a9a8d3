package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/magicJie/vaultwarden/internal/filex"
)

// LocalStore keeps payloads under a root directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore returns a store rooted at root. The directory is not created;
// see filex.EnsureDir.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Path(cipherUUID, id string) string {
	return filepath.Join(s.root, cipherUUID, id)
}

func (s *LocalStore) Put(ctx context.Context, path string, r io.Reader) error {
	if err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

func (s *LocalStore) Remove(ctx context.Context, path string) error {
	return filex.DeleteFile(path)
}
