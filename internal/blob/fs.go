package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSStore keeps blobs as files under a root directory.
type FSStore struct {
	fs   afero.Fs
	root string
}

// NewFSStore returns a store rooted at root on fsys. Use afero.NewOsFs()
// for the local disk.
func NewFSStore(fsys afero.Fs, root string) (*FSStore, error) {
	if err := fsys.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating blob root %s: %w", root, err)
	}
	return &FSStore{fs: fsys, root: root}, nil
}

func (s *FSStore) path(key string) (string, error) {
	clean, err := checkKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put writes r to key, replacing any previous content.
func (s *FSStore) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return 0, fmt.Errorf("creating blob directory: %w", err)
	}

	f, err := s.fs.Create(p)
	if err != nil {
		return 0, fmt.Errorf("creating blob %s: %w", key, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return 0, fmt.Errorf("writing blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing blob %s: %w", key, err)
	}
	return n, nil
}

// Open returns a reader for key.
func (s *FSStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes key.
func (s *FSStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = s.fs.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing blob %s: %w", key, err)
	}
	return nil
}
