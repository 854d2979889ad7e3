package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ErrNotFound is returned by FindUp when no ancestor contains the requested entry.
var ErrNotFound = errors.New("not found in any parent directory")

// KlspFS wraps the filesystem operations used by the server.
type KlspFS interface {
	MkdirAll(path string) error
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadFile(name string) ([]byte, error)
	// WriteFileAtomic replaces name with data, creating parent directories.
	// Readers never observe a partially written file.
	WriteFileAtomic(name string, data []byte) error
	TempFile(dir, pattern string) (*os.File, error)
	Remove(name string) error
	// DirFS returns a read-only view rooted at dir.
	DirFS(dir string) fs.FS
	// FindUp returns the nearest directory at or above dir that contains name.
	FindUp(dir string, name string) (string, error)
}

type osFS struct{}

// New creates a KlspFS backed by the operating system.
func New() KlspFS {
	return osFS{}
}

func (osFS) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

func (osFS) DirExists(path string) (bool, error) {
	return statIs(path, true)
}

func (osFS) FileExists(path string) (bool, error) {
	return statIs(path, false)
}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osFS) WriteFileAtomic(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func (osFS) TempFile(dir, pattern string) (*os.File, error) { return os.CreateTemp(dir, pattern) }

func (osFS) Remove(name string) error { return os.Remove(name) }

func (osFS) DirFS(dir string) fs.FS { return os.DirFS(dir) }

func (osFS) FindUp(dir string, name string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(current, name)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotFound
		}
		current = parent
	}
}

// statIs reports whether path exists and is (or is not) a directory. A missing path is not an error.
func statIs(path string, wantDir bool) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir() == wantDir, nil
}
