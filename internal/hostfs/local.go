package hostfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

type Local struct{}

func (Local) Probe(_ context.Context, path string) (Entry, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	if !info.IsDir() {
		return Entry{Exists: true}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return Entry{Exists: true, IsDir: true, Empty: true}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{Exists: true, IsDir: true}, nil
}

func (Local) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, 0o755)
}

func (Local) RemoveAll(_ context.Context, path string) error {
	return os.RemoveAll(path)
}

func (Local) WriteFile(_ context.Context, path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomicWriteFile(path, data, perm)
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
