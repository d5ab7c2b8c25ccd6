// Package hostfs is the filesystem boundary of the setup steps. Local talks to
// the os package directly; Remote issues POSIX shell commands through a
// runner so the same steps can prepare a workstation over SSH.
package hostfs

import (
	"context"
	"os"
)

// Entry describes what exists at a path.
type Entry struct {
	Exists bool
	IsDir  bool
	// Empty is only meaningful for directories.
	Empty bool
}

type FS interface {
	Probe(ctx context.Context, path string) (Entry, error)
	MkdirAll(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	// WriteFile replaces path atomically and always applies perm, including
	// when the file already existed.
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
}

func Exists(ctx context.Context, fs FS, path string) bool {
	e, err := fs.Probe(ctx, path)
	return err == nil && e.Exists
}
