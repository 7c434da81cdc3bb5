package fs

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
)

// WriteFile atomically replaces the content of path with data.
//
// The data is written to a temporary file in the same directory, synced to
// disk and then renamed onto path. Readers of path observe either the
// previous content or the complete new content, never a partial write. If
// any step fails, path is left untouched and the temporary file is removed
// best-effort.
func WriteFile(fsys FileSystem, path string, data []byte, perm os.FileMode) error {
	if fsys == nil {
		fsys = Default
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	var (
		tmp string
		f   File
		err error
	)
	// O_EXCL guards against colliding with a concurrent writer's temp file.
	for attempt := 0; attempt < 3; attempt++ {
		tmp = fmt.Sprintf("%s.tmp-%08x", path, rand.Uint32())
		f, err = fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create temp file: %w", err)
		}
	}
	if f == nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = fsys.Remove(tmp)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}

	return nil
}

// ReadFile reads the whole file at path.
func ReadFile(fsys FileSystem, path string) ([]byte, error) {
	if fsys == nil {
		fsys = Default
	}

	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
