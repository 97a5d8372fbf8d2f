package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

const (
	// FileMode is the permission used for every published config file.
	FileMode fs.FileMode = 0o644
	dirMode  fs.FileMode = 0o755
)

// WriteFile publishes data at path. The content goes to a temporary file in
// the same directory and is renamed into place, so readers see either the
// previous content or the new content and never a partial write.
func WriteFile(path string, data []byte) error {
	tmp, err := writeTemp(path, data)
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

// CreateIfAbsent publishes data at path only when nothing exists there yet.
// It reports false without error when another writer created the file first;
// the temporary copy is discarded in that case.
func CreateIfAbsent(path string, data []byte) (bool, error) {
	tmp, err := writeTemp(path, data)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = os.Remove(tmp)
	}()

	err = os.Link(tmp, path)
	switch {
	case err == nil:
		syncDir(filepath.Dir(path))
		return true, nil
	case errors.Is(err, fs.ErrExist):
		return false, nil
	}

	// Some filesystems refuse hard links; fall back to check-then-rename.
	if _, statErr := os.Lstat(path); statErr == nil {
		return false, nil
	}
	if err := os.Rename(tmp, path); err != nil {
		if _, statErr := os.Lstat(path); statErr == nil {
			return false, nil
		}
		return false, fmt.Errorf("rename into place: %w", err)
	}

	syncDir(filepath.Dir(path))
	return true, nil
}

// CopyFile publishes the content of src at dst using WriteFile.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return WriteFile(dst, data)
}

// EnsureDir creates the parent directory of path when it is missing.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// tempPath names a sibling of path that is unique per process and per call.
func tempPath(path string) string {
	return path + ".tmp." + strconv.Itoa(os.Getpid()) + "." + uuid.NewString()[:8]
}

func writeTemp(path string, data []byte) (string, error) {
	tmp := tempPath(path)

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}

	// Write, sync, close in that order; remove the temp file on any failure.
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sync temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temporary file: %w", err)
	}

	return tmp, nil
}

// syncDir makes a completed rename durable across power loss.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
