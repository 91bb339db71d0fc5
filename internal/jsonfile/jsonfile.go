// Package jsonfile holds the shared flat-file persistence helper for the
// tracker and the embedding cache.
package jsonfile

import (
	"os"
	"path/filepath"
)

// WriteAtomic writes via a temp file in the same directory and renames it
// into place, so a crash mid-write leaves the previous file intact. Parent
// directories are created as needed.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
