package internal

import (
	"os"
	"path/filepath"
)

// FullPathname returns an absolute version of filename. The name "-"
// for standard input or output is returned unchanged.
func FullPathname(filename string) (string, error) {
	if filename == "-" || filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}

// CreateFile creates the named file, and any missing parent
// directories.
func CreateFile(name string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return nil, err
	}
	return os.Create(name)
}
