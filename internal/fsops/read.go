package fsops

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotAFile is returned when a file operation targets a directory.
var ErrNotAFile = errors.New("path is a directory")

// ReadFile returns the contents of the regular file at path as text.
func ReadFile(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s: %w", path, ErrNotAFile)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
