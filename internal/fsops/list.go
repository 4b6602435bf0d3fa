package fsops

import (
	"os"

	"github.com/petasbytes/go-assistants/internal/apperr"
)

// ListFiles lists the non-recursive entries of dir in lexical order, with
// directories suffixed by "/". A path that is missing or is not a directory
// yields apperr.ErrNotADirectory.
func ListFiles(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, apperr.NotADirectory(dir)
	}

	// os.ReadDir sorts by file name, which keeps folder ingestion repeatable.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}
