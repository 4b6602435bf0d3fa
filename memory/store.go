package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Load reads the snapshot document at path. A missing document is the first
// run and yields an empty snapshot. Comments and trailing commas left by hand
// edits are tolerated; anything else malformed is an error.
func Load(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSnapshot(), nil
		}
		return nil, err
	}
	s := NewSnapshot()
	if len(bytes.TrimSpace(b)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(jsonc.ToJSON(b), s); err != nil {
		return nil, fmt.Errorf("memory: decode %s: %w", path, err)
	}
	return s, nil
}

// Save rewrites the whole document. The bytes go to a temporary file in the
// same directory which is then renamed over path, so readers never observe a
// half-written document.
func Save(path string, s *Snapshot) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Encode renders the snapshot exactly as Save writes it.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		s = NewSnapshot()
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("memory: encode: %w", err)
	}
	return append(b, '\n'), nil
}
