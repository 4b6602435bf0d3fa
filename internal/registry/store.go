package registry

import (
	"github.com/petasbytes/go-assistants/memory"
)

// Store loads and saves the registry snapshot.
type Store interface {
	Load() (*memory.Snapshot, error)
	Save(*memory.Snapshot) error
}

// FileStore keeps the snapshot in a single JSON document at Path.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (*memory.Snapshot, error) { return memory.Load(f.Path) }
func (f FileStore) Save(s *memory.Snapshot) error { return memory.Save(f.Path, s) }
