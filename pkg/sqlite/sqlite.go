// Package sqlite provides the public API for the SQLite settings store.
// This package exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"github.com/mesh-intelligence/keepsake/internal/sqlite"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Store is a types.FileSystem that keeps settings documents, and every
// revision written to them, in a SQLite database.
type Store interface {
	types.FileSystem

	// Attach opens the database inside dataDir, creating it if needed.
	Attach(dataDir string) error

	// Detach closes the database. It is idempotent.
	Detach() error

	// History lists the revisions of the document at path, oldest first.
	History(path string) ([]types.Revision, error)

	// Export writes all revisions to a JSONL file.
	Export(dst string) error

	// Import loads a JSONL export and reports how many new revisions it added.
	Import(src string) (int, error)
}

// NewStore creates a detached SQLite store.
//
// Example:
//
//	store := sqlite.NewStore()
//	if err := store.Attach(dataDir); err != nil {
//	    return err
//	}
//	defer store.Detach()
//	mgr, err := persistence.New(reg, store, schema, opts)
func NewStore() Store {
	return sqlite.NewStore()
}
