package cli

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/mesh-intelligence/keepsake/internal/document"
	"github.com/mesh-intelligence/keepsake/internal/section"
	"github.com/mesh-intelligence/keepsake/pkg/fsys"
	"github.com/mesh-intelligence/keepsake/pkg/sqlite"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// openStore returns the file system selected by the backend setting. The
// caller must call the returned close function.
func openStore(s settings) (types.FileSystem, func() error, error) {
	if s.backend != backendSQLite {
		return fsys.OS{}, func() error { return nil }, nil
	}
	store, err := openSQLite(s)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Detach, nil
}

// openSQLite attaches the SQLite store in the data directory. Commands that
// need revision history call it directly.
func openSQLite(s settings) (sqlite.Store, error) {
	if s.backend != backendSQLite {
		return nil, userError("this command needs --backend %s", backendSQLite)
	}
	store := sqlite.NewStore()
	if err := store.Attach(s.dataDir); err != nil {
		return nil, sysError("attach store: %w", err)
	}
	return store, nil
}

// readDocument loads the settings document at path as an object.
func readDocument(store types.FileSystem, path string) (map[string]any, error) {
	if !store.Exists(path) {
		return nil, userError("%s: %w (run keepsake init)", path, types.ErrFileMissing)
	}
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, sysError("read %s: %w", path, err)
	}
	root, err := document.ParseObject(data)
	if err != nil {
		return nil, userError("%s: %w: %v", path, types.ErrMalformedDocument, err)
	}
	return root, nil
}

// writeDocument replaces the settings document at path with root.
func writeDocument(store types.FileSystem, path string, root map[string]any) error {
	data, err := document.Format(root)
	if err != nil {
		return sysError("format document: %w", err)
	}
	if err := store.WriteFile(path, data); err != nil {
		return sysError("write %s: %w", path, err)
	}
	return nil
}

// ensureDocument creates an empty document at path when it is missing.
func ensureDocument(store types.FileSystem, path string) (bool, error) {
	if store.Exists(path) {
		return false, nil
	}
	if err := store.MkdirAll(filepath.Dir(path)); err != nil {
		return false, sysError("create %s: %w", filepath.Dir(path), err)
	}
	err := store.CreateFile(path, []byte(document.Empty))
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, sysError("create %s: %w", path, err)
	}
	return true, nil
}

// withStore resolves settings, opens the store and runs fn.
func withStore(flags *rootFlags, fn func(s settings, store types.FileSystem) error) error {
	s, err := resolve(flags)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(s)
	if err != nil {
		return err
	}
	err = fn(s, store)
	if cerr := closeStore(); cerr != nil && err == nil {
		err = sysError("close store: %w", cerr)
	}
	return err
}

// sectionOf parses a section argument.
func sectionOf(arg string) (section.Path, error) {
	p, err := section.Parse(arg)
	if err != nil {
		return nil, userError("%q: %w", arg, err)
	}
	return p, nil
}
