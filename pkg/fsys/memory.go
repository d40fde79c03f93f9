package fsys

import (
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Memory is an in-process FileSystem. Paths are cleaned before use and a file
// can only be written inside a directory created with MkdirAll. It is safe for
// concurrent use.
type Memory struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]bool
	writes int
}

var _ types.FileSystem = (*Memory)(nil)

// NewMemory returns an empty in-memory file system holding only the root.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

// Exists reports whether path is a known file or directory.
func (m *Memory) Exists(path string) bool {
	path = filepath.Clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, isFile := m.files[path]
	return isFile || m.dirs[path]
}

// ReadFile returns a copy of the file content.
func (m *Memory) ReadFile(path string) ([]byte, error) {
	path = filepath.Clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

// WriteFile stores a copy of data at path.
func (m *Memory) WriteFile(path string, data []byte) error {
	path = filepath.Clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkWritableLocked("write", path); err != nil {
		return err
	}
	m.files[path] = slices.Clone(data)
	m.writes++
	return nil
}

// CreateFile stores data at path unless a file is already there.
func (m *Memory) CreateFile(path string, data []byte) error {
	path = filepath.Clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; ok {
		return &fs.PathError{Op: "create", Path: path, Err: fs.ErrExist}
	}
	if err := m.checkWritableLocked("create", path); err != nil {
		return err
	}
	m.files[path] = slices.Clone(data)
	m.writes++
	return nil
}

// MkdirAll records path and all of its parents as directories.
func (m *Memory) MkdirAll(path string) error {
	path = filepath.Clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := m.files[p]; ok {
			return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
		}
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}
	for _, p := range missing {
		m.dirs[p] = true
	}
	return nil
}

// Writes returns how many successful WriteFile and CreateFile calls m has
// served.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Files lists the stored file paths in lexical order.
func (m *Memory) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files))
}

func (m *Memory) checkWritableLocked(op, path string) error {
	if m.dirs[path] {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrExist}
	}
	if !m.dirs[filepath.Dir(path)] {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	return nil
}
