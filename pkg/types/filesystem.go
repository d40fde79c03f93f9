package types

// FileSystem is the storage collaborator a persistence manager reads and writes
// settings documents through. Paths are opaque to the manager; implementations
// decide what a directory or file means (the OS, memory, a SQLite table).
type FileSystem interface {
	// Exists reports whether a file or directory is present at path.
	Exists(path string) bool

	// ReadFile returns the full content of the file at path.
	// A missing file yields an error matching fs.ErrNotExist.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of the file at path, creating it if needed.
	WriteFile(path string, data []byte) error

	// MkdirAll creates the directory at path along with any missing parents.
	MkdirAll(path string) error

	// CreateFile creates a new file holding data. It fails with an error
	// matching fs.ErrExist when the file is already present.
	CreateFile(path string, data []byte) error
}

// Serializer converts settings instances to and from JSON document nodes.
// A node is whatever encoding/json produces when decoding into any with
// UseNumber: map[string]any, []any, json.Number, string, bool or nil.
type Serializer[T any] interface {
	Serialize(v *T) (any, error)
	Deserialize(node any) (*T, error)
}
