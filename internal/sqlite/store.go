// Package sqlite stores settings documents in a SQLite database.
//
// The store is a types.FileSystem: directories and documents are rows keyed
// by their cleaned path. Every write adds a row to document_history, so a
// document's earlier revisions stay available through History.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "keepsake.db"

// Store implements types.FileSystem on top of SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
	now      func() time.Time
}

var _ types.FileSystem = (*Store)(nil)

// NewStore creates a detached store. Call Attach before use.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Attach opens (creating if needed) the database in dataDir. Existing
// documents and history are kept.
func (s *Store) Attach(dataDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrStoreAttached
	}
	if dataDir == "" {
		return types.ErrDirectoryEmpty
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return err
	}
	// Single connection: writers are serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}
	stamp := s.timestamp()
	for _, root := range []string{"/", "."} {
		if _, err := db.Exec(`INSERT OR IGNORE INTO directories (path, created_at) VALUES (?, ?)`, root, stamp); err != nil {
			db.Close()
			return fmt.Errorf("creating root directory: %w", err)
		}
	}

	s.db = db
	s.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.attached = false
	return err
}

// Exists reports whether path is a stored document or directory. A detached
// store holds nothing.
func (s *Store) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return false
	}
	path = filepath.Clean(path)
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM documents WHERE path = ? UNION SELECT 1 FROM directories WHERE path = ?`,
		path, path,
	).Scan(&one)
	return err == nil
}

// ReadFile returns the latest content of the document at path.
func (s *Store) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	path = filepath.Clean(path)
	var content []byte
	err := s.db.QueryRow(`SELECT content FROM documents WHERE path = ?`, path).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// WriteFile stores data as the next revision of the document at path. The
// parent directory must exist.
func (s *Store) WriteFile(path string, data []byte) error {
	return s.put("write", filepath.Clean(path), data, false)
}

// CreateFile stores data as the first revision of a new document. It fails
// with fs.ErrExist when the document is already present.
func (s *Store) CreateFile(path string, data []byte) error {
	return s.put("create", filepath.Clean(path), data, true)
}

// MkdirAll records path and its parents as directories.
func (s *Store) MkdirAll(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := mkdirAll(tx, filepath.Clean(path), s.timestamp()); err != nil {
		return err
	}
	return tx.Commit()
}

// History returns every stored revision of the document at path, oldest
// first. A path that was never written has no history.
func (s *Store) History(path string) ([]types.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	path = filepath.Clean(path)
	rows, err := s.db.Query(
		`SELECT history_id, revision, content, written_at FROM document_history WHERE path = ? ORDER BY revision`,
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var revs []types.Revision
	for rows.Next() {
		var (
			rev     types.Revision
			written string
		)
		if err := rows.Scan(&rev.ID, &rev.Number, &rev.Content, &written); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		rev.Path = path
		rev.WrittenAt, err = time.Parse(time.RFC3339Nano, written)
		if err != nil {
			return nil, fmt.Errorf("parsing history time: %w", err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

func (s *Store) put(op, path string, data []byte, create bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := isDir(tx, path); err != nil {
		return err
	} else if ok {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrExist}
	}
	if ok, err := isDir(tx, filepath.Dir(path)); err != nil {
		return err
	} else if !ok {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}

	var rev int
	err = tx.QueryRow(`SELECT revision FROM documents WHERE path = ?`, path).Scan(&rev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading revision: %w", err)
	case create:
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrExist}
	}
	rev++

	stamp := s.timestamp()
	if _, err := tx.Exec(
		`INSERT INTO documents (path, content, revision, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content = excluded.content, revision = excluded.revision, updated_at = excluded.updated_at`,
		path, data, rev, stamp,
	); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO document_history (history_id, path, revision, content, written_at) VALUES (?, ?, ?, ?, ?)`,
		generateUUID(), path, rev, data, stamp,
	); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return tx.Commit()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func isDir(tx *sql.Tx, path string) (bool, error) {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM directories WHERE path = ?`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up directory: %w", err)
	}
	return true, nil
}

func mkdirAll(tx *sql.Tx, path, stamp string) error {
	for p := path; ; p = filepath.Dir(p) {
		var one int
		err := tx.QueryRow(`SELECT 1 FROM documents WHERE path = ?`, p).Scan(&one)
		if err == nil {
			return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("looking up document: %w", err)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO directories (path, created_at) VALUES (?, ?)`, p, stamp); err != nil {
			return fmt.Errorf("creating directory %s: %w", p, err)
		}
		if filepath.Dir(p) == p {
			return nil
		}
	}
}

// generateUUID returns a UUID v7, which sorts by creation time.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
