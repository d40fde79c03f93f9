package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/keepsake/pkg/fsys"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// historyRecord is one line of a JSONL export.
type historyRecord struct {
	HistoryID string `json:"history_id"`
	Path      string `json:"path"`
	Revision  int    `json:"revision"`
	Content   string `json:"content"`
	WrittenAt string `json:"written_at"`
}

// Export writes every revision of every document to dst as JSON lines,
// ordered by path and revision. The file is replaced atomically.
func (s *Store) Export(dst string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	rows, err := s.db.Query(
		`SELECT history_id, path, revision, content, written_at FROM document_history ORDER BY path, revision`,
	)
	if err != nil {
		return fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for rows.Next() {
		var (
			rec     historyRecord
			content []byte
		)
		if err := rows.Scan(&rec.HistoryID, &rec.Path, &rec.Revision, &content, &rec.WrittenAt); err != nil {
			return fmt.Errorf("scanning history: %w", err)
		}
		rec.Content = string(content)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return fsys.OS{}.WriteFile(dst, buf.Bytes())
}

// Import loads a JSONL export. Revisions already present are skipped; each
// document ends at the highest revision known for it, and the directories it
// lives in are created. Malformed lines are skipped. Loading is
// transactional: either every record is applied or none is.
func (s *Store) Import(src string) (int, error) {
	records, err := readJSONL(src)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return 0, types.ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for _, raw := range records {
		var rec historyRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.HistoryID == "" || rec.Path == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339Nano, rec.WrittenAt); err != nil {
			continue
		}
		rec.Path = filepath.Clean(rec.Path)

		res, err := tx.Exec(
			`INSERT OR IGNORE INTO document_history (history_id, path, revision, content, written_at) VALUES (?, ?, ?, ?, ?)`,
			rec.HistoryID, rec.Path, rec.Revision, []byte(rec.Content), rec.WrittenAt,
		)
		if err != nil {
			return 0, fmt.Errorf("importing %s: %w", rec.HistoryID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		imported++

		if err := mkdirAll(tx, filepath.Dir(rec.Path), rec.WrittenAt); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(
			`INSERT INTO documents (path, content, revision, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET content = excluded.content, revision = excluded.revision, updated_at = excluded.updated_at
			 WHERE excluded.revision > documents.revision`,
			rec.Path, []byte(rec.Content), rec.Revision, rec.WrittenAt,
		); err != nil {
			return 0, fmt.Errorf("restoring %s: %w", rec.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return imported, nil
}

// readJSONL reads a JSONL file and returns each non-empty, valid line.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}
