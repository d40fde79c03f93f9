// Package fsys provides the FileSystem implementations used by persistence
// managers: OS for real files and Memory for tests and embedded hosts. The
// SQLite-backed implementation lives in pkg/sqlite.
package fsys
