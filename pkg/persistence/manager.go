// Package persistence loads and saves registered settings types to sections
// of JSON settings documents.
//
// A document holds any number of settings types, each under its own section
// path, e.g. "App:Window" for {"App":{"Window":{...}}}. Loading copies the
// stored values into the registry's current instance; saving rewrites only
// the manager's section and leaves every sibling key untouched.
package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/mesh-intelligence/keepsake/internal/document"
	"github.com/mesh-intelligence/keepsake/internal/section"
	"github.com/mesh-intelligence/keepsake/pkg/notify"
	"github.com/mesh-intelligence/keepsake/pkg/registry"
	"github.com/mesh-intelligence/keepsake/pkg/schema"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Manager persists one registered settings type T.
//
// Calls are synchronous. Two managers sharing a file read, modify and write
// the whole document independently, so concurrent saves to the same file
// race and the last writer wins.
type Manager[T any] struct {
	registry   *registry.Registry
	fs         types.FileSystem
	schema     *schema.Schema[T]
	serializer types.Serializer[T]
	opts       types.Options
	meta       types.Metadata
	path       section.Path
	file       string
	logger     *slog.Logger
	onError    func(error)

	mu     sync.Mutex
	loaded bool
	sub    *notify.Subscription
}

// New returns a manager for T, which must already be registered in reg.
func New[T any](reg *registry.Registry, fsys types.FileSystem, s *schema.Schema[T], opts types.Options, options ...Option) (*Manager[T], error) {
	if reg == nil || fsys == nil || s == nil {
		return nil, fmt.Errorf("persistence: registry, file system and schema are required: %w", types.ErrSyncPrecondition)
	}
	if _, err := registry.Current[T](reg); err != nil {
		return nil, fmt.Errorf("persistence for %s: %w", s.Name(), err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg := settings{logger: slog.Default()}
	for _, o := range options {
		o(&cfg)
	}

	meta := cfg.meta.WithDefaults(s.Name())
	path, err := section.Parse(meta.Section)
	if err != nil {
		return nil, err
	}

	var ser types.Serializer[T] = s
	if cfg.serializer != nil {
		custom, ok := cfg.serializer.(types.Serializer[T])
		if !ok {
			return nil, fmt.Errorf("persistence for %s: serializer %T does not handle this type", s.Name(), cfg.serializer)
		}
		ser = custom
	}

	m := &Manager[T]{
		registry:   reg,
		fs:         fsys,
		schema:     s,
		serializer: ser,
		opts:       opts,
		meta:       meta,
		path:       path,
		file:       filepath.Join(opts.LocalFilesDirectory, meta.File),
		logger:     cfg.logger.With("type", s.Name(), "section", meta.Section),
		onError:    cfg.onError,
	}
	if m.onError == nil {
		m.onError = func(err error) {
			m.logger.Error("autosave failed", "file", m.file, "err", err)
		}
	}
	return m, nil
}

// FilePath returns the absolute path of the settings document.
func (m *Manager[T]) FilePath() string {
	return m.file
}

// Section returns the colon separated section the manager owns.
func (m *Manager[T]) Section() string {
	return m.path.String()
}

// Loaded reports whether Load has completed at least once.
func (m *Manager[T]) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Load reads the manager's section into the current instance.
//
// A missing file is created holding an empty document when
// CreateSettingsFile is set and is an ErrFileMissing error otherwise. A file
// that is not JSON fails with ErrMalformedDocument and is left as it is. An
// absent or undecodable section loads a clone of the default instance
// instead. With AutoSave, the first successful Load subscribes the manager
// to the current instance so each change is saved; later loads reuse that
// subscription.
func (m *Manager[T]) Load() error {
	current, err := registry.Current[T](m.registry)
	if err != nil {
		return err
	}

	var observable notify.Observable
	if m.opts.AutoSave {
		o, ok := any(current).(notify.Observable)
		if !ok {
			return fmt.Errorf("autosave %s: %w", m.schema.Name(), types.ErrNotObservable)
		}
		observable = o
	}

	if !m.fs.Exists(m.file) {
		if !m.opts.CreateSettingsFile {
			return fmt.Errorf("load %s: %w", m.file, types.ErrFileMissing)
		}
		if err := m.create(); err != nil {
			return err
		}
	}

	root, err := m.read()
	if err != nil {
		return err
	}

	src, err := m.source(root)
	if err != nil {
		return err
	}
	if err := m.schema.Copy(src, current); err != nil {
		return fmt.Errorf("load %s: %w", m.schema.Name(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if observable != nil && m.sub == nil {
		m.sub = observable.Subscribe(m.autosave)
	}
	m.loaded = true
	return nil
}

// Save writes the current instance to the manager's section, replacing the
// previous content of that section and nothing else. The file must exist;
// Save never creates it.
func (m *Manager[T]) Save() error {
	current, err := registry.Current[T](m.registry)
	if err != nil {
		return err
	}
	if !m.fs.Exists(m.file) {
		return fmt.Errorf("save %s: %w", m.file, types.ErrFileMissing)
	}

	root, err := m.read()
	if err != nil {
		return err
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return fmt.Errorf("save %s: top-level value is %s: %w", m.file, document.Kind(root), types.ErrMalformedDocument)
	}

	node, err := m.serializer.Serialize(current)
	if err != nil {
		return fmt.Errorf("save %s: %w", m.schema.Name(), err)
	}
	if err := section.Assign(obj, m.path, node); err != nil {
		return err
	}

	data, err := document.Format(obj)
	if err != nil {
		return err
	}
	if err := m.fs.WriteFile(m.file, data); err != nil {
		return fmt.Errorf("save %s: %w", m.file, err)
	}
	m.logger.Debug("settings saved", "file", m.file)
	return nil
}

// Close stops autosaving. The manager can be loaded again afterwards.
func (m *Manager[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sub.Unsubscribe()
	m.sub = nil
	return nil
}

func (m *Manager[T]) autosave(notify.Change) {
	if err := m.Save(); err != nil {
		m.onError(err)
	}
}

func (m *Manager[T]) create() error {
	if err := m.fs.MkdirAll(filepath.Dir(m.file)); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	err := m.fs.CreateFile(m.file, []byte(document.Empty))
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("creating settings file: %w", err)
	}
	m.logger.Info("created settings file", "file", m.file)
	return nil
}

func (m *Manager[T]) read() (any, error) {
	data, err := m.fs.ReadFile(m.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", m.file, types.ErrFileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.file, err)
	}
	root, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", m.file, types.ErrMalformedDocument, err)
	}
	return root, nil
}

// source returns the instance Load copies from: the stored section when it
// decodes, a clone of the default otherwise.
func (m *Manager[T]) source(root any) (*T, error) {
	node, ok := section.Lookup(root, m.path)
	if ok {
		v, err := m.serializer.Deserialize(node)
		if err == nil {
			return v, nil
		}
		m.logger.Warn("section cannot be loaded, using defaults", "file", m.file, "err", err)
	} else {
		m.logger.Debug("section not found, using defaults", "file", m.file)
	}

	def, err := registry.Default[T](m.registry)
	if err != nil {
		return nil, err
	}
	return m.schema.Clone(def)
}
