// Package bootstrap wires settings types into an application at startup.
//
// A Host owns a registry and an ordered list of initializers. Register adds a
// settings type and queues its persistence manager; Initialize builds and
// loads every manager once, in registration order:
//
//	host := bootstrap.New(fsys.OS{}, opts)
//	bootstrap.Register(host, WindowSchema, NewWindow(), NewWindow(),
//		persistence.WithMetadata(types.Metadata{Section: "App:Window"}))
//	if err := host.Initialize(); err != nil {
//		return err
//	}
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/keepsake/pkg/persistence"
	"github.com/mesh-intelligence/keepsake/pkg/registry"
	"github.com/mesh-intelligence/keepsake/pkg/schema"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger handed to every manager. The default is
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Host registers settings types and loads them together.
type Host struct {
	fs       types.FileSystem
	opts     types.Options
	logger   *slog.Logger
	registry *registry.Registry

	mu           sync.Mutex
	initializers []initializer
	managers     map[any]any
	initialized  bool
}

type initializer struct {
	name string
	run  func() error
}

type managerKey[T any] struct{}

// New returns a host persisting through fsys with opts.
func New(fsys types.FileSystem, opts types.Options, options ...Option) *Host {
	h := &Host{
		fs:       fsys,
		opts:     opts,
		logger:   slog.Default(),
		registry: registry.New(),
		managers: make(map[any]any),
	}
	for _, o := range options {
		o(h)
	}
	return h
}

// Registry returns the host's registry.
func (h *Host) Registry() *registry.Registry {
	return h.registry
}

// Register adds T to the registry and queues its manager for Initialize.
// Registering after Initialize fails with ErrAlreadyInitialized.
func Register[T any](h *Host, s *schema.Schema[T], defaults, current *T, options ...persistence.Option) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return fmt.Errorf("register %s: %w", s.Name(), types.ErrAlreadyInitialized)
	}
	if err := registry.Add(h.registry, s, defaults, current); err != nil {
		return err
	}

	options = append([]persistence.Option{persistence.WithLogger(h.logger)}, options...)
	h.initializers = append(h.initializers, initializer{
		name: s.Name(),
		run: func() error {
			m, err := persistence.New(h.registry, h.fs, s, h.opts, options...)
			if err != nil {
				return err
			}
			if err := m.Load(); err != nil {
				return err
			}
			h.mu.Lock()
			h.managers[managerKey[T]{}] = m
			h.mu.Unlock()
			return nil
		},
	})
	return nil
}

// Initialize loads every registered type once, in registration order. It
// stops at the first failure. A second call fails with ErrAlreadyInitialized.
func (h *Host) Initialize() error {
	h.mu.Lock()
	if h.initialized {
		h.mu.Unlock()
		return types.ErrAlreadyInitialized
	}
	h.initialized = true
	inits := h.initializers
	h.mu.Unlock()

	for _, in := range inits {
		if err := in.run(); err != nil {
			return fmt.Errorf("initialize %s: %w", in.name, err)
		}
		h.logger.Debug("settings loaded", "type", in.name)
	}
	return nil
}

// Manager returns the manager Initialize built for T.
func Manager[T any](h *Host) (*persistence.Manager[T], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.managers[managerKey[T]{}]
	if !ok {
		return nil, types.ErrNotRegistered
	}
	return m.(*persistence.Manager[T]), nil
}

// Close stops autosaving for every manager.
func (h *Host) Close() error {
	h.mu.Lock()
	closers := make([]interface{ Close() error }, 0, len(h.managers))
	for _, m := range h.managers {
		closers = append(closers, m.(interface{ Close() error }))
	}
	h.mu.Unlock()

	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
