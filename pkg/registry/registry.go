// Package registry keeps, per settings type, the default instance, the
// current instance and the schema that synchronizes them.
//
// The current instance is handed out once and never replaced: Reset and
// persistence loads copy into it, so references held by the application and
// its subscriptions stay valid for the life of the registry.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/keepsake/pkg/schema"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// key identifies a settings type without reflection; key[A] and key[B] are
// distinct comparable types, so their zero values never collide in a map.
type key[T any] struct{}

type entry interface {
	name() string
	reset() error
}

type typed[T any] struct {
	schema   *schema.Schema[T]
	defaults *T
	current  *T
}

func (e *typed[T]) name() string { return e.schema.Name() }

func (e *typed[T]) reset() error {
	fresh, err := e.schema.Clone(e.defaults)
	if err != nil {
		return err
	}
	return e.schema.Copy(fresh, e.current)
}

// Registry holds one entry per settings type. It is safe for concurrent
// lookups; mutations of the settings instances themselves are the caller's
// concern.
type Registry struct {
	mu      sync.RWMutex
	entries map[any]entry
	order   []any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[any]entry)}
}

// Add registers T with its schema, default and current instances. The
// current instance becomes the one Current returns for the life of r.
func Add[T any](r *Registry, s *schema.Schema[T], defaults, current *T) error {
	if s == nil || defaults == nil || current == nil {
		return fmt.Errorf("register settings type: %w", types.ErrSyncPrecondition)
	}
	k := key[T]{}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[k]; ok {
		return fmt.Errorf("register %s: %w", s.Name(), types.ErrDuplicateRegistration)
	}
	r.entries[k] = &typed[T]{schema: s, defaults: defaults, current: current}
	r.order = append(r.order, k)
	return nil
}

func lookup[T any](r *Registry) (*typed[T], error) {
	r.mu.RLock()
	e, ok := r.entries[key[T]{}]
	r.mu.RUnlock()
	if !ok {
		return nil, types.ErrNotRegistered
	}
	return e.(*typed[T]), nil
}

// Default returns the registered default instance of T. Callers must not
// mutate it.
func Default[T any](r *Registry) (*T, error) {
	e, err := lookup[T](r)
	if err != nil {
		return nil, err
	}
	return e.defaults, nil
}

// Current returns the live instance of T. Every call returns the same
// pointer.
func Current[T any](r *Registry) (*T, error) {
	e, err := lookup[T](r)
	if err != nil {
		return nil, err
	}
	return e.current, nil
}

// Schema returns the schema T was registered with.
func Schema[T any](r *Registry) (*schema.Schema[T], error) {
	e, err := lookup[T](r)
	if err != nil {
		return nil, err
	}
	return e.schema, nil
}

// Reset copies a clone of the default instance into the current instance.
// Listeners on the current instance see one change per field that differs.
// The default itself is never shared with the current instance.
func Reset[T any](r *Registry) error {
	e, err := lookup[T](r)
	if err != nil {
		return err
	}
	if err := e.reset(); err != nil {
		return fmt.Errorf("reset %s: %w", e.name(), err)
	}
	return nil
}

// ResetAll resets every registered type in registration order. It keeps
// going past failures and returns them joined.
func (r *Registry) ResetAll() error {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.order))
	for _, k := range r.order {
		entries = append(entries, r.entries[k])
	}
	r.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		if err := e.reset(); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", e.name(), err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the schema names of the registered types in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k].name())
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
