package schema

import (
	"fmt"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Copy synchronizes every field of src into dst, in declaration order.
//
// Primitive fields are assigned. Containers are synchronized in place.
// Composite fields recurse when both sides hold an object and are replaced
// by src's reference when either side is nil. dst keeps its identity and so
// do the nested objects and containers it already holds.
//
// Copy is not transactional: if a nested copy fails, fields applied before
// the failure stay applied.
func (s *Schema[T]) Copy(src, dst *T) error {
	if src == nil || dst == nil {
		return fmt.Errorf("copy %s: %w", s.name, types.ErrSyncPrecondition)
	}
	for _, f := range s.fields {
		if err := f.copy(src, dst); err != nil {
			return fmt.Errorf("copy %s.%s: %w", s.name, f.Name(), err)
		}
	}
	return nil
}

// Clone returns a structural deep copy of src built with the schema
// constructor. Nested objects are cloned, never shared with src.
func (s *Schema[T]) Clone(src *T) (*T, error) {
	if src == nil {
		return nil, fmt.Errorf("clone %s: %w", s.name, types.ErrSyncPrecondition)
	}
	dst := s.ctor()
	for _, f := range s.fields {
		if err := f.clone(src, dst); err != nil {
			return nil, fmt.Errorf("clone %s.%s: %w", s.name, f.Name(), err)
		}
	}
	return dst, nil
}

// Copy is the function form of (*Schema).Copy.
func Copy[T any](s *Schema[T], src, dst *T) error {
	return s.Copy(src, dst)
}

// Clone is the function form of (*Schema).Clone.
func Clone[T any](s *Schema[T], src *T) (*T, error) {
	return s.Clone(src)
}
