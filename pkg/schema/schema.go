// Package schema describes settings types with explicit field descriptors and
// uses them to synchronize, clone and serialize instances without reflection.
//
// A Schema lists every field of a settings type together with its kind:
//
//	var WindowSchema = schema.New("Window", NewWindow,
//		schema.Primitive("Width", (*Window).Width, (*Window).SetWidth),
//		schema.Container("Recent", (*Window).Recent),
//		schema.Composite("Position", PositionSchema, (*Window).Position, (*Window).SetPosition),
//	)
//
// Copy keeps the destination's nested objects and containers: only their
// contents change, so references held elsewhere stay valid. Serialize and
// Deserialize walk the same descriptors, which keeps the on-disk shape and the
// copy semantics in agreement.
package schema

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// ErrNilInstance is returned when a nil instance is serialized.
var ErrNilInstance = errors.New("schema: nil instance")

// Field describes one field of T. Values are built with Primitive,
// Container and Composite.
type Field[T any] interface {
	// Name is the field name, also used as the JSON key.
	Name() string

	// Kind reports how the field is synchronized.
	Kind() types.FieldKind

	copy(src, dst *T) error
	clone(src, dst *T) error
	encode(v *T) (any, error)
	decode(v *T, node any) error
}

// FieldInfo summarizes a field for listings and diagnostics.
type FieldInfo struct {
	Name string
	Kind types.FieldKind
}

// Schema is the static field list of a settings type T.
type Schema[T any] struct {
	name   string
	ctor   func() *T
	fields []Field[T]
}

var _ types.Serializer[struct{}] = (*Schema[struct{}])(nil)

// New returns the schema named name for T. ctor builds fresh instances, with
// containers and nested objects wired the way the type expects; a nil ctor
// means new(T). New panics on an empty name or duplicate field names since
// both are programming errors in a static declaration.
func New[T any](name string, ctor func() *T, fields ...Field[T]) *Schema[T] {
	if name == "" {
		panic("schema: empty schema name")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name() == "" {
			panic(fmt.Sprintf("schema: %s has a field with an empty name", name))
		}
		if seen[f.Name()] {
			panic(fmt.Sprintf("schema: %s declares field %q twice", name, f.Name()))
		}
		seen[f.Name()] = true
	}
	if ctor == nil {
		ctor = func() *T { return new(T) }
	}
	return &Schema[T]{name: name, ctor: ctor, fields: fields}
}

// Name returns the schema name, which is also the default section.
func (s *Schema[T]) Name() string {
	return s.name
}

// Fields lists the declared fields in order.
func (s *Schema[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldInfo{Name: f.Name(), Kind: f.Kind()}
	}
	return out
}

// NewInstance builds a fresh instance with the schema constructor.
func (s *Schema[T]) NewInstance() *T {
	return s.ctor()
}
