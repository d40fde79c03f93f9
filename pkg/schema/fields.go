package schema

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/keepsake/internal/document"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Syncable is implemented by container types such as *notify.List and
// *notify.Map. SyncFrom must replace the receiver's elements with src's
// without replacing the receiver.
type Syncable[C any] interface {
	SyncFrom(src C)
	json.Marshaler
	json.Unmarshaler
}

// Primitive declares a field copied by value: numbers, strings, booleans
// and enumerations.
func Primitive[T, V any](name string, get func(*T) V, set func(*T, V)) Field[T] {
	return &primitiveField[T, V]{name: name, get: get, set: set}
}

// Container declares a multi-element field synchronized in place. get must
// return a non-nil container; embedding the container by value guarantees it.
func Container[T any, C Syncable[C]](name string, get func(*T) C) Field[T] {
	return &containerField[T, C]{name: name, get: get}
}

// Composite declares a nested settings object described by nested.
func Composite[T, N any](name string, nested *Schema[N], get func(*T) *N, set func(*T, *N)) Field[T] {
	return &compositeField[T, N]{name: name, schema: nested, get: get, set: set}
}

type primitiveField[T, V any] struct {
	name string
	get  func(*T) V
	set  func(*T, V)
}

func (f *primitiveField[T, V]) Name() string          { return f.name }
func (f *primitiveField[T, V]) Kind() types.FieldKind { return types.KindPrimitive }

func (f *primitiveField[T, V]) copy(src, dst *T) error {
	f.set(dst, f.get(src))
	return nil
}

func (f *primitiveField[T, V]) clone(src, dst *T) error {
	return f.copy(src, dst)
}

func (f *primitiveField[T, V]) encode(v *T) (any, error) {
	return document.FromValue(f.get(v))
}

func (f *primitiveField[T, V]) decode(v *T, node any) error {
	data, err := document.Compact(node)
	if err != nil {
		return err
	}
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	f.set(v, value)
	return nil
}

type containerField[T any, C Syncable[C]] struct {
	name string
	get  func(*T) C
}

func (f *containerField[T, C]) Name() string          { return f.name }
func (f *containerField[T, C]) Kind() types.FieldKind { return types.KindContainer }

func (f *containerField[T, C]) copy(src, dst *T) error {
	f.get(dst).SyncFrom(f.get(src))
	return nil
}

func (f *containerField[T, C]) clone(src, dst *T) error {
	return f.copy(src, dst)
}

func (f *containerField[T, C]) encode(v *T) (any, error) {
	return document.FromValue(f.get(v))
}

func (f *containerField[T, C]) decode(v *T, node any) error {
	data, err := document.Compact(node)
	if err != nil {
		return err
	}
	return f.get(v).UnmarshalJSON(data)
}

type compositeField[T, N any] struct {
	name   string
	schema *Schema[N]
	get    func(*T) *N
	set    func(*T, *N)
}

func (f *compositeField[T, N]) Name() string          { return f.name }
func (f *compositeField[T, N]) Kind() types.FieldKind { return types.KindComposite }

// copy replaces the reference outright when either side is nil and
// otherwise recurses so the destination keeps its nested object.
func (f *compositeField[T, N]) copy(src, dst *T) error {
	s, d := f.get(src), f.get(dst)
	if s == nil || d == nil {
		f.set(dst, s)
		return nil
	}
	return f.schema.Copy(s, d)
}

func (f *compositeField[T, N]) clone(src, dst *T) error {
	s := f.get(src)
	if s == nil {
		f.set(dst, nil)
		return nil
	}
	c, err := f.schema.Clone(s)
	if err != nil {
		return err
	}
	if d := f.get(dst); d != nil {
		return f.schema.Copy(c, d)
	}
	f.set(dst, c)
	return nil
}

func (f *compositeField[T, N]) encode(v *T) (any, error) {
	n := f.get(v)
	if n == nil {
		return nil, nil
	}
	return f.schema.Serialize(n)
}

func (f *compositeField[T, N]) decode(v *T, node any) error {
	if node == nil {
		f.set(v, nil)
		return nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %s", document.Kind(node))
	}
	if cur := f.get(v); cur != nil {
		return f.schema.decodeInto(cur, obj)
	}
	n := f.schema.NewInstance()
	if err := f.schema.decodeInto(n, obj); err != nil {
		return err
	}
	f.set(v, n)
	return nil
}
