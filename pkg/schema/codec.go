package schema

import (
	"fmt"

	"github.com/mesh-intelligence/keepsake/internal/document"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Serialize encodes v as a JSON object node keyed by field name.
func (s *Schema[T]) Serialize(v *T) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("serialize %s: %w", s.name, ErrNilInstance)
	}
	obj := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		node, err := f.encode(v)
		if err != nil {
			return nil, fmt.Errorf("serialize %s.%s: %w", s.name, f.Name(), err)
		}
		obj[f.Name()] = node
	}
	return obj, nil
}

// Deserialize builds a new instance from an object node. Keys missing from
// node keep the constructor's values; unknown keys are ignored. Any failure
// wraps types.ErrDeserialization.
func (s *Schema[T]) Deserialize(node any) (*T, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects an object, got %s", types.ErrDeserialization, s.name, document.Kind(node))
	}
	v := s.ctor()
	if err := s.decodeInto(v, obj); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Schema[T]) decodeInto(v *T, obj map[string]any) error {
	for _, f := range s.fields {
		node, ok := obj[f.Name()]
		if !ok {
			continue
		}
		if err := f.decode(v, node); err != nil {
			return fmt.Errorf("%w: %s.%s: %v", types.ErrDeserialization, s.name, f.Name(), err)
		}
	}
	return nil
}
