package types

// FieldKind classifies how a settings field is synchronized between two
// instances of the same type.
type FieldKind int

// Field kinds.
const (
	// KindPrimitive fields are copied by value: numbers, strings, booleans
	// and enumerations.
	KindPrimitive FieldKind = iota

	// KindContainer fields are synchronized in place; the container object
	// itself is never replaced.
	KindContainer

	// KindComposite fields hold a nested settings object that is copied
	// recursively while keeping the destination's object.
	KindComposite
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindContainer:
		return "container"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}
