// Package section addresses settings subtrees inside a JSON document.
//
// A section such as "App:Window" is parsed into a Path of keys. Lookup walks a
// tree without touching it; Prepare creates the intermediate objects a write
// needs and hands back the parent so the caller assigns the leaf itself.
package section

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Path is an ordered, non-empty sequence of non-empty object keys.
type Path []string

// Parse splits section on types.SectionSeparator. Empty sections and empty
// segments fail with types.ErrInvalidSection.
func Parse(section string) (Path, error) {
	if section == "" {
		return nil, fmt.Errorf("%w: section is empty", types.ErrInvalidSection)
	}
	segments := strings.Split(section, types.SectionSeparator)
	for i, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("%w: empty segment %d in %q", types.ErrInvalidSection, i, section)
		}
	}
	return Path(segments), nil
}

// String joins the path back into section form.
func (p Path) String() string {
	return strings.Join(p, types.SectionSeparator)
}

// Lookup returns the node at path. ok is false as soon as a key is missing
// or an intermediate node is not an object; a present JSON null is returned
// as (nil, true).
func Lookup(tree any, path Path) (node any, ok bool) {
	node = tree
	for _, key := range path {
		obj, isObj := node.(map[string]any)
		if !isObj {
			return nil, false
		}
		node, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return node, len(path) > 0
}

// Prepare walks all but the last key of path from root. A missing
// intermediate, or one holding anything other than an object, is replaced
// in place with an empty object. It returns the object that should receive
// the leaf and the leaf key. Sibling keys are never touched.
func Prepare(root map[string]any, path Path) (parent map[string]any, key string, err error) {
	if root == nil {
		return nil, "", fmt.Errorf("%w: root is nil", types.ErrMalformedDocument)
	}
	if len(path) == 0 {
		return nil, "", fmt.Errorf("%w: path is empty", types.ErrInvalidSection)
	}
	parent = root
	for _, k := range path[:len(path)-1] {
		child, ok := parent[k].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[k] = child
		}
		parent = child
	}
	return parent, path[len(path)-1], nil
}

// Assign stores value at path, creating intermediate objects as Prepare does.
func Assign(root map[string]any, path Path, value any) error {
	parent, key, err := Prepare(root, path)
	if err != nil {
		return err
	}
	parent[key] = value
	return nil
}

// Remove deletes the node at path and reports whether it was present.
// Intermediate objects left empty are kept.
func Remove(root map[string]any, path Path) bool {
	if len(path) == 0 {
		return false
	}
	var parent any = root
	if len(path) > 1 {
		var ok bool
		if parent, ok = Lookup(root, path[:len(path)-1]); !ok {
			return false
		}
	}
	obj, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	key := path[len(path)-1]
	if _, ok := obj[key]; !ok {
		return false
	}
	delete(obj, key)
	return true
}

// Leaves lists the section of every non-object node reachable from tree, in
// key order. Empty objects are listed too since they are addressable.
func Leaves(tree any) []string {
	var out []string
	walk(tree, nil, &out)
	return out
}

func walk(node any, prefix Path, out *[]string) {
	obj, ok := node.(map[string]any)
	if !ok || len(obj) == 0 {
		if len(prefix) > 0 {
			*out = append(*out, prefix.String())
		}
		return
	}
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		next := make(Path, len(prefix), len(prefix)+1)
		copy(next, prefix)
		walk(obj[k], append(next, k), out)
	}
}
