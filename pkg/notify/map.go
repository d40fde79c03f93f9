package notify

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Map is an observable container keyed by K. Keys keeps insertion order for
// stable iteration. The zero value is an empty map ready to use.
type Map[K comparable, V any] struct {
	Notifier
	values map[K]V
	keys   []K
}

// NewMap returns a map holding a copy of values, keys added in sorted order.
func NewMap[K cmp.Ordered, V any](values map[K]V) *Map[K, V] {
	m := &Map[K, V]{}
	for _, k := range slices.Sorted(maps.Keys(values)) {
		m.put(k, values[k])
	}
	return m
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.values)
}

// Get returns the value for key and whether it is present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns a copy of the content as a plain map.
func (m *Map[K, V]) Entries() map[K]V {
	out := make(map[K]V, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	_, existed := m.values[key]
	m.put(key, value)
	if existed {
		m.Notify(Change{Type: ChangeSet})
		return
	}
	m.Notify(Change{Type: ChangeAdd})
}

// Delete removes key. Deleting a missing key does nothing.
func (m *Map[K, V]) Delete(key K) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	m.Notify(Change{Type: ChangeRemove})
}

// SyncFrom makes m hold the entries of src: all existing entries are removed,
// then every source entry is added in src's key order. m stays the same
// object. A nil src empties the map. Listeners see one ChangeReset.
func (m *Map[K, V]) SyncFrom(src *Map[K, V]) {
	if src == m {
		return
	}
	m.values = nil
	m.keys = nil
	if src != nil {
		for _, k := range src.keys {
			m.put(k, src.values[k])
		}
	}
	m.Notify(Change{Type: ChangeReset})
}

// MarshalJSON encodes the map as a JSON object.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	if m.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.values)
}

// UnmarshalJSON replaces the content of m with a decoded JSON object. Keys
// are added in document order.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var values map[K]V
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	order, err := objectKeys(data)
	if err != nil {
		return err
	}
	m.values = nil
	m.keys = nil
	for _, raw := range order {
		// Let encoding/json convert the raw key so non-string K decode the same way.
		var one map[K]struct{}
		entry, err := json.Marshal(map[string]struct{}{raw: {}})
		if err != nil {
			return err
		}
		if err := json.Unmarshal(entry, &one); err != nil {
			return err
		}
		for k := range one {
			if v, ok := values[k]; ok {
				m.put(k, v)
			}
		}
	}
	m.Notify(Change{Type: ChangeReset})
	return nil
}

// objectKeys returns the member names of a JSON object in document order. A
// JSON null yields no keys.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("notify: expected JSON object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("notify: expected object key, got %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *Map[K, V]) put(key K, value V) {
	if m.values == nil {
		m.values = make(map[K]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}
