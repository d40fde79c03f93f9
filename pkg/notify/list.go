package notify

import "encoding/json"

// List is an ordered, observable container. The zero value is an empty list
// ready to use; settings types embed it by value so its address never changes.
type List[E any] struct {
	Notifier
	items []E
}

// NewList returns a list holding items.
func NewList[E any](items ...E) *List[E] {
	l := &List[E]{}
	l.items = append(l.items, items...)
	return l
}

// Len returns the number of elements.
func (l *List[E]) Len() int {
	return len(l.items)
}

// At returns the element at index i. It panics when i is out of range.
func (l *List[E]) At(i int) E {
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *List[E]) Items() []E {
	out := make([]E, len(l.items))
	copy(out, l.items)
	return out
}

// Append adds items to the end of the list.
func (l *List[E]) Append(items ...E) {
	if len(items) == 0 {
		return
	}
	l.items = append(l.items, items...)
	l.Notify(Change{Type: ChangeAdd})
}

// Set replaces the element at index i. It panics when i is out of range.
func (l *List[E]) Set(i int, v E) {
	l.items[i] = v
	l.Notify(Change{Type: ChangeSet})
}

// RemoveAt deletes the element at index i. It panics when i is out of range.
func (l *List[E]) RemoveAt(i int) {
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.Notify(Change{Type: ChangeRemove})
}

// Clear removes every element.
func (l *List[E]) Clear() {
	if len(l.items) == 0 {
		return
	}
	l.items = l.items[:0]
	l.Notify(Change{Type: ChangeRemove})
}

// SyncFrom makes l hold the elements of src in order. All existing elements
// are removed and every source element is appended; l itself stays the same
// object. A nil src empties the list. Listeners see one ChangeReset.
func (l *List[E]) SyncFrom(src *List[E]) {
	if src == l {
		return
	}
	var items []E
	if src != nil {
		items = src.Items()
	}
	l.items = l.items[:0]
	l.items = append(l.items, items...)
	l.Notify(Change{Type: ChangeReset})
}

// MarshalJSON encodes the list as a JSON array.
func (l *List[E]) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// UnmarshalJSON replaces the content of l with a decoded JSON array. JSON
// null empties the list.
func (l *List[E]) UnmarshalJSON(data []byte) error {
	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.items = append(l.items[:0], items...)
	l.Notify(Change{Type: ChangeReset})
	return nil
}
