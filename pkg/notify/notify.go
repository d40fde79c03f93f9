// Package notify provides change notification for settings objects.
//
// A settings type embeds a Notifier and calls Set from its setters; every
// effective mutation is delivered synchronously to subscribed listeners, in
// the order they subscribed, before the setter returns. List and Map are
// observable containers that can be embedded by value in settings types.
package notify

import "sync"

// ChangeType represents the type of change.
type ChangeType int

const (
	// ChangeSet indicates a field or element was assigned.
	ChangeSet ChangeType = iota

	// ChangeAdd indicates elements were added to a container.
	ChangeAdd

	// ChangeRemove indicates elements were removed from a container.
	ChangeRemove

	// ChangeReset indicates a container's content was replaced wholesale.
	ChangeReset
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Change describes one mutation.
type Change struct {
	// Field names the changed field. Containers leave it empty.
	Field string

	// Type is the type of change.
	Type ChangeType

	// Origin is the nested change that caused this one when the change was
	// forwarded from a child object or container.
	Origin *Change
}

// Listener is called after each change.
type Listener func(change Change)

// Observable is implemented by anything that emits changes, including every
// type embedding a Notifier.
type Observable interface {
	Subscribe(listener Listener) *Subscription
}

// Subscription represents an active listener registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Calling it more than once is safe.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.unsubscribe(s.id)
	s.notifier = nil
}

type entry struct {
	id       uint64
	listener Listener
}

// Notifier delivers changes to listeners. The zero value is ready to use.
// A Notifier must not be copied after first use.
type Notifier struct {
	mu        sync.Mutex
	listeners []entry
	nextID    uint64
}

// Subscribe registers listener and returns its subscription. A nil listener
// is ignored and yields an inert subscription.
func (n *Notifier) Subscribe(listener Listener) *Subscription {
	if listener == nil {
		return &Subscription{}
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.listeners = append(n.listeners, entry{id: n.nextID, listener: listener})
	return &Subscription{id: n.nextID, notifier: n}
}

// Notify delivers change to every listener in subscription order. Listeners
// run without the lock held so they may subscribe, unsubscribe or mutate the
// object again.
func (n *Notifier) Notify(change Change) {
	n.mu.Lock()
	snapshot := make([]entry, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()

	for _, e := range snapshot {
		e.listener(change)
	}
}

// Listeners returns the number of active subscriptions.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.listeners {
		if e.id == id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Set assigns value to *field and notifies n with the field name, but only
// when the value differs. It reports whether an assignment happened.
func Set[V comparable](n *Notifier, field *V, value V, name string) bool {
	if *field == value {
		return false
	}
	*field = value
	n.Notify(Change{Field: name, Type: ChangeSet})
	return true
}

// Forward returns a listener that re-emits changes on to under field. Owners
// subscribe it on nested objects and containers so their own listeners see
// nested mutations.
func Forward(to *Notifier, field string) Listener {
	return func(change Change) {
		origin := change
		to.Notify(Change{Field: field, Type: ChangeSet, Origin: &origin})
	}
}
