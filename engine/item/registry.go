package item

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTolerance is the distance within which RemoveAt matches an item position.
const DefaultTolerance = 1e-4

// EventKind identifies a registry change.
type EventKind int

const (
	// EventAdded means Item was appended at Index.
	EventAdded EventKind = iota
	// EventRemoved means Item was removed from Index; later items moved up by one.
	EventRemoved
	// EventCleared means every item was removed.
	EventCleared
	// EventUpdated means Item at Index changed the properties in Dirty.
	EventUpdated
)

// Event describes one registry change.
type Event struct {
	Kind  EventKind
	Index int
	Item  CustomItem
	Dirty DirtyBits
}

type entry struct {
	item  CustomItem
	unsub func()
}

// Registry is the ordered list of custom items in a chart. Indices are positional: removing an
// item shifts every later item down by one, so callers keep item references rather than indices.
type Registry struct {
	entries   []entry
	tolerance float32
	listeners common.Subscribers[func(Event)]
}

// RegistryBuilderOption is a functional option for configuring a Registry.
type RegistryBuilderOption func(*Registry)

// WithTolerance sets the position tolerance used by RemoveAt.
func WithTolerance(tolerance float32) RegistryBuilderOption {
	return func(r *Registry) {
		r.tolerance = tolerance
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(options ...RegistryBuilderOption) *Registry {
	r := &Registry{tolerance: DefaultTolerance}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Registry) emit(e Event) {
	r.listeners.Each(func(fn func(Event)) { fn(e) })
}

// Subscribe registers a listener for registry changes and item property changes.
func (r *Registry) Subscribe(listener func(Event)) func() {
	return r.listeners.Add(listener)
}

// Len returns the number of items.
func (r *Registry) Len() int { return len(r.entries) }

// At returns the item at index, or nil if out of range.
func (r *Registry) At(index int) CustomItem {
	if index < 0 || index >= len(r.entries) {
		return nil
	}
	return r.entries[index].item
}

// Items returns the items in index order.
func (r *Registry) Items() []CustomItem {
	out := make([]CustomItem, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.item
	}
	return out
}

// IndexOf returns the index of item, or -1 if it is not registered.
func (r *Registry) IndexOf(item CustomItem) int {
	for i, e := range r.entries {
		if e.item == item {
			return i
		}
	}
	return -1
}

// Add appends an item and returns its index. Adding an item that is already registered returns
// its existing index and changes nothing. A nil item returns -1.
func (r *Registry) Add(item CustomItem) int {
	if item == nil {
		return -1
	}
	if i := r.IndexOf(item); i >= 0 {
		return i
	}
	e := entry{item: item}
	e.unsub = item.Subscribe(func(bit DirtyBits) {
		r.emit(Event{Kind: EventUpdated, Index: r.IndexOf(item), Item: item, Dirty: bit})
	})
	r.entries = append(r.entries, e)
	index := len(r.entries) - 1
	r.emit(Event{Kind: EventAdded, Index: index, Item: item})
	return index
}

// Remove removes an item and drops its texture. It reports whether the item was registered.
func (r *Registry) Remove(item CustomItem) bool {
	if !r.Release(item) {
		return false
	}
	item.SetTexture(nil)
	return true
}

// Release removes an item without touching it, so the caller can keep using or re-add it.
// It reports whether the item was registered.
func (r *Registry) Release(item CustomItem) bool {
	i := r.IndexOf(item)
	if i < 0 {
		return false
	}
	r.removeIndex(i)
	return true
}

// RemoveAt removes the item nearest to position, if one lies within the registry tolerance.
// It reports whether an item was removed.
func (r *Registry) RemoveAt(position mgl32.Vec3) bool {
	best := -1
	bestDist := r.tolerance
	for i, e := range r.entries {
		if d := e.item.Position().Sub(position).Len(); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return false
	}
	item := r.entries[best].item
	r.removeIndex(best)
	item.SetTexture(nil)
	return true
}

func (r *Registry) removeIndex(i int) {
	e := r.entries[i]
	e.unsub()
	r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
	r.emit(Event{Kind: EventRemoved, Index: i, Item: e.item})
}

// RemoveAll removes every item and drops their textures.
func (r *Registry) RemoveAll() {
	if len(r.entries) == 0 {
		return
	}
	entries := r.entries
	r.entries = nil
	for _, e := range entries {
		e.unsub()
		e.item.SetTexture(nil)
	}
	r.emit(Event{Kind: EventCleared})
}
