package data

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ScatterItem is a single scatter point. A zero Rotation means no rotation.
type ScatterItem struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// ScatterDataProxy owns the flat point set of a scatter chart. It has no row/column shape;
// change notifications report item indices through Start/Count and Row.
type ScatterDataProxy interface {
	// ItemCount returns the number of points.
	ItemCount() int

	// Item returns the point at index; false if out of range.
	Item(index int) (ScatterItem, bool)

	// Items returns a snapshot of every point.
	Items() []ScatterItem

	// SetItems replaces every point and emits ChangeReset.
	SetItems(items []ScatterItem)

	// AddItems appends points and emits ChangeRowsAdded.
	//
	// Returns:
	//   - error: ErrInvalidCount when items is empty
	AddItems(items ...ScatterItem) error

	// SetItem replaces one point and emits ChangeItemChanged with Row set to the index.
	//
	// Returns:
	//   - error: ErrIndexOutOfRange
	SetItem(index int, item ScatterItem) error

	// InsertItems inserts points before at and emits ChangeRowsInserted.
	//
	// Returns:
	//   - error: ErrIndexOutOfRange or ErrInvalidCount
	InsertItems(at int, items ...ScatterItem) error

	// RemoveItems removes count points starting at start and emits ChangeRowsRemoved.
	//
	// Returns:
	//   - error: ErrIndexOutOfRange or ErrInvalidCount
	RemoveItems(start, count int) error

	// Subscribe registers a change listener and returns its removal function.
	Subscribe(listener Listener) (unsubscribe func())
}

type scatterDataProxy struct {
	items     []ScatterItem
	listeners common.Subscribers[Listener]
}

var _ ScatterDataProxy = &scatterDataProxy{}

// NewScatterDataProxy creates a scatter proxy holding the given points.
func NewScatterDataProxy(items ...ScatterItem) ScatterDataProxy {
	return &scatterDataProxy{items: append([]ScatterItem(nil), items...)}
}

func (p *scatterDataProxy) emit(c Change) {
	p.listeners.Each(func(l Listener) { l(c) })
}

func (p *scatterDataProxy) ItemCount() int { return len(p.items) }

func (p *scatterDataProxy) Item(index int) (ScatterItem, bool) {
	if index < 0 || index >= len(p.items) {
		return ScatterItem{}, false
	}
	return p.items[index], true
}

func (p *scatterDataProxy) Items() []ScatterItem {
	return append([]ScatterItem(nil), p.items...)
}

func (p *scatterDataProxy) SetItems(items []ScatterItem) {
	p.items = append([]ScatterItem(nil), items...)
	p.emit(Change{Kind: ChangeReset})
}

func (p *scatterDataProxy) AddItems(items ...ScatterItem) error {
	if len(items) == 0 {
		return ErrInvalidCount
	}
	start := len(p.items)
	p.items = append(p.items, items...)
	p.emit(Change{Kind: ChangeRowsAdded, Start: start, Count: len(items)})
	return nil
}

func (p *scatterDataProxy) SetItem(index int, item ScatterItem) error {
	if index < 0 || index >= len(p.items) {
		return rangeError("item", index, len(p.items))
	}
	p.items[index] = item
	p.emit(Change{Kind: ChangeItemChanged, Row: index})
	return nil
}

func (p *scatterDataProxy) InsertItems(at int, items ...ScatterItem) error {
	if len(items) == 0 {
		return ErrInvalidCount
	}
	if at < 0 || at > len(p.items) {
		return rangeError("insert index", at, len(p.items)+1)
	}
	next := make([]ScatterItem, 0, len(p.items)+len(items))
	next = append(next, p.items[:at]...)
	next = append(next, items...)
	next = append(next, p.items[at:]...)
	p.items = next
	p.emit(Change{Kind: ChangeRowsInserted, Start: at, Count: len(items)})
	return nil
}

func (p *scatterDataProxy) RemoveItems(start, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	if start < 0 || start+count > len(p.items) {
		return rangeError("item", start+count-1, len(p.items))
	}
	p.items = append(p.items[:start:start], p.items[start+count:]...)
	p.emit(Change{Kind: ChangeRowsRemoved, Start: start, Count: count})
	return nil
}

func (p *scatterDataProxy) Subscribe(listener Listener) func() {
	return p.listeners.Add(listener)
}
