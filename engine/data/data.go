// Package data holds chart content: row-shaped proxies for bar and surface charts, a flat point
// proxy for scatter charts, and adapters that translate an external tabular ItemModel into proxy
// mutations. Every mutator emits exactly one Change, synchronously, before it returns.
package data

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a row, column or item index falls outside the dataset.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrRowWidthMismatch is returned when a row does not have the dataset's column count.
	ErrRowWidthMismatch = errors.New("row width mismatch")

	// ErrInvalidCount is returned when a count argument is zero or negative.
	ErrInvalidCount = errors.New("invalid count")
)

// ChangeKind identifies the kind of change a proxy or item model reports.
// For scatter proxies, "rows" are individual items.
type ChangeKind int

const (
	// ChangeReset means the whole dataset was replaced.
	ChangeReset ChangeKind = iota
	// ChangeRowsAdded means Count rows were appended starting at Start.
	ChangeRowsAdded
	// ChangeRowsChanged means Count rows starting at Start were replaced in place.
	ChangeRowsChanged
	// ChangeRowsRemoved means Count rows starting at Start were removed; later rows moved up.
	ChangeRowsRemoved
	// ChangeRowsInserted means Count rows were inserted at Start; later rows moved down.
	ChangeRowsInserted
	// ChangeItemChanged means the single cell at (Row, Column) changed.
	ChangeItemChanged
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReset:
		return "reset"
	case ChangeRowsAdded:
		return "rows-added"
	case ChangeRowsChanged:
		return "rows-changed"
	case ChangeRowsRemoved:
		return "rows-removed"
	case ChangeRowsInserted:
		return "rows-inserted"
	case ChangeItemChanged:
		return "item-changed"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes one mutation of a proxy or an item model.
type Change struct {
	Kind   ChangeKind
	Start  int
	Count  int
	Row    int
	Column int
}

// Listener receives change notifications.
type Listener func(Change)

func rangeError(what string, index, length int) error {
	return fmt.Errorf("%s %d not in [0, %d): %w", what, index, length, ErrIndexOutOfRange)
}
