package data

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl32"
)

// RowProxy owns the rows of a bar or surface chart. All rows share one column count.
// The proxy is the single source of truth for chart content; readers receive copies.
type RowProxy[V any] interface {
	// RowCount returns the number of rows.
	RowCount() int

	// ColumnCount returns the shared column count, or 0 when the proxy is empty.
	ColumnCount() int

	// Row returns the row at index.
	//
	// Parameters:
	//   - index: the row index
	//
	// Returns:
	//   - Row[V]: the row
	//   - bool: false if the index is out of range
	Row(index int) (Row[V], bool)

	// Rows returns a snapshot of all rows in order.
	Rows() []Row[V]

	// Item returns a single cell.
	//
	// Parameters:
	//   - row: the row index
	//   - column: the column index
	//
	// Returns:
	//   - V: the cell value
	//   - bool: false if either index is out of range
	Item(row, column int) (V, bool)

	// RowLabels returns the label of every row in order.
	RowLabels() []string

	// ColumnLabels returns the column labels carried by the first row.
	ColumnLabels() []string

	// SetRows replaces the whole dataset and emits ChangeReset. A nil slice clears the proxy.
	//
	// Parameters:
	//   - rows: the new rows; all must have the same length
	//
	// Returns:
	//   - error: ErrRowWidthMismatch if the rows differ in length
	SetRows(rows []Row[V]) error

	// AddRows appends rows and emits ChangeRowsAdded.
	//
	// Parameters:
	//   - rows: the rows to append; each must match ColumnCount when the proxy is not empty
	//
	// Returns:
	//   - error: ErrInvalidCount for no rows, ErrRowWidthMismatch for a wrong width
	AddRows(rows ...Row[V]) error

	// ReplaceRows replaces len(rows) rows starting at start and emits ChangeRowsChanged.
	//
	// Parameters:
	//   - start: the first row to replace
	//   - rows: the replacement rows
	//
	// Returns:
	//   - error: ErrIndexOutOfRange, ErrInvalidCount or ErrRowWidthMismatch
	ReplaceRows(start int, rows ...Row[V]) error

	// RemoveRows removes count rows starting at start and emits ChangeRowsRemoved.
	// Later rows are renumbered and keep their labels.
	//
	// Parameters:
	//   - start: the first row to remove
	//   - count: the number of rows to remove
	//
	// Returns:
	//   - error: ErrIndexOutOfRange or ErrInvalidCount
	RemoveRows(start, count int) error

	// InsertRows inserts rows before index at and emits ChangeRowsInserted.
	// at == RowCount() is allowed. Later rows shift down and keep their labels.
	//
	// Parameters:
	//   - at: the insertion index
	//   - rows: the rows to insert
	//
	// Returns:
	//   - error: ErrIndexOutOfRange, ErrInvalidCount or ErrRowWidthMismatch
	InsertRows(at int, rows ...Row[V]) error

	// SetItem replaces a single cell and emits ChangeItemChanged.
	//
	// Parameters:
	//   - row: the row index
	//   - column: the column index
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrIndexOutOfRange if either index is out of range
	SetItem(row, column int, value V) error

	// Subscribe registers a listener for change notifications.
	//
	// Parameters:
	//   - listener: called synchronously after every mutation
	//
	// Returns:
	//   - func(): removes the listener
	Subscribe(listener Listener) (unsubscribe func())
}

// BarDataProxy holds the rows of a bar chart.
type BarDataProxy = RowProxy[float32]

// SurfaceDataProxy holds the rows of a surface chart.
type SurfaceDataProxy = RowProxy[mgl32.Vec3]

type rowProxy[V any] struct {
	rows      []Row[V]
	listeners common.Subscribers[Listener]
}

var _ BarDataProxy = &rowProxy[float32]{}

// NewBarDataProxy creates a bar proxy holding the given rows.
// It panics if the rows differ in length, since that is a programming error at construction time.
func NewBarDataProxy(rows ...BarRow) BarDataProxy {
	return newRowProxy(rows)
}

// NewSurfaceDataProxy creates a surface proxy holding the given rows.
// It panics if the rows differ in length.
func NewSurfaceDataProxy(rows ...SurfaceRow) SurfaceDataProxy {
	return newRowProxy(rows)
}

func newRowProxy[V any](rows []Row[V]) *rowProxy[V] {
	p := &rowProxy[V]{}
	if err := checkWidths(rows, -1); err != nil {
		panic(fmt.Sprintf("data: %v", err))
	}
	p.rows = append(p.rows, rows...)
	return p
}

// checkWidths verifies that every row has the same length, and that the length equals want
// when want >= 0.
func checkWidths[V any](rows []Row[V], want int) error {
	for i, r := range rows {
		if want < 0 {
			want = r.Len()
			continue
		}
		if r.Len() != want {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, r.Len(), want, ErrRowWidthMismatch)
		}
	}
	return nil
}

func (p *rowProxy[V]) width() int {
	if len(p.rows) == 0 {
		return -1
	}
	return p.rows[0].Len()
}

func (p *rowProxy[V]) emit(c Change) {
	p.listeners.Each(func(l Listener) { l(c) })
}

func (p *rowProxy[V]) RowCount() int {
	return len(p.rows)
}

func (p *rowProxy[V]) ColumnCount() int {
	if len(p.rows) == 0 {
		return 0
	}
	return p.rows[0].Len()
}

func (p *rowProxy[V]) Row(index int) (Row[V], bool) {
	if index < 0 || index >= len(p.rows) {
		return Row[V]{}, false
	}
	return p.rows[index], true
}

func (p *rowProxy[V]) Rows() []Row[V] {
	return append([]Row[V](nil), p.rows...)
}

func (p *rowProxy[V]) Item(row, column int) (V, bool) {
	r, ok := p.Row(row)
	if !ok {
		var zero V
		return zero, false
	}
	return r.Value(column)
}

func (p *rowProxy[V]) RowLabels() []string {
	labels := make([]string, len(p.rows))
	for i, r := range p.rows {
		labels[i] = r.Label()
	}
	return labels
}

func (p *rowProxy[V]) ColumnLabels() []string {
	if len(p.rows) == 0 {
		return nil
	}
	return p.rows[0].ColumnLabels()
}

func (p *rowProxy[V]) SetRows(rows []Row[V]) error {
	if err := checkWidths(rows, -1); err != nil {
		return err
	}
	p.rows = append([]Row[V](nil), rows...)
	p.emit(Change{Kind: ChangeReset})
	return nil
}

func (p *rowProxy[V]) AddRows(rows ...Row[V]) error {
	if len(rows) == 0 {
		return ErrInvalidCount
	}
	if err := checkWidths(rows, p.width()); err != nil {
		return err
	}
	start := len(p.rows)
	p.rows = append(p.rows, rows...)
	p.emit(Change{Kind: ChangeRowsAdded, Start: start, Count: len(rows)})
	return nil
}

func (p *rowProxy[V]) ReplaceRows(start int, rows ...Row[V]) error {
	if len(rows) == 0 {
		return ErrInvalidCount
	}
	if start < 0 || start+len(rows) > len(p.rows) {
		return rangeError("row", start+len(rows)-1, len(p.rows))
	}
	want := p.width()
	if len(p.rows) == len(rows) {
		// Replacing every row may change the shape.
		want = -1
	}
	if err := checkWidths(rows, want); err != nil {
		return err
	}
	copy(p.rows[start:], rows)
	p.emit(Change{Kind: ChangeRowsChanged, Start: start, Count: len(rows)})
	return nil
}

func (p *rowProxy[V]) RemoveRows(start, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	if start < 0 || start+count > len(p.rows) {
		return rangeError("row", start+count-1, len(p.rows))
	}
	p.rows = append(p.rows[:start:start], p.rows[start+count:]...)
	p.emit(Change{Kind: ChangeRowsRemoved, Start: start, Count: count})
	return nil
}

func (p *rowProxy[V]) InsertRows(at int, rows ...Row[V]) error {
	if len(rows) == 0 {
		return ErrInvalidCount
	}
	if at < 0 || at > len(p.rows) {
		return rangeError("insert index", at, len(p.rows)+1)
	}
	if err := checkWidths(rows, p.width()); err != nil {
		return err
	}
	next := make([]Row[V], 0, len(p.rows)+len(rows))
	next = append(next, p.rows[:at]...)
	next = append(next, rows...)
	next = append(next, p.rows[at:]...)
	p.rows = next
	p.emit(Change{Kind: ChangeRowsInserted, Start: at, Count: len(rows)})
	return nil
}

func (p *rowProxy[V]) SetItem(row, column int, value V) error {
	if row < 0 || row >= len(p.rows) {
		return rangeError("row", row, len(p.rows))
	}
	if column < 0 || column >= p.rows[row].Len() {
		return rangeError("column", column, p.rows[row].Len())
	}
	p.rows[row] = p.rows[row].WithValue(column, value)
	p.emit(Change{Kind: ChangeItemChanged, Row: row, Column: column})
	return nil
}

func (p *rowProxy[V]) Subscribe(listener Listener) func() {
	return p.listeners.Add(listener)
}
