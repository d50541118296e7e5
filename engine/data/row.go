package data

import "github.com/go-gl/mathgl/mgl32"

// Row is an immutable ordered sequence of cell values with an optional row label and optional
// per-column labels. Rows are copied on construction and on read, so a Row can be shared freely.
type Row[V any] struct {
	values       []V
	label        string
	columnLabels []string
}

// BarRow is a row of bar heights.
type BarRow = Row[float32]

// SurfaceRow is a row of surface vertices.
type SurfaceRow = Row[mgl32.Vec3]

// NewRow creates a row from values, copying the inputs.
//
// Parameters:
//   - values: the cell values in column order
//   - label: the row label, may be empty
//   - columnLabels: optional per-column labels
//
// Returns:
//   - Row[V]: the new row
func NewRow[V any](values []V, label string, columnLabels ...string) Row[V] {
	r := Row[V]{label: label}
	if len(values) > 0 {
		r.values = append([]V(nil), values...)
	}
	if len(columnLabels) > 0 {
		r.columnLabels = append([]string(nil), columnLabels...)
	}
	return r
}

// NewBarRow is NewRow for bar heights.
func NewBarRow(values []float32, label string, columnLabels ...string) BarRow {
	return NewRow(values, label, columnLabels...)
}

// NewSurfaceRow is NewRow for surface vertices.
func NewSurfaceRow(values []mgl32.Vec3, label string, columnLabels ...string) SurfaceRow {
	return NewRow(values, label, columnLabels...)
}

// Len returns the number of cells in the row.
func (r Row[V]) Len() int { return len(r.values) }

// Label returns the row label.
func (r Row[V]) Label() string { return r.label }

// Value returns the cell at column i. The second result is false if i is out of range.
func (r Row[V]) Value(i int) (V, bool) {
	if i < 0 || i >= len(r.values) {
		var zero V
		return zero, false
	}
	return r.values[i], true
}

// Values returns a copy of the cells.
func (r Row[V]) Values() []V {
	return append([]V(nil), r.values...)
}

// ColumnLabels returns a copy of the per-column labels.
func (r Row[V]) ColumnLabels() []string {
	return append([]string(nil), r.columnLabels...)
}

// WithValue returns a copy of the row with column i replaced.
func (r Row[V]) WithValue(i int, v V) Row[V] {
	out := NewRow(r.values, r.label, r.columnLabels...)
	out.values[i] = v
	return out
}

// Head returns the first n cells of the row. The result shares the cells with r, which is safe
// because neither can be modified.
func (r Row[V]) Head(n int) Row[V] {
	if n >= len(r.values) {
		return r
	}
	out := Row[V]{values: r.values[:max(n, 0):max(n, 0)], label: r.label, columnLabels: r.columnLabels}
	if len(out.columnLabels) > n {
		out.columnLabels = out.columnLabels[:max(n, 0):max(n, 0)]
	}
	return out
}

// WithLabel returns a copy of the row carrying a different label.
func (r Row[V]) WithLabel(label string) Row[V] {
	out := NewRow(r.values, label, r.columnLabels...)
	return out
}
