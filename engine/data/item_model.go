package data

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// Role selects which facet of a cell an ItemModel returns.
type Role int

const (
	// RoleDisplay is the human-readable form of a cell.
	RoleDisplay Role = iota
	// RoleEdit is the raw value of a cell.
	RoleEdit
	// RoleUser is the first role available for application-defined data.
	RoleUser Role = 256
)

// Orientation selects row or column headers.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// ItemModel is the external tabular data source boundary. The engine only reads through this
// interface and listens for its change notifications; it never writes to the model.
type ItemModel interface {
	// RowCount returns the number of rows in the model.
	RowCount() int

	// ColumnCount returns the number of columns in the model.
	ColumnCount() int

	// Data returns the cell at (row, column) for the given role, or nil if there is none.
	//
	// Parameters:
	//   - row: the row index
	//   - column: the column index
	//   - role: which facet of the cell to return
	//
	// Returns:
	//   - any: the cell data, or nil
	Data(row, column int, role Role) any

	// HeaderData returns the header of a row (Vertical) or column (Horizontal) section.
	//
	// Parameters:
	//   - section: the row or column index
	//   - orientation: Horizontal for column headers, Vertical for row headers
	//   - role: which facet of the header to return
	//
	// Returns:
	//   - any: the header data, or nil
	HeaderData(section int, orientation Orientation, role Role) any

	// Subscribe registers a listener for the model's change notifications.
	//
	// Parameters:
	//   - listener: called synchronously after each model change
	//
	// Returns:
	//   - func(): removes the listener
	Subscribe(listener Listener) (unsubscribe func())
}

// TableModel is an in-memory ItemModel. Cells hold arbitrary values; RoleDisplay returns their
// fmt representation and RoleEdit returns the raw value.
type TableModel struct {
	columnHeaders []string
	rowHeaders    []string
	cells         [][]any
	listeners     common.Subscribers[Listener]
}

var _ ItemModel = &TableModel{}

// NewTableModel creates an empty table with the given column headers.
func NewTableModel(columnHeaders ...string) *TableModel {
	return &TableModel{columnHeaders: append([]string(nil), columnHeaders...)}
}

func (t *TableModel) emit(c Change) {
	t.listeners.Each(func(l Listener) { l(c) })
}

func (t *TableModel) RowCount() int { return len(t.cells) }

func (t *TableModel) ColumnCount() int { return len(t.columnHeaders) }

func (t *TableModel) Data(row, column int, role Role) any {
	if row < 0 || row >= len(t.cells) || column < 0 || column >= len(t.cells[row]) {
		return nil
	}
	v := t.cells[row][column]
	switch role {
	case RoleDisplay:
		if v == nil {
			return nil
		}
		return fmt.Sprint(v)
	case RoleEdit:
		return v
	default:
		return nil
	}
}

func (t *TableModel) HeaderData(section int, orientation Orientation, role Role) any {
	if role != RoleDisplay && role != RoleEdit {
		return nil
	}
	headers := t.columnHeaders
	if orientation == Vertical {
		headers = t.rowHeaders
	}
	if section < 0 || section >= len(headers) {
		return nil
	}
	return headers[section]
}

func (t *TableModel) Subscribe(listener Listener) func() {
	return t.listeners.Add(listener)
}

func (t *TableModel) normalize(values []any) ([]any, error) {
	if len(values) > len(t.columnHeaders) {
		return nil, fmt.Errorf("%d values for %d columns: %w", len(values), len(t.columnHeaders), ErrRowWidthMismatch)
	}
	row := make([]any, len(t.columnHeaders))
	copy(row, values)
	return row, nil
}

// AppendRow adds a row at the end and emits ChangeRowsAdded.
func (t *TableModel) AppendRow(header string, values ...any) error {
	row, err := t.normalize(values)
	if err != nil {
		return err
	}
	t.cells = append(t.cells, row)
	t.rowHeaders = append(t.rowHeaders, header)
	t.emit(Change{Kind: ChangeRowsAdded, Start: len(t.cells) - 1, Count: 1})
	return nil
}

// InsertRow inserts a row before at and emits ChangeRowsInserted.
func (t *TableModel) InsertRow(at int, header string, values ...any) error {
	if at < 0 || at > len(t.cells) {
		return rangeError("insert index", at, len(t.cells)+1)
	}
	row, err := t.normalize(values)
	if err != nil {
		return err
	}
	t.cells = append(t.cells[:at], append([][]any{row}, t.cells[at:]...)...)
	t.rowHeaders = append(t.rowHeaders[:at], append([]string{header}, t.rowHeaders[at:]...)...)
	t.emit(Change{Kind: ChangeRowsInserted, Start: at, Count: 1})
	return nil
}

// SetRow replaces a row and emits ChangeRowsChanged.
func (t *TableModel) SetRow(row int, header string, values ...any) error {
	if row < 0 || row >= len(t.cells) {
		return rangeError("row", row, len(t.cells))
	}
	normalized, err := t.normalize(values)
	if err != nil {
		return err
	}
	t.cells[row] = normalized
	t.rowHeaders[row] = header
	t.emit(Change{Kind: ChangeRowsChanged, Start: row, Count: 1})
	return nil
}

// RemoveRows removes count rows starting at start and emits ChangeRowsRemoved.
func (t *TableModel) RemoveRows(start, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	if start < 0 || start+count > len(t.cells) {
		return rangeError("row", start+count-1, len(t.cells))
	}
	t.cells = append(t.cells[:start], t.cells[start+count:]...)
	t.rowHeaders = append(t.rowHeaders[:start], t.rowHeaders[start+count:]...)
	t.emit(Change{Kind: ChangeRowsRemoved, Start: start, Count: count})
	return nil
}

// SetCell replaces one cell and emits ChangeItemChanged.
func (t *TableModel) SetCell(row, column int, value any) error {
	if row < 0 || row >= len(t.cells) {
		return rangeError("row", row, len(t.cells))
	}
	if column < 0 || column >= len(t.columnHeaders) {
		return rangeError("column", column, len(t.columnHeaders))
	}
	t.cells[row][column] = value
	t.emit(Change{Kind: ChangeItemChanged, Row: row, Column: column})
	return nil
}

// Reset replaces every row and header and emits ChangeReset.
func (t *TableModel) Reset(columnHeaders, rowHeaders []string, cells [][]any) error {
	if len(rowHeaders) != len(cells) {
		return fmt.Errorf("%d row headers for %d rows: %w", len(rowHeaders), len(cells), ErrRowWidthMismatch)
	}
	t.columnHeaders = append([]string(nil), columnHeaders...)
	t.rowHeaders = append([]string(nil), rowHeaders...)
	t.cells = make([][]any, 0, len(cells))
	for _, c := range cells {
		row, err := t.normalize(c)
		if err != nil {
			return err
		}
		t.cells = append(t.cells, row)
	}
	t.emit(Change{Kind: ChangeReset})
	return nil
}
