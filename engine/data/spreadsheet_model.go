package data

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetOption configures how a sheet is read into a SpreadsheetModel.
type SpreadsheetOption func(*spreadsheetOptions)

type spreadsheetOptions struct {
	headerRow    bool
	headerColumn bool
}

// WithHeaderRow treats the first sheet row as column headers.
func WithHeaderRow() SpreadsheetOption {
	return func(o *spreadsheetOptions) {
		o.headerRow = true
	}
}

// WithHeaderColumn treats the first sheet column as row headers.
func WithHeaderColumn() SpreadsheetOption {
	return func(o *spreadsheetOptions) {
		o.headerColumn = true
	}
}

// SpreadsheetModel is an ItemModel backed by one sheet of an .xlsx workbook. The sheet is read
// into memory; Reload re-reads it and emits a reset.
type SpreadsheetModel struct {
	*TableModel
	path    string
	sheet   string
	options spreadsheetOptions
}

var _ ItemModel = &SpreadsheetModel{}

// OpenSpreadsheet reads a sheet from an .xlsx workbook.
//
// Parameters:
//   - path: the workbook path
//   - sheet: the sheet name; empty selects the first sheet
//   - options: header options
//
// Returns:
//   - *SpreadsheetModel: the loaded model
//   - error: if the workbook or sheet cannot be read
func OpenSpreadsheet(path, sheet string, options ...SpreadsheetOption) (*SpreadsheetModel, error) {
	m := &SpreadsheetModel{TableModel: NewTableModel(), path: path, sheet: sheet}
	for _, opt := range options {
		opt(&m.options)
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Sheet returns the name of the sheet the model reads.
func (m *SpreadsheetModel) Sheet() string { return m.sheet }

// Reload re-reads the sheet and replaces the model content.
func (m *SpreadsheetModel) Reload() error {
	f, err := excelize.OpenFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", m.path, err)
	}
	defer f.Close()

	if m.sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fmt.Errorf("workbook %s has no sheets", m.path)
		}
		m.sheet = sheets[0]
	}
	rows, err := f.GetRows(m.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", m.sheet, err)
	}

	columnHeaders, rowHeaders, cells := m.split(rows)
	return m.TableModel.Reset(columnHeaders, rowHeaders, cells)
}

func (m *SpreadsheetModel) split(rows [][]string) ([]string, []string, [][]any) {
	first := 0
	if m.options.headerColumn {
		first = 1
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r)-first)
	}

	var columnHeaders []string
	if m.options.headerRow && len(rows) > 0 {
		columnHeaders = make([]string, width)
		for i := range columnHeaders {
			if i+first < len(rows[0]) {
				columnHeaders[i] = rows[0][i+first]
			}
		}
		rows = rows[1:]
	} else {
		columnHeaders = make([]string, width)
		for i := range columnHeaders {
			name, _ := excelize.ColumnNumberToName(i + first + 1)
			columnHeaders[i] = name
		}
	}

	rowHeaders := make([]string, len(rows))
	cells := make([][]any, len(rows))
	for i, r := range rows {
		if m.options.headerColumn && len(r) > 0 {
			rowHeaders[i] = r[0]
		} else {
			rowHeaders[i] = strconv.Itoa(i + 1)
		}
		values := make([]any, width)
		for c := range values {
			if c+first < len(r) {
				values[c] = parseCell(r[c+first])
			}
		}
		cells[i] = values
	}
	return columnHeaders, rowHeaders, cells
}

func parseCell(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
