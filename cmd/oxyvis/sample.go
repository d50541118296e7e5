package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/xuri/excelize/v2"
)

// writeSample stores the sample data of kind as an .xlsx workbook with a header row and a header
// column, the layout --header-row --header-column reads back.
func writeSample(path string, kind chartKind) error {
	m := sampleModel(kind)

	f := excelize.NewFile()
	defer f.Close()

	sheet := string(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]any, m.ColumnCount()+1)
	header[0] = ""
	for c := range m.ColumnCount() {
		header[c+1] = m.HeaderData(c, data.Horizontal, data.RoleDisplay)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r := range m.RowCount() {
		row := make([]any, m.ColumnCount()+1)
		row[0] = m.HeaderData(r, data.Vertical, data.RoleDisplay)
		for c := range m.ColumnCount() {
			row[c+1] = m.Data(r, c, data.RoleEdit)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
