package data

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func salesModel(t *testing.T) *TableModel {
	m := NewTableModel("month", "north", "south")
	require.NoError(t, m.AppendRow("2024", "jan", 10.0, "20"))
	require.NoError(t, m.AppendRow("2025", "feb", 30, 40.5))
	return m
}

func TestBarProxyResolvesModelRows(t *testing.T) {
	m := salesModel(t)
	p := NewItemModelBarDataProxy(m, NewMapping("sales", BarMappingSettings{
		ValueRole:      RoleEdit,
		LabelRole:      RoleDisplay,
		RowLabelColumn: 0,
	}))

	assert.Equal(t, 2, p.RowCount())
	assert.Equal(t, 2, p.ColumnCount())
	assert.Equal(t, []string{"jan", "feb"}, p.RowLabels())
	assert.Equal(t, []string{"north", "south"}, p.ColumnLabels())
	v, _ := p.Item(0, 1)
	assert.Equal(t, float32(20), v)
	v, _ = p.Item(1, 1)
	assert.Equal(t, float32(40.5), v)
}

func TestBarProxyFollowsModelChanges(t *testing.T) {
	m := salesModel(t)
	p := NewItemModelBarDataProxy(m, nil)
	changes := recordChanges(p)

	require.NoError(t, m.InsertRow(1, "mid", "x", 1, 2))
	require.NoError(t, m.SetCell(0, 2, 99))
	require.NoError(t, m.RemoveRows(2, 1))

	assert.Equal(t, []string{"2024", "mid"}, p.RowLabels())
	v, _ := p.Item(0, 2)
	assert.Equal(t, float32(99), v)
	assert.Equal(t, []ChangeKind{ChangeRowsInserted, ChangeItemChanged, ChangeRowsRemoved},
		[]ChangeKind{(*changes)[0].Kind, (*changes)[1].Kind, (*changes)[2].Kind})
}

func TestMappingChangeRebuilds(t *testing.T) {
	m := salesModel(t)
	mapping := NewMapping("sales", DefaultBarMapping())
	p := NewItemModelBarDataProxy(m, mapping)
	changes := recordChanges(p)
	assert.Equal(t, 3, p.ColumnCount())

	settings := mapping.Settings()
	settings.ValueColumns = []int{2}
	mapping.Update(settings)
	mapping.Update(settings)

	assert.Equal(t, 1, p.ColumnCount())
	assert.Equal(t, []Change{{Kind: ChangeReset}}, *changes)
}

func TestNilModelYieldsEmptyDataset(t *testing.T) {
	p := NewItemModelBarDataProxy(salesModel(t), nil)
	require.Equal(t, 2, p.RowCount())

	p.SetItemModel(nil)
	assert.Equal(t, 0, p.RowCount())
	assert.Nil(t, p.ItemModel())
}

func TestReleasingActiveMappingEmptiesDataset(t *testing.T) {
	mapping := NewMapping("a", DefaultBarMapping())
	other := NewMapping("b", DefaultBarMapping())
	p := NewItemModelBarDataProxy(salesModel(t), mapping)
	p.AddMapping(other)
	p.AddMapping(other)
	assert.Equal(t, []*Mapping[BarMappingSettings]{mapping, other}, p.Mappings())

	p.ReleaseMapping(mapping)
	assert.Nil(t, p.ActiveMapping())
	assert.Equal(t, 0, p.RowCount())

	p.SetActiveMapping(other)
	assert.Equal(t, 2, p.RowCount())
}

func TestCloseDetachesFromModel(t *testing.T) {
	m := salesModel(t)
	p := NewItemModelBarDataProxy(m, nil)
	p.Close()
	require.NoError(t, m.AppendRow("2026", "mar", 1, 2))
	assert.Equal(t, 2, p.RowCount())
}

func TestScatterProxyResolvesColumns(t *testing.T) {
	m := NewTableModel("x", "y", "z")
	require.NoError(t, m.AppendRow("", 1.0, 2.0, 3.0))
	p := NewItemModelScatterDataProxy(m, nil)

	require.NoError(t, m.SetCell(0, 1, 5))
	item, ok := p.Item(0)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 5, 3}, item.Position)
}

func TestSurfaceProxyHeaderPositions(t *testing.T) {
	m := NewTableModel("0.5", "1.5")
	require.NoError(t, m.AppendRow("10", 1, 2))
	p := NewItemModelSurfaceDataProxy(m, NewMapping("s", SurfaceMappingSettings{
		ValueRole:          RoleEdit,
		LabelRole:          RoleDisplay,
		RowLabelColumn:     -1,
		UseHeaderPositions: true,
	}))

	v, ok := p.Item(0, 1)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1.5, 2, 10}, v)
}

func surfaceDepths(t *testing.T, p *ItemModelSurfaceDataProxy) []float32 {
	t.Helper()
	out := make([]float32, p.RowCount())
	for r := range out {
		v, ok := p.Item(r, 0)
		require.True(t, ok)
		out[r] = v.Z()
	}
	return out
}

func TestSurfaceProxyRowIndicesFollowInsertAndRemove(t *testing.T) {
	m := NewTableModel("a", "b")
	for _, h := range []string{"r0", "r1", "r2"} {
		require.NoError(t, m.AppendRow(h, 1, 2))
	}
	p := NewItemModelSurfaceDataProxy(m, nil)
	changes := recordChanges(p)

	require.NoError(t, m.InsertRow(1, "new", 5, 6))
	assert.Equal(t, []float32{0, 1, 2, 3}, surfaceDepths(t, p))
	assert.Equal(t, []string{"r0", "new", "r1", "r2"}, p.RowLabels())
	v, _ := p.Item(1, 1)
	assert.Equal(t, mgl32.Vec3{1, 6, 1}, v)

	require.NoError(t, m.RemoveRows(0, 2))
	assert.Equal(t, []float32{0, 1}, surfaceDepths(t, p))
	assert.Equal(t, []string{"r1", "r2"}, p.RowLabels())
	assert.Equal(t, []Change{{Kind: ChangeReset}, {Kind: ChangeReset}}, *changes)
}

func TestSurfaceProxyHeaderPositionsInsertIncrementally(t *testing.T) {
	m := NewTableModel("0.5", "1.5")
	require.NoError(t, m.AppendRow("10", 1, 2))
	require.NoError(t, m.AppendRow("30", 3, 4))
	p := NewItemModelSurfaceDataProxy(m, NewMapping("s", SurfaceMappingSettings{
		ValueRole:          RoleEdit,
		LabelRole:          RoleDisplay,
		RowLabelColumn:     -1,
		UseHeaderPositions: true,
	}))
	changes := recordChanges(p)

	require.NoError(t, m.InsertRow(1, "20", 5, 6))
	assert.Equal(t, []float32{10, 20, 30}, surfaceDepths(t, p))
	require.Len(t, *changes, 1)
	assert.Equal(t, ChangeRowsInserted, (*changes)[0].Kind)
}

func TestSpreadsheetModel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	f.SetCellValue(sheet, "B1", "north")
	f.SetCellValue(sheet, "C1", "south")
	f.SetCellValue(sheet, "A2", "jan")
	f.SetCellValue(sheet, "B2", 10)
	f.SetCellValue(sheet, "C2", 20.5)
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))

	m, err := OpenSpreadsheet(path, "", WithHeaderRow(), WithHeaderColumn())
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", m.Sheet())

	p := NewItemModelBarDataProxy(m, nil)
	assert.Equal(t, []string{"jan"}, p.RowLabels())
	assert.Equal(t, []string{"north", "south"}, p.ColumnLabels())
	v, _ := p.Item(0, 1)
	assert.Equal(t, float32(20.5), v)

	f.SetCellValue(sheet, "B2", 11)
	require.NoError(t, f.SaveAs(path))
	changes := recordChanges(p)
	require.NoError(t, m.Reload())
	v, _ = p.Item(0, 0)
	assert.Equal(t, float32(11), v)
	assert.Equal(t, []Change{{Kind: ChangeReset}}, *changes)
}

func TestOpenSpreadsheetMissingFile(t *testing.T) {
	_, err := OpenSpreadsheet(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}
