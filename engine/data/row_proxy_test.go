package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordChanges(p interface{ Subscribe(Listener) func() }) *[]Change {
	var got []Change
	p.Subscribe(func(c Change) { got = append(got, c) })
	return &got
}

func threeByTwo() BarDataProxy {
	return NewBarDataProxy(
		NewBarRow([]float32{1, 2}, "r0", "c0", "c1"),
		NewBarRow([]float32{3, 4}, "r1"),
		NewBarRow([]float32{5, 6}, "r2"),
	)
}

func TestInsertRowsKeepsLaterLabels(t *testing.T) {
	p := threeByTwo()
	changes := recordChanges(p)

	require.NoError(t, p.InsertRows(1, NewBarRow([]float32{9, 9}, "new")))

	assert.Equal(t, []string{"r0", "new", "r1", "r2"}, p.RowLabels())
	v, ok := p.Item(2, 1)
	assert.True(t, ok)
	assert.Equal(t, float32(4), v)
	assert.Equal(t, []Change{{Kind: ChangeRowsInserted, Start: 1, Count: 1}}, *changes)
}

func TestInsertRowsAtEnd(t *testing.T) {
	p := threeByTwo()
	require.NoError(t, p.InsertRows(3, NewBarRow([]float32{7, 8}, "r3")))
	assert.Equal(t, 4, p.RowCount())
	assert.Equal(t, "r3", p.RowLabels()[3])
}

func TestRejectedMutationLeavesProxyUntouched(t *testing.T) {
	p := threeByTwo()
	changes := recordChanges(p)
	before := p.Rows()

	assert.ErrorIs(t, p.AddRows(NewBarRow([]float32{1}, "short")), ErrRowWidthMismatch)
	assert.ErrorIs(t, p.InsertRows(5, NewBarRow([]float32{1, 2}, "x")), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.InsertRows(-1, NewBarRow([]float32{1, 2}, "x")), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.RemoveRows(2, 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.RemoveRows(0, 0), ErrInvalidCount)
	assert.ErrorIs(t, p.SetItem(0, 2, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.ReplaceRows(1, NewBarRow([]float32{1, 2, 3}, "wide")), ErrRowWidthMismatch)
	assert.ErrorIs(t, p.AddRows(), ErrInvalidCount)

	assert.Equal(t, before, p.Rows())
	assert.Empty(t, *changes)
}

func TestEveryMutationEmitsOnce(t *testing.T) {
	p := threeByTwo()
	changes := recordChanges(p)

	require.NoError(t, p.AddRows(NewBarRow([]float32{0, 0}, "a"), NewBarRow([]float32{0, 0}, "b")))
	require.NoError(t, p.ReplaceRows(0, NewBarRow([]float32{1, 1}, "z")))
	require.NoError(t, p.RemoveRows(1, 2))
	require.NoError(t, p.SetItem(0, 1, 42))
	require.NoError(t, p.SetRows(nil))

	assert.Equal(t, []Change{
		{Kind: ChangeRowsAdded, Start: 3, Count: 2},
		{Kind: ChangeRowsChanged, Start: 0, Count: 1},
		{Kind: ChangeRowsRemoved, Start: 1, Count: 2},
		{Kind: ChangeItemChanged, Row: 0, Column: 1},
		{Kind: ChangeReset},
	}, *changes)
	assert.Equal(t, 0, p.RowCount())
	assert.Equal(t, 0, p.ColumnCount())
}

func TestRemoveRowsRenumbers(t *testing.T) {
	p := threeByTwo()
	require.NoError(t, p.RemoveRows(0, 1))
	assert.Equal(t, []string{"r1", "r2"}, p.RowLabels())
	v, _ := p.Item(0, 0)
	assert.Equal(t, float32(3), v)
}

func TestReplaceAllRowsMayChangeShape(t *testing.T) {
	p := NewBarDataProxy(NewBarRow([]float32{1, 2}, "a"))
	require.NoError(t, p.ReplaceRows(0, NewBarRow([]float32{1, 2, 3}, "b")))
	assert.Equal(t, 3, p.ColumnCount())
}

func TestRowsAreCopies(t *testing.T) {
	values := []float32{1, 2}
	p := NewBarDataProxy(NewBarRow(values, "a"))
	values[0] = 100
	row, _ := p.Row(0)
	got := row.Values()
	got[1] = 100

	v0, _ := p.Item(0, 0)
	v1, _ := p.Item(0, 1)
	assert.Equal(t, float32(1), v0)
	assert.Equal(t, float32(2), v1)
}

func TestRowHead(t *testing.T) {
	row := NewBarRow([]float32{1, 2, 3}, "r", "a", "b", "c")

	h := row.Head(2)
	assert.Equal(t, []float32{1, 2}, h.Values())
	assert.Equal(t, []string{"a", "b"}, h.ColumnLabels())
	assert.Equal(t, "r", h.Label())
	assert.Equal(t, row, row.Head(5))
	assert.Zero(t, row.Head(0).Len())

	// Values copies, so the shared cells stay untouched.
	h.Values()[0] = 9
	v, _ := row.Value(0)
	assert.Equal(t, float32(1), v)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	p := threeByTwo()
	count := 0
	unsub := p.Subscribe(func(Change) { count++ })
	require.NoError(t, p.SetItem(0, 0, 7))
	unsub()
	unsub()
	require.NoError(t, p.SetItem(0, 0, 8))
	assert.Equal(t, 1, count)
}

func TestNewBarDataProxyPanicsOnRaggedRows(t *testing.T) {
	assert.Panics(t, func() {
		NewBarDataProxy(NewBarRow([]float32{1}, "a"), NewBarRow([]float32{1, 2}, "b"))
	})
}

func TestScatterProxy(t *testing.T) {
	p := NewScatterDataProxy()
	changes := recordChanges(p)

	require.NoError(t, p.AddItems(ScatterItem{}, ScatterItem{}))
	require.NoError(t, p.InsertItems(1, ScatterItem{}))
	require.NoError(t, p.RemoveItems(0, 1))
	assert.ErrorIs(t, p.SetItem(2, ScatterItem{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.InsertItems(0), ErrInvalidCount)

	assert.Equal(t, 2, p.ItemCount())
	assert.Len(t, *changes, 3)
	_, ok := p.Item(-1)
	assert.False(t, ok)
}
