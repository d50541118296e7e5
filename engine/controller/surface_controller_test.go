package controller

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceShapeAndSelection(t *testing.T) {
	p := data.NewSurfaceDataProxy(
		data.NewSurfaceRow([]mgl32.Vec3{{0, 1, 0}, {1, 2, 0}, {2, 3, 0}}, "z0"),
		data.NewSurfaceRow([]mgl32.Vec3{{0, 4, 1}, {1, 5, 1}, {2, 6, 1}}, "z1"),
	)
	r := newFakeSurfaceRenderer()
	c := NewSurfaceController(r, p)
	c.SynchDataToRenderer()

	assert.Equal(t, 2, r.rows)
	assert.Equal(t, 3, r.columns)
	assert.Equal(t, NoSelection, r.selected)
	assert.Equal(t, [2]float32{0, 6}, r.axisRanges[axis.OrientationY])

	c.SetSelectedPoint(1, 2)
	assert.Equal(t, Position{Row: 1, Column: 2}, c.SelectedPoint())
	c.SetSelectedPoint(2, 0)
	assert.Equal(t, NoSelection, c.SelectedPoint())

	assert.ErrorIs(t, c.SetSurfaceStyle(SurfaceStyle{}), ErrInvalidStyle)
	assert.ErrorIs(t, c.SetSelectionMode(SelectionItem|SelectionSlice|SelectionRow), ErrInvalidSelectionMode)
	assert.ErrorIs(t, c.SetSelectionMode(SelectionItem|SelectionMultiSeries), ErrInvalidSelectionMode)
	require.NoError(t, c.SetSurfaceStyle(SurfaceStyle{DrawMode: SurfaceDrawWireframe, FlatShading: true}))

	require.NoError(t, p.AddRows(data.NewSurfaceRow([]mgl32.Vec3{{0, 7, 2}, {1, 8, 2}, {2, 9, 2}}, "z2")))
	c.SynchDataToRenderer()
	assert.Equal(t, 3, r.rows)
	assert.Len(t, r.data, 3)
	assert.Equal(t, SurfaceDrawWireframe, r.style.DrawMode)
	assert.Equal(t, [2]float32{0, 10}, r.axisRanges[axis.OrientationY])
}
