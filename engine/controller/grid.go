package controller

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
)

// grid follows a row proxy for bar and surface charts: it caches the visible row and column
// counts, keeps the selected position pointing at the same row across inserts and removals,
// and marks the data, shape and selection aspects.
type grid[V any] struct {
	b              *base
	proxy          data.RowProxy[V]
	unsub          func()
	rows, columns  int
	window         DataWindow
	selected       Position
	selectedAspect Aspect

	// refreshed runs after every data change, once the counts are current.
	refreshed func()
	// selectionChanged runs after the selected position changed.
	selectionChanged func()
}

func newGrid[V any](b *base, selectedAspect Aspect) *grid[V] {
	return &grid[V]{
		b:                b,
		selected:         NoSelection,
		selectedAspect:   selectedAspect,
		refreshed:        func() {},
		selectionChanged: func() {},
	}
}

func (g *grid[V]) bind(p data.RowProxy[V]) {
	if g.unsub != nil {
		g.unsub()
	}
	g.proxy = p
	g.unsub = p.Subscribe(g.onChange)
	g.b.changed(AspectData)
	g.refresh()
}

func (g *grid[V]) onChange(ch data.Change) {
	switch ch.Kind {
	case data.ChangeRowsInserted:
		if g.selected != NoSelection && g.selected.Row >= ch.Start {
			g.setSelected(Position{Row: g.selected.Row + ch.Count, Column: g.selected.Column})
		}
	case data.ChangeRowsRemoved:
		if g.selected != NoSelection && g.selected.Row >= ch.Start {
			if g.selected.Row < ch.Start+ch.Count {
				g.setSelected(NoSelection)
			} else {
				g.setSelected(Position{Row: g.selected.Row - ch.Count, Column: g.selected.Column})
			}
		}
	}
	g.b.changed(AspectData)
	g.refresh()
}

// refresh recomputes the visible shape and drops a selection that fell outside it.
func (g *grid[V]) refresh() {
	rows := visible(g.proxy.RowCount(), g.window.Rows)
	columns := visible(g.proxy.ColumnCount(), g.window.Columns)
	if rows != g.rows || columns != g.columns {
		g.rows, g.columns = rows, columns
		g.b.changed(AspectSampleSpace)
	}
	if g.selected != NoSelection && !g.selected.Valid(rows, columns) {
		g.setSelected(NoSelection)
	}
	g.refreshed()
}

func (g *grid[V]) setWindow(w DataWindow) {
	g.window = w
	g.b.changed(AspectDataWindow, AspectData)
	g.refresh()
}

func (g *grid[V]) setSelected(p Position) {
	if p == g.selected {
		return
	}
	g.selected = p
	g.b.changed(g.selectedAspect)
	g.selectionChanged()
}

// selectPosition selects (row, column) as the series element, or clears the series selection
// when the position is outside the visible grid.
func (g *grid[V]) selectPosition(row, column int) {
	p := Position{Row: row, Column: column}
	if !p.Valid(g.rows, g.columns) {
		p = NoSelection
	}
	g.setSelected(p)
	switch {
	case p != NoSelection:
		g.b.setSelectedElement(ElementSeries, -1)
	case g.b.selectedElement == ElementSeries:
		g.b.setSelectedElement(ElementNone, -1)
	}
}

// visibleRows returns the rows inside the data window. Rows are immutable, so the result shares
// their cells with the proxy.
func (g *grid[V]) visibleRows() []data.Row[V] {
	out := make([]data.Row[V], 0, g.rows)
	for i := range g.rows {
		r, ok := g.proxy.Row(i)
		if !ok {
			break
		}
		out = append(out, r.Head(g.columns))
	}
	return out
}

// each visits every visible value without copying rows.
func (g *grid[V]) each(visit func(v V)) {
	for i := range g.rows {
		r, ok := g.proxy.Row(i)
		if !ok {
			return
		}
		for c := range min(g.columns, r.Len()) {
			v, _ := r.Value(c)
			visit(v)
		}
	}
}

func (g *grid[V]) close() {
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
