package data

import (
	"reflect"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// BarMappingSettings describes how item model cells become bar rows.
type BarMappingSettings struct {
	// ValueRole is the role used to read bar heights.
	ValueRole Role
	// LabelRole is the role used to read row and column labels.
	LabelRole Role
	// RowLabelColumn is the model column holding row labels, or -1 to use the vertical header.
	RowLabelColumn int
	// ValueColumns lists the model columns that become bars, in order. Empty means every column
	// except RowLabelColumn.
	ValueColumns []int
}

// DefaultBarMapping reads every column as a bar height and labels rows from the vertical header.
func DefaultBarMapping() BarMappingSettings {
	return BarMappingSettings{ValueRole: RoleEdit, LabelRole: RoleDisplay, RowLabelColumn: -1}
}

// ScatterMappingSettings describes which model columns hold the x, y and z coordinates of a point.
type ScatterMappingSettings struct {
	ValueRole Role
	XColumn   int
	YColumn   int
	ZColumn   int
}

// DefaultScatterMapping reads x, y and z from the first three columns.
func DefaultScatterMapping() ScatterMappingSettings {
	return ScatterMappingSettings{ValueRole: RoleEdit, XColumn: 0, YColumn: 1, ZColumn: 2}
}

// SurfaceMappingSettings describes how item model cells become surface vertices. Each model row is a
// surface row; each value column is a vertex whose height is the cell value.
type SurfaceMappingSettings struct {
	ValueRole      Role
	LabelRole      Role
	RowLabelColumn int
	ValueColumns   []int
	// UseHeaderPositions places vertices at the numeric value of the row and column headers
	// instead of at their indices.
	UseHeaderPositions bool
}

// DefaultSurfaceMapping reads every column as a height at index positions.
func DefaultSurfaceMapping() SurfaceMappingSettings {
	return SurfaceMappingSettings{ValueRole: RoleEdit, LabelRole: RoleDisplay, RowLabelColumn: -1}
}

// Mapping is a named, owned set of item model mapping settings. A handler listens to its active
// mapping and rebuilds the dataset whenever the settings change.
type Mapping[S any] struct {
	name      string
	settings  S
	listeners common.Subscribers[func()]
}

// NewMapping creates a mapping with the given settings.
func NewMapping[S any](name string, settings S) *Mapping[S] {
	return &Mapping[S]{name: name, settings: settings}
}

// Name returns the mapping name.
func (m *Mapping[S]) Name() string { return m.name }

// Settings returns the current settings.
func (m *Mapping[S]) Settings() S { return m.settings }

// Update replaces the settings. Listeners are notified only when the settings actually change.
func (m *Mapping[S]) Update(settings S) {
	if reflect.DeepEqual(m.settings, settings) {
		return
	}
	m.settings = settings
	m.listeners.Each(func(fn func()) { fn() })
}

// Subscribe registers a settings-changed listener and returns its removal function.
func (m *Mapping[S]) Subscribe(fn func()) func() {
	return m.listeners.Add(fn)
}
