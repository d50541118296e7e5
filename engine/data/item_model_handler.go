package data

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ItemModelBinding connects a proxy to an external ItemModel through a set of owned mappings.
// Every model notification is translated into proxy mutations; changing the model or the active
// mapping's settings rebuilds the whole dataset.
type ItemModelBinding[S any] interface {
	// SetItemModel replaces the source model. A nil model yields an empty dataset.
	SetItemModel(model ItemModel)

	// ItemModel returns the current source model, or nil.
	ItemModel() ItemModel

	// AddMapping takes ownership of a mapping without activating it.
	AddMapping(mapping *Mapping[S])

	// ReleaseMapping gives up ownership of a mapping. Releasing the active mapping deactivates it
	// and empties the dataset.
	ReleaseMapping(mapping *Mapping[S])

	// SetActiveMapping activates a mapping, adding it first if it is not owned yet.
	//
	// Parameters:
	//   - mapping: the mapping to activate, or nil to empty the dataset
	SetActiveMapping(mapping *Mapping[S])

	// ActiveMapping returns the active mapping, or nil.
	ActiveMapping() *Mapping[S]

	// Mappings returns every owned mapping in the order it was added.
	Mappings() []*Mapping[S]

	// Close detaches from the model and the active mapping.
	Close()
}

// HandlerOption configures an item model handler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	logger *slog.Logger
}

// WithHandlerLogger sets the logger used to report rows the handler could not apply.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.logger = logger
	}
}

// target applies model changes to a concrete proxy.
type target[S any] interface {
	reset(model ItemModel, settings S) error
	apply(model ItemModel, settings S, c Change) error
	clear()
}

type itemModelHandler[S any] struct {
	model      ItemModel
	active     *Mapping[S]
	mappings   []*Mapping[S]
	target     target[S]
	logger     *slog.Logger
	unsubModel func()
	unsubMap   func()
}

func newItemModelHandler[S any](t target[S], model ItemModel, mapping *Mapping[S], options []HandlerOption) *itemModelHandler[S] {
	o := handlerOptions{}
	for _, opt := range options {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	h := &itemModelHandler[S]{
		target: t,
		logger: o.logger.With("component", "item-model-handler"),
	}
	if mapping != nil {
		h.AddMapping(mapping)
		h.active = mapping
		h.unsubMap = mapping.Subscribe(h.rebuild)
	}
	h.SetItemModel(model)
	return h
}

func (h *itemModelHandler[S]) SetItemModel(model ItemModel) {
	if h.unsubModel != nil {
		h.unsubModel()
		h.unsubModel = nil
	}
	h.model = model
	if model != nil {
		h.unsubModel = model.Subscribe(h.handleChange)
	}
	h.rebuild()
}

func (h *itemModelHandler[S]) ItemModel() ItemModel { return h.model }

func (h *itemModelHandler[S]) AddMapping(mapping *Mapping[S]) {
	if mapping == nil || slices.Contains(h.mappings, mapping) {
		return
	}
	h.mappings = append(h.mappings, mapping)
}

func (h *itemModelHandler[S]) ReleaseMapping(mapping *Mapping[S]) {
	i := slices.Index(h.mappings, mapping)
	if i < 0 {
		return
	}
	h.mappings = slices.Delete(h.mappings, i, i+1)
	if h.active == mapping {
		h.SetActiveMapping(nil)
	}
}

func (h *itemModelHandler[S]) SetActiveMapping(mapping *Mapping[S]) {
	if mapping == h.active {
		return
	}
	if h.unsubMap != nil {
		h.unsubMap()
		h.unsubMap = nil
	}
	h.AddMapping(mapping)
	h.active = mapping
	if mapping != nil {
		h.unsubMap = mapping.Subscribe(h.rebuild)
	}
	h.rebuild()
}

func (h *itemModelHandler[S]) ActiveMapping() *Mapping[S] { return h.active }

func (h *itemModelHandler[S]) Mappings() []*Mapping[S] {
	return append([]*Mapping[S](nil), h.mappings...)
}

func (h *itemModelHandler[S]) Close() {
	if h.unsubModel != nil {
		h.unsubModel()
		h.unsubModel = nil
	}
	if h.unsubMap != nil {
		h.unsubMap()
		h.unsubMap = nil
	}
}

func (h *itemModelHandler[S]) rebuild() {
	if h.model == nil || h.active == nil {
		h.target.clear()
		return
	}
	if err := h.target.reset(h.model, h.active.Settings()); err != nil {
		h.logger.Warn("item model could not be mapped, dataset cleared", "error", err)
		h.target.clear()
	}
}

func (h *itemModelHandler[S]) handleChange(c Change) {
	if h.model == nil || h.active == nil {
		return
	}
	if c.Kind == ChangeReset {
		h.rebuild()
		return
	}
	if err := h.target.apply(h.model, h.active.Settings(), c); err != nil {
		h.logger.Debug("incremental update failed, rebuilding", "change", c.Kind.String(), "error", err)
		h.rebuild()
	}
}

// toFloat converts a cell value to float32. Unknown types and unparsable strings become 0.
func toFloat(v any) float32 {
	switch t := v.(type) {
	case float32:
		return t
	case float64:
		return float32(t)
	case int:
		return float32(t)
	case int32:
		return float32(t)
	case int64:
		return float32(t)
	case uint32:
		return float32(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 32)
		if err != nil {
			return 0
		}
		return float32(f)
	default:
		return 0
	}
}

func toLabel(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// valueColumns resolves the model columns that become chart columns.
func valueColumns(model ItemModel, explicit []int, labelColumn int) []int {
	if len(explicit) > 0 {
		out := make([]int, 0, len(explicit))
		for _, c := range explicit {
			if c >= 0 && c < model.ColumnCount() {
				out = append(out, c)
			}
		}
		return out
	}
	out := make([]int, 0, model.ColumnCount())
	for c := 0; c < model.ColumnCount(); c++ {
		if c != labelColumn {
			out = append(out, c)
		}
	}
	return out
}

func rowLabel(model ItemModel, row, labelColumn int, role Role) string {
	if labelColumn >= 0 {
		return toLabel(model.Data(row, labelColumn, role))
	}
	return toLabel(model.HeaderData(row, Vertical, role))
}

func columnLabels(model ItemModel, columns []int, role Role) []string {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = toLabel(model.HeaderData(c, Horizontal, role))
	}
	return labels
}

// rowTarget drives a RowProxy from a model, one model row per proxy row.
type rowTarget[V any, S any] struct {
	proxy   RowProxy[V]
	resolve func(model ItemModel, settings S, row int) Row[V]
	column  func(model ItemModel, settings S, modelColumn int) int
	// indexed reports whether resolved rows embed their model row index. Such rows go stale
	// when rows are inserted or removed above them, so those changes rebuild the proxy.
	indexed func(settings S) bool
}

func (t *rowTarget[V, S]) rows(model ItemModel, settings S, start, count int) []Row[V] {
	out := make([]Row[V], count)
	for i := range out {
		out[i] = t.resolve(model, settings, start+i)
	}
	return out
}

func (t *rowTarget[V, S]) reset(model ItemModel, settings S) error {
	return t.proxy.SetRows(t.rows(model, settings, 0, model.RowCount()))
}

func (t *rowTarget[V, S]) clear() {
	if t.proxy.RowCount() == 0 {
		return
	}
	_ = t.proxy.SetRows(nil)
}

func (t *rowTarget[V, S]) apply(model ItemModel, settings S, c Change) error {
	shifts := c.Kind == ChangeRowsInserted || c.Kind == ChangeRowsRemoved
	if shifts && t.indexed != nil && t.indexed(settings) {
		return t.reset(model, settings)
	}
	switch c.Kind {
	case ChangeRowsAdded:
		return t.proxy.AddRows(t.rows(model, settings, c.Start, c.Count)...)
	case ChangeRowsChanged:
		return t.proxy.ReplaceRows(c.Start, t.rows(model, settings, c.Start, c.Count)...)
	case ChangeRowsRemoved:
		return t.proxy.RemoveRows(c.Start, c.Count)
	case ChangeRowsInserted:
		return t.proxy.InsertRows(c.Start, t.rows(model, settings, c.Start, c.Count)...)
	case ChangeItemChanged:
		row := t.resolve(model, settings, c.Row)
		if col := t.column(model, settings, c.Column); col >= 0 {
			v, _ := row.Value(col)
			return t.proxy.SetItem(c.Row, col, v)
		}
		// A label cell changed.
		return t.proxy.ReplaceRows(c.Row, row)
	default:
		return t.reset(model, settings)
	}
}

// ItemModelBarDataProxy is a BarDataProxy whose rows are resolved from an ItemModel.
type ItemModelBarDataProxy struct {
	BarDataProxy
	ItemModelBinding[BarMappingSettings]
}

// NewItemModelBarDataProxy creates a bar proxy fed by model through mapping.
//
// Parameters:
//   - model: the source model, may be nil
//   - mapping: the initial active mapping; nil uses DefaultBarMapping
//   - options: handler options
//
// Returns:
//   - *ItemModelBarDataProxy: the bound proxy
func NewItemModelBarDataProxy(model ItemModel, mapping *Mapping[BarMappingSettings], options ...HandlerOption) *ItemModelBarDataProxy {
	if mapping == nil {
		mapping = NewMapping("default", DefaultBarMapping())
	}
	proxy := NewBarDataProxy()
	t := &rowTarget[float32, BarMappingSettings]{
		proxy: proxy,
		resolve: func(model ItemModel, s BarMappingSettings, row int) BarRow {
			cols := valueColumns(model, s.ValueColumns, s.RowLabelColumn)
			values := make([]float32, len(cols))
			for i, c := range cols {
				values[i] = toFloat(model.Data(row, c, s.ValueRole))
			}
			return NewBarRow(values, rowLabel(model, row, s.RowLabelColumn, s.LabelRole), columnLabels(model, cols, s.LabelRole)...)
		},
		column: func(model ItemModel, s BarMappingSettings, modelColumn int) int {
			return slices.Index(valueColumns(model, s.ValueColumns, s.RowLabelColumn), modelColumn)
		},
	}
	return &ItemModelBarDataProxy{
		BarDataProxy:     proxy,
		ItemModelBinding: newItemModelHandler[BarMappingSettings](t, model, mapping, options),
	}
}

// ItemModelSurfaceDataProxy is a SurfaceDataProxy whose rows are resolved from an ItemModel.
type ItemModelSurfaceDataProxy struct {
	SurfaceDataProxy
	ItemModelBinding[SurfaceMappingSettings]
}

// NewItemModelSurfaceDataProxy creates a surface proxy fed by model through mapping.
// A nil mapping uses DefaultSurfaceMapping.
func NewItemModelSurfaceDataProxy(model ItemModel, mapping *Mapping[SurfaceMappingSettings], options ...HandlerOption) *ItemModelSurfaceDataProxy {
	if mapping == nil {
		mapping = NewMapping("default", DefaultSurfaceMapping())
	}
	proxy := NewSurfaceDataProxy()
	t := &rowTarget[mgl32.Vec3, SurfaceMappingSettings]{
		proxy: proxy,
		resolve: func(model ItemModel, s SurfaceMappingSettings, row int) SurfaceRow {
			cols := valueColumns(model, s.ValueColumns, s.RowLabelColumn)
			label := rowLabel(model, row, s.RowLabelColumn, s.LabelRole)
			z := float32(row)
			if s.UseHeaderPositions {
				z = toFloat(label)
			}
			values := make([]mgl32.Vec3, len(cols))
			for i, c := range cols {
				x := float32(i)
				if s.UseHeaderPositions {
					x = toFloat(model.HeaderData(c, Horizontal, s.LabelRole))
				}
				values[i] = mgl32.Vec3{x, toFloat(model.Data(row, c, s.ValueRole)), z}
			}
			return NewSurfaceRow(values, label, columnLabels(model, cols, s.LabelRole)...)
		},
		column: func(model ItemModel, s SurfaceMappingSettings, modelColumn int) int {
			return slices.Index(valueColumns(model, s.ValueColumns, s.RowLabelColumn), modelColumn)
		},
		indexed: func(s SurfaceMappingSettings) bool { return !s.UseHeaderPositions },
	}
	return &ItemModelSurfaceDataProxy{
		SurfaceDataProxy: proxy,
		ItemModelBinding: newItemModelHandler[SurfaceMappingSettings](t, model, mapping, options),
	}
}

// scatterTarget drives a ScatterDataProxy, one model row per point.
type scatterTarget struct {
	proxy ScatterDataProxy
}

func (t *scatterTarget) item(model ItemModel, s ScatterMappingSettings, row int) ScatterItem {
	return ScatterItem{Position: mgl32.Vec3{
		toFloat(model.Data(row, s.XColumn, s.ValueRole)),
		toFloat(model.Data(row, s.YColumn, s.ValueRole)),
		toFloat(model.Data(row, s.ZColumn, s.ValueRole)),
	}}
}

func (t *scatterTarget) items(model ItemModel, s ScatterMappingSettings, start, count int) []ScatterItem {
	out := make([]ScatterItem, count)
	for i := range out {
		out[i] = t.item(model, s, start+i)
	}
	return out
}

func (t *scatterTarget) reset(model ItemModel, s ScatterMappingSettings) error {
	t.proxy.SetItems(t.items(model, s, 0, model.RowCount()))
	return nil
}

func (t *scatterTarget) clear() {
	if t.proxy.ItemCount() == 0 {
		return
	}
	t.proxy.SetItems(nil)
}

func (t *scatterTarget) apply(model ItemModel, s ScatterMappingSettings, c Change) error {
	switch c.Kind {
	case ChangeRowsAdded:
		return t.proxy.AddItems(t.items(model, s, c.Start, c.Count)...)
	case ChangeRowsChanged:
		for i := 0; i < c.Count; i++ {
			if err := t.proxy.SetItem(c.Start+i, t.item(model, s, c.Start+i)); err != nil {
				return err
			}
		}
		return nil
	case ChangeRowsRemoved:
		return t.proxy.RemoveItems(c.Start, c.Count)
	case ChangeRowsInserted:
		return t.proxy.InsertItems(c.Start, t.items(model, s, c.Start, c.Count)...)
	case ChangeItemChanged:
		return t.proxy.SetItem(c.Row, t.item(model, s, c.Row))
	default:
		return t.reset(model, s)
	}
}

// ItemModelScatterDataProxy is a ScatterDataProxy whose points are resolved from an ItemModel.
type ItemModelScatterDataProxy struct {
	ScatterDataProxy
	ItemModelBinding[ScatterMappingSettings]
}

// NewItemModelScatterDataProxy creates a scatter proxy fed by model through mapping.
// A nil mapping uses DefaultScatterMapping.
func NewItemModelScatterDataProxy(model ItemModel, mapping *Mapping[ScatterMappingSettings], options ...HandlerOption) *ItemModelScatterDataProxy {
	if mapping == nil {
		mapping = NewMapping("default", DefaultScatterMapping())
	}
	proxy := NewScatterDataProxy()
	return &ItemModelScatterDataProxy{
		ScatterDataProxy: proxy,
		ItemModelBinding: newItemModelHandler[ScatterMappingSettings](&scatterTarget{proxy: proxy}, model, mapping, options),
	}
}
