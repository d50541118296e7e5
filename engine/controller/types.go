package controller

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidSelectionMode   = errors.New("invalid selection mode")
	ErrInvalidShadowQuality   = errors.New("invalid shadow quality")
	ErrShadowsUnsupported     = errors.New("shadows are not supported on the constrained profile")
	ErrInvalidBarSpecs        = errors.New("invalid bar specs")
	ErrInvalidStyle           = errors.New("invalid style")
	ErrInvalidDataWindow      = errors.New("invalid data window")
	ErrInvalidFont            = errors.New("invalid font")
	ErrInvalidTransparency    = errors.New("invalid label transparency")
	ErrInvalidRect            = errors.New("invalid bounding rect")
	ErrInvalidAspectRatio     = errors.New("aspect ratio must be positive")
	ErrInvalidZoom            = errors.New("zoom level out of range")
	ErrInvalidCameraPreset    = errors.New("invalid camera preset")
	ErrInvalidOptimization    = errors.New("invalid optimization hints")
	ErrNilAxis                = errors.New("axis is nil")
	ErrAxisType               = errors.New("axis type not allowed for this orientation")
	ErrInvalidSelectionResult = errors.New("invalid selection result")
)

// Profile is the rendering capability level of the target device.
type Profile int

const (
	// ProfileDesktop has depth textures and shadow mapping.
	ProfileDesktop Profile = iota
	// ProfileConstrained has neither; shadow quality is fixed at none.
	ProfileConstrained
)

func (p Profile) String() string {
	if p == ProfileConstrained {
		return "constrained"
	}
	return "desktop"
}

// ShadowQuality selects the shadow map size and filtering.
type ShadowQuality int

const (
	ShadowQualityNone ShadowQuality = iota
	ShadowQualityLow
	ShadowQualityMedium
	ShadowQualityHigh
	ShadowQualitySoftLow
	ShadowQualitySoftMedium
	ShadowQualitySoftHigh
)

var shadowQualityNames = [...]string{"none", "low", "medium", "high", "softlow", "softmedium", "softhigh"}

func (q ShadowQuality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("ShadowQuality(%d)", int(q))
	}
	return shadowQualityNames[q]
}

// Valid reports whether q is a known quality.
func (q ShadowQuality) Valid() bool {
	return q >= ShadowQualityNone && q <= ShadowQualitySoftHigh
}

// Soft reports whether q filters the shadow map with PCF.
func (q ShadowQuality) Soft() bool {
	return q >= ShadowQualitySoftLow
}

// MapSize returns the shadow map edge length in texels, or zero for ShadowQualityNone.
func (q ShadowQuality) MapSize() int {
	switch q {
	case ShadowQualityLow, ShadowQualitySoftLow:
		return 1024
	case ShadowQualityMedium, ShadowQualitySoftMedium:
		return 2048
	case ShadowQualityHigh, ShadowQualitySoftHigh:
		return 4096
	default:
		return 0
	}
}

// ParseShadowQuality parses the lower-case name returned by String.
func ParseShadowQuality(s string) (ShadowQuality, error) {
	for i, n := range shadowQualityNames {
		if n == s {
			return ShadowQuality(i), nil
		}
	}
	return ShadowQualityNone, fmt.Errorf("%w: %q", ErrInvalidShadowQuality, s)
}

// SelectionFlag is a bit set describing what a click selects.
type SelectionFlag int

const (
	SelectionNone   SelectionFlag = 0
	SelectionItem   SelectionFlag = 1 << 0
	SelectionRow    SelectionFlag = 1 << 1
	SelectionColumn SelectionFlag = 1 << 2
	// SelectionSlice shows the selected row or column in a 2D slice view. It must be combined
	// with exactly one of SelectionRow and SelectionColumn.
	SelectionSlice SelectionFlag = 1 << 3
	// SelectionMultiSeries extends the selection to every series at the same position. A
	// controller draws a single series, so every chart type rejects it.
	SelectionMultiSeries SelectionFlag = 1 << 4

	SelectionItemAndRow       = SelectionItem | SelectionRow
	SelectionItemAndColumn    = SelectionItem | SelectionColumn
	SelectionRowAndColumn     = SelectionRow | SelectionColumn
	SelectionItemRowAndColumn = SelectionItem | SelectionRow | SelectionColumn
	selectionAll              = SelectionItemRowAndColumn | SelectionSlice | SelectionMultiSeries
)

// Has reports whether every flag in f is set.
func (s SelectionFlag) Has(f SelectionFlag) bool { return s&f == f }

func validateSelectionMode(mode, allowed SelectionFlag) error {
	if mode&^allowed != 0 || mode&^selectionAll != 0 {
		return fmt.Errorf("%w: %#x", ErrInvalidSelectionMode, int(mode))
	}
	if mode.Has(SelectionSlice) && mode.Has(SelectionRow) == mode.Has(SelectionColumn) {
		return fmt.Errorf("%w: slice needs exactly one of row or column", ErrInvalidSelectionMode)
	}
	return nil
}

// ElementType is the kind of chart element a selection hit.
type ElementType int

const (
	ElementNone ElementType = iota
	ElementSeries
	ElementAxisXLabel
	ElementAxisYLabel
	ElementAxisZLabel
	ElementCustomItem
)

func (e ElementType) String() string {
	switch e {
	case ElementNone:
		return "none"
	case ElementSeries:
		return "series"
	case ElementAxisXLabel:
		return "axis-x-label"
	case ElementAxisYLabel:
		return "axis-y-label"
	case ElementAxisZLabel:
		return "axis-z-label"
	case ElementCustomItem:
		return "custom-item"
	default:
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
}

// Position addresses a bar or surface vertex by row and column.
type Position struct {
	Row    int
	Column int
}

// NoSelection is the selected position when nothing is selected.
var NoSelection = Position{Row: -1, Column: -1}

// Valid reports whether p lies inside a rows x columns grid.
func (p Position) Valid(rows, columns int) bool {
	return p.Row >= 0 && p.Row < rows && p.Column >= 0 && p.Column < columns
}

// SelectionResult is what the renderer's hit test found under a pointer position. Row and
// Column address a bar or surface vertex; Index addresses a scatter point, an axis label or a
// custom item.
type SelectionResult struct {
	Element ElementType
	Row     int
	Column  int
	Index   int
}

// MeshStyle is the shape drawn for each bar or scatter point.
type MeshStyle int

const (
	MeshBar MeshStyle = iota
	MeshPyramid
	MeshCone
	MeshCylinder
	MeshBevelBar
	MeshSphere
	// MeshPoint draws scatter points as flat sprites. Bars cannot use it.
	MeshPoint
)

var meshStyleNames = [...]string{"bar", "pyramid", "cone", "cylinder", "bevelbar", "sphere", "point"}

func (m MeshStyle) String() string {
	if m < 0 || int(m) >= len(meshStyleNames) {
		return fmt.Sprintf("MeshStyle(%d)", int(m))
	}
	return meshStyleNames[m]
}

// ParseMeshStyle parses the lower-case name returned by String.
func ParseMeshStyle(s string) (MeshStyle, error) {
	for i, n := range meshStyleNames {
		if n == s {
			return MeshStyle(i), nil
		}
	}
	return MeshBar, fmt.Errorf("%w: %q", ErrInvalidStyle, s)
}

// BarStyle is the mesh and shading used for every bar.
type BarStyle struct {
	Mesh   MeshStyle
	Smooth bool
}

// BarSpecs sizes bars relative to their grid cell.
type BarSpecs struct {
	// ThicknessRatio is bar width divided by bar depth.
	ThicknessRatio float32
	// Spacing is the gap between bars along X and Z.
	Spacing mgl32.Vec2
	// Relative makes Spacing a fraction of the bar size instead of an absolute distance.
	Relative bool
}

// DefaultBarSpecs are square bars with gaps equal to their size.
var DefaultBarSpecs = BarSpecs{ThicknessRatio: 1, Spacing: mgl32.Vec2{1, 1}, Relative: true}

// DataWindow limits how many rows and columns of the proxy are shown. Zero means no limit.
type DataWindow struct {
	Rows    int
	Columns int
}

func visible(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}

// PointStyle is the mesh and size used for every scatter point.
type PointStyle struct {
	Mesh   MeshStyle
	Smooth bool
	// Size is the point size as a fraction of the graph; zero sizes points from the item count.
	Size float32
}

// SurfaceDrawMode is a bit set of what a surface draws.
type SurfaceDrawMode int

const (
	SurfaceDrawWireframe SurfaceDrawMode = 1 << iota
	SurfaceDrawSurface
	SurfaceDrawSurfaceAndWireframe = SurfaceDrawWireframe | SurfaceDrawSurface
)

// SurfaceStyle is how a surface is drawn.
type SurfaceStyle struct {
	DrawMode    SurfaceDrawMode
	FlatShading bool
}

// OptimizationHints tells the renderer how often the data is expected to change.
type OptimizationHints int

const (
	OptimizationDefault OptimizationHints = iota
	// OptimizationStatic skips per-frame label regeneration and keeps uploaded geometry until
	// the data changes.
	OptimizationStatic
)

// Zoom level bounds in percent.
const (
	MinZoomLevel     float32 = 10
	MaxZoomLevel     float32 = 500
	DefaultZoomLevel float32 = 100
)

// CameraState is the orbit camera as the controller sees it. Rotations are in degrees.
type CameraState struct {
	Preset    camera.Preset
	XRotation float32
	YRotation float32
	ZoomLevel float32
}

// EventKind distinguishes accepted and rejected changes.
type EventKind int

const (
	EventChanged EventKind = iota
	EventRejected
)

// Event reports a change of controller state, or a setter call that was rejected.
type Event struct {
	Kind   EventKind
	Aspect Aspect
	// Err is set on EventRejected.
	Err error
}
