package item

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/go-gl/mathgl/mgl32"
)

// LabelItem is a custom item whose texture is rasterized from text. Its mesh is a quad supplied
// by the renderer, so MeshFile is ignored.
type LabelItem interface {
	CustomItem

	// Text returns the label text.
	Text() string

	// SetText sets the label text.
	SetText(text string)

	// Font returns the label font.
	Font() theme.Font

	// SetFont sets the label font.
	SetFont(font theme.Font)

	// TextColor returns the text color.
	TextColor() common.Color

	// SetTextColor sets the text color.
	SetTextColor(c common.Color)

	// BackgroundColor returns the background fill.
	BackgroundColor() common.Color

	// SetBackgroundColor sets the background fill.
	SetBackgroundColor(c common.Color)

	// BackgroundEnabled reports whether the background is filled.
	BackgroundEnabled() bool

	// SetBackgroundEnabled toggles the background fill.
	SetBackgroundEnabled(enabled bool)

	// BorderEnabled reports whether a border is drawn around the text.
	BorderEnabled() bool

	// SetBorderEnabled toggles the border.
	SetBorderEnabled(enabled bool)

	// FacingCamera reports whether the label always turns toward the camera, ignoring Rotation.
	FacingCamera() bool

	// SetFacingCamera toggles camera facing.
	SetFacingCamera(facing bool)
}

type labelItem struct {
	*customItem
	text              string
	font              theme.Font
	textColor         common.Color
	backgroundColor   common.Color
	backgroundEnabled bool
	borderEnabled     bool
	facingCamera      bool
}

var _ LabelItem = &labelItem{}

// LabelBuilderOption is a functional option for configuring a LabelItem during construction.
type LabelBuilderOption func(*labelItem)

// WithText sets the label text.
func WithText(text string) LabelBuilderOption {
	return func(l *labelItem) {
		l.text = text
	}
}

// WithFont sets the label font.
func WithFont(font theme.Font) LabelBuilderOption {
	return func(l *labelItem) {
		l.font = font
	}
}

// WithFacingCamera makes the label always face the camera.
func WithFacingCamera() LabelBuilderOption {
	return func(l *labelItem) {
		l.facingCamera = true
	}
}

// WithItemOptions applies CustomItem options to the label.
func WithItemOptions(options ...CustomItemBuilderOption) LabelBuilderOption {
	return func(l *labelItem) {
		for _, opt := range options {
			opt(l.customItem)
		}
	}
}

// NewLabelItem creates a label item styled from the Qt theme preset. Labels do not cast shadows
// by default.
//
// Parameters:
//   - options: a variadic list of LabelBuilderOption functions
//
// Returns:
//   - LabelItem: the new label
func NewLabelItem(options ...LabelBuilderOption) LabelItem {
	th := theme.FromPreset(theme.PresetQt)
	l := &labelItem{
		customItem:        newCustomItem(),
		font:              th.Font,
		textColor:         th.LabelTextColor,
		backgroundColor:   th.LabelBackgroundColor,
		backgroundEnabled: true,
		borderEnabled:     true,
	}
	l.shadowCasting = false
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *labelItem) Text() string { return l.text }

func (l *labelItem) SetText(text string) {
	if text == l.text {
		return
	}
	l.text = text
	l.mark(DirtyLabel)
}

func (l *labelItem) Font() theme.Font { return l.font }

func (l *labelItem) SetFont(font theme.Font) {
	if font == l.font {
		return
	}
	l.font = font
	l.mark(DirtyLabel)
}

func (l *labelItem) TextColor() common.Color { return l.textColor }

func (l *labelItem) SetTextColor(c common.Color) {
	if c == l.textColor {
		return
	}
	l.textColor = c
	l.mark(DirtyLabel)
}

func (l *labelItem) BackgroundColor() common.Color { return l.backgroundColor }

func (l *labelItem) SetBackgroundColor(c common.Color) {
	if c == l.backgroundColor {
		return
	}
	l.backgroundColor = c
	l.mark(DirtyLabel)
}

func (l *labelItem) BackgroundEnabled() bool { return l.backgroundEnabled }

func (l *labelItem) SetBackgroundEnabled(enabled bool) {
	if enabled == l.backgroundEnabled {
		return
	}
	l.backgroundEnabled = enabled
	l.mark(DirtyLabel)
}

func (l *labelItem) BorderEnabled() bool { return l.borderEnabled }

func (l *labelItem) SetBorderEnabled(enabled bool) {
	if enabled == l.borderEnabled {
		return
	}
	l.borderEnabled = enabled
	l.mark(DirtyLabel)
}

func (l *labelItem) FacingCamera() bool { return l.facingCamera }

func (l *labelItem) SetFacingCamera(facing bool) {
	if facing == l.facingCamera {
		return
	}
	l.facingCamera = facing
	l.mark(DirtyRotation)
}

// ModelMatrix ignores the rotation of a camera-facing label; the renderer applies the billboard
// rotation itself.
func (l *labelItem) ModelMatrix() mgl32.Mat4 {
	if l.facingCamera {
		return common.ModelMatrix(l.position, mgl32.QuatIdent(), l.scaling)
	}
	return l.customItem.ModelMatrix()
}
