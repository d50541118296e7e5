// Package theme holds the visual configuration of a chart: colors, font, label transparency and
// lighting. A Theme is a plain value; the controller copies it into the renderer at sync.
package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// LabelTransparency selects how label backgrounds are filled.
type LabelTransparency int

const (
	// TransparencyNone draws labels on an opaque themed background.
	TransparencyNone LabelTransparency = iota
	// TransparencyFromTheme draws labels on the themed background with its own alpha.
	TransparencyFromTheme
	// TransparencyNoBackground draws only the text.
	TransparencyNoBackground
)

func (t LabelTransparency) String() string {
	switch t {
	case TransparencyNone:
		return "none"
	case TransparencyFromTheme:
		return "from-theme"
	case TransparencyNoBackground:
		return "no-background"
	default:
		return fmt.Sprintf("LabelTransparency(%d)", int(t))
	}
}

// ParseLabelTransparency parses the String form of a LabelTransparency.
func ParseLabelTransparency(s string) (LabelTransparency, error) {
	for _, t := range []LabelTransparency{TransparencyNone, TransparencyFromTheme, TransparencyNoBackground} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown label transparency %q", s)
}

// FontFace names one of the bundled Go fonts.
type FontFace string

const (
	FaceRegular FontFace = "regular"
	FaceBold    FontFace = "bold"
	FaceMono    FontFace = "mono"
)

// Font describes the label font.
type Font struct {
	Face FontFace
	// Size is the font size in points at 72 DPI.
	Size float64
}

// Theme is the complete visual configuration of a chart.
type Theme struct {
	Name string

	// BaseColor colors bars, points and the surface in uniform mode, and is the bottom of the
	// height gradient otherwise.
	BaseColor common.Color
	// HeightColor is the top of the height gradient.
	HeightColor common.Color
	// DepthColor tints objects by depth in gradient mode.
	DepthColor      common.Color
	UniformColoring bool

	BackgroundColor      common.Color
	WindowColor          common.Color
	GridLineColor        common.Color
	LabelTextColor       common.Color
	LabelBackgroundColor common.Color
	SingleHighlightColor common.Color
	MultiHighlightColor  common.Color

	Font              Font
	LabelTransparency LabelTransparency

	LightStrength          float32
	AmbientLightStrength   float32
	HighlightLightStrength float32

	BackgroundEnabled  bool
	GridEnabled        bool
	LabelBorderEnabled bool
}

// New returns the preset theme with the options applied in order.
//
// Parameters:
//   - preset: the starting preset
//   - options: individual overrides
//
// Returns:
//   - Theme: the resulting theme
func New(preset Preset, options ...Option) Theme {
	t := FromPreset(preset)
	return t.With(options...)
}

// With returns a copy of the theme with the options applied.
func (t Theme) With(options ...Option) Theme {
	for _, opt := range options {
		opt(&t)
	}
	return t
}

// GradientColor returns the object color at normalized height h in [0, 1]. In uniform mode it
// is always BaseColor.
func (t Theme) GradientColor(h float32) common.Color {
	if t.UniformColoring {
		return t.BaseColor
	}
	h = min(max(h, 0), 1)
	from := toColorful(t.BaseColor)
	to := toColorful(t.HeightColor)
	c := from.BlendLab(to, float64(h)).Clamped()
	alpha := t.BaseColor[3] + (t.HeightColor[3]-t.BaseColor[3])*h
	return common.Color{float32(c.R), float32(c.G), float32(c.B), alpha}
}

// GradientTexture samples the height gradient into a 1×n RGBA strip used as the gradient lookup
// texture.
//
// Parameters:
//   - n: the number of samples, at least 2
//
// Returns:
//   - common.TextureStagingData: the sampled strip
func (t Theme) GradientTexture(n int) common.TextureStagingData {
	n = max(n, 2)
	pixels := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		c := t.GradientColor(float32(i) / float32(n-1)).NRGBA()
		pixels = append(pixels, c.R, c.G, c.B, c.A)
	}
	return common.TextureStagingData{Pixels: pixels, Width: uint32(n), Height: 1}
}

// LabelBackground returns the fill used behind label text, and false when no background is drawn.
func (t Theme) LabelBackground() (common.Color, bool) {
	switch t.LabelTransparency {
	case TransparencyNoBackground:
		return common.Color{}, false
	case TransparencyFromTheme:
		return t.LabelBackgroundColor, true
	default:
		return t.LabelBackgroundColor.WithAlpha(1), true
	}
}

func toColorful(c common.Color) colorful.Color {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
//
// Parameters:
//   - s: the hex color string
//
// Returns:
//   - common.Color: the parsed color
//   - error: ErrInvalidColor if s is malformed
func ParseColor(s string) (common.Color, error) {
	s = strings.TrimSpace(s)
	alpha := float32(1)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return common.Color{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
		}
		alpha = float32(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return common.Color{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return common.Color{float32(c.R), float32(c.G), float32(c.B), alpha}, nil
}

// FormatColor formats a color as "#rrggbb", or "#rrggbbaa" when it is not opaque.
func FormatColor(c common.Color) string {
	hex := toColorful(c).Clamped().Hex()
	if c[3] >= 1 {
		return hex
	}
	return fmt.Sprintf("%s%02x", hex, c.NRGBA().A)
}

func mustColor(s string) common.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
