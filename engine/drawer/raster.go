package drawer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyText is returned when a label with no text is rasterized.
var ErrEmptyText = errors.New("label text is empty")

// borderWidth is the width in pixels of the frame drawn around bordered labels.
const borderWidth = 2

// LabelStyle is everything besides the text that determines how a label is rasterized.
type LabelStyle struct {
	Font       theme.Font
	TextColor  common.Color
	Background common.Color
	// BackgroundEnabled fills the label rectangle with Background.
	BackgroundEnabled bool
	// BorderEnabled frames the background with TextColor. It has no effect without a background.
	BorderEnabled bool
}

// StyleFromTheme derives the label style of chart labels from a theme, applying its
// transparency mode.
//
// Parameters:
//   - th: the theme
//
// Returns:
//   - LabelStyle: the style
func StyleFromTheme(th theme.Theme) LabelStyle {
	bg, filled := th.LabelBackground()
	return LabelStyle{
		Font:              th.Font,
		TextColor:         th.LabelTextColor,
		Background:        bg,
		BackgroundEnabled: filled,
		BorderEnabled:     filled && th.LabelBorderEnabled,
	}
}

var fontCache = struct {
	sync.Mutex
	fonts map[theme.FontFace]*opentype.Font
}{fonts: make(map[theme.FontFace]*opentype.Font)}

func parsedFont(face theme.FontFace) (*opentype.Font, error) {
	fontCache.Lock()
	defer fontCache.Unlock()
	if f, ok := fontCache.fonts[face]; ok {
		return f, nil
	}
	var ttf []byte
	switch face {
	case theme.FaceBold:
		ttf = gobold.TTF
	case theme.FaceMono:
		ttf = gomono.TTF
	default:
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", face, err)
	}
	fontCache.fonts[face] = f
	return f, nil
}

// Rasterize draws text into a tightly sized non-premultiplied RGBA image with padding around
// the text. It is safe to call from several goroutines at once.
//
// Parameters:
//   - text: the label text
//   - style: font, colors and decorations
//   - maxSize: the largest edge allowed; larger images are scaled down to fit. Zero disables the limit.
//
// Returns:
//   - *image.NRGBA: the rasterized label
//   - error: ErrEmptyText, or a font error
func Rasterize(text string, style LabelStyle, maxSize int) (*image.NRGBA, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	f, err := parsedFont(style.Font.Face)
	if err != nil {
		return nil, err
	}
	size := style.Font.Size
	if size <= 0 {
		size = 12
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size: size, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer face.Close()

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	pad := max((ascent+descent)/4, borderWidth+1)
	w := font.MeasureString(face, text).Ceil() + 2*pad
	h := ascent + descent + 2*pad

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if style.BackgroundEnabled {
		draw.Draw(img, img.Bounds(), image.NewUniform(style.Background.NRGBA()), image.Point{}, draw.Src)
		if style.BorderEnabled {
			frame(img, style.TextColor)
		}
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(style.TextColor.NRGBA()),
		Face: face,
		Dot:  fixed.P(pad, pad+ascent),
	}
	d.DrawString(text)

	if maxSize > 0 && (w > maxSize || h > maxSize) {
		scale := float64(maxSize) / float64(max(w, h))
		sw, sh := max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)
		scaled := image.NewNRGBA(image.Rect(0, 0, sw, sh))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
	}
	return img, nil
}

func frame(img *image.NRGBA, c common.Color) {
	b := img.Bounds()
	src := image.NewUniform(c.NRGBA())
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+borderWidth),
		image.Rect(b.Min.X, b.Max.Y-borderWidth, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+borderWidth, b.Max.Y),
		image.Rect(b.Max.X-borderWidth, b.Min.Y, b.Max.X, b.Max.Y),
	} {
		draw.Draw(img, r, src, image.Point{}, draw.Src)
	}
}

// staging wraps a rasterized label for upload. The image origin is always zero, so its pixels
// are tightly packed.
func staging(img *image.NRGBA) common.TextureStagingData {
	b := img.Bounds()
	return common.TextureStagingData{Pixels: img.Pix, Width: uint32(b.Dx()), Height: uint32(b.Dy())}
}
