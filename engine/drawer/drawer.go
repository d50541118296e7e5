// Package drawer issues the draw calls shared by every chart renderer and turns label text into
// textures. It binds exactly what a draw needs and unbinds it afterwards, so no state leaks from
// one object to the next.
package drawer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// ErrLengthMismatch is returned by batch generation when labels and texts differ in length.
var ErrLengthMismatch = errors.New("labels and texts differ in length")

// textureUnit is the unit object textures are bound to. Unit 1 belongs to the shadow map.
const textureUnit = 0

// LabelItem is a rasterized label: its texture and the pixel size of the image it came from.
// The zero value is an empty label.
type LabelItem struct {
	texture gpu.Texture
	width   int
	height  int
}

// Texture returns the label texture, invalid while the label is empty.
func (l *LabelItem) Texture() gpu.Texture { return l.texture }

// Size returns the pixel size of the label image.
func (l *LabelItem) Size() (int, int) { return l.width, l.height }

// Empty reports whether the label has no texture.
func (l *LabelItem) Empty() bool { return !l.texture.Valid() }

// Clear frees the texture and resets the size.
func (l *LabelItem) Clear() {
	l.texture.Release()
	l.width, l.height = 0, 0
}

// Drawer draws models and generates label textures on one device.
type Drawer interface {
	// Theme returns the theme labels are styled from.
	Theme() theme.Theme

	// SetTheme replaces the theme. Listeners are notified when anything that affects label
	// rasterization changed.
	//
	// Parameters:
	//   - th: the new theme
	SetTheme(th theme.Theme)

	// SetFont replaces the label font and notifies listeners if it changed.
	SetFont(f theme.Font)

	// SetLabelTransparency replaces the label transparency mode and notifies listeners if it changed.
	SetLabelTransparency(t theme.LabelTransparency)

	// Style returns the current label style derived from the theme.
	Style() LabelStyle

	// Subscribe registers a listener called after every label-affecting change.
	//
	// Returns:
	//   - func(): removes the listener
	Subscribe(listener func()) (unsubscribe func())

	// DrawObject draws a model. The caller has made program current and set its uniforms.
	// Position and normal are always fed; UV is fed and the texture bound only when texture is
	// valid. Everything bound is unbound before returning, on success and failure alike.
	//
	// Parameters:
	//   - program: the program in use
	//   - object: the model
	//   - texture: the texture for textured programs, or a zero Texture
	//
	// Returns:
	//   - error: gpu.ErrInvalidHandle for a released program or model, or the device error,
	//     e.g. gpu.ErrContextLost
	DrawObject(program gpu.Program, object model.Model, texture gpu.Texture) error

	// GenerateLabelTexture rasterizes text with the theme style and uploads it into label. The
	// previous texture is freed first. Empty text leaves the label empty.
	//
	// Parameters:
	//   - label: the label to fill
	//   - text: the text
	//
	// Returns:
	//   - error: the upload error; the label is empty afterwards
	GenerateLabelTexture(label *LabelItem, text string) error

	// GenerateStyledLabelTexture is GenerateLabelTexture with an explicit style.
	GenerateStyledLabelTexture(label *LabelItem, text string, style LabelStyle) error

	// GenerateItemLabelTexture rasterizes a custom label item with its own font and colors.
	GenerateItemLabelTexture(label *LabelItem, it item.LabelItem) error

	// GenerateLabelTextures regenerates many labels at once. Rasterization runs on the worker
	// pool; uploads happen on the calling goroutine.
	//
	// Parameters:
	//   - labels: the labels to fill
	//   - texts: the text of each label
	//
	// Returns:
	//   - error: ErrLengthMismatch, or the joined upload errors
	GenerateLabelTextures(labels []*LabelItem, texts []string) error

	// Close stops the rasterization workers. Later batches rasterize on the calling goroutine.
	Close()
}

// drawer is the implementation of the Drawer interface.
type drawer struct {
	device    gpu.Device
	logger    *slog.Logger
	theme     theme.Theme
	listeners common.Subscribers[func()]

	workers int
	pool    worker.DynamicWorkerPool
}

var _ Drawer = &drawer{}

// NewDrawer creates a Drawer on a device.
//
// Parameters:
//   - device: the device every draw and upload goes to
//   - options: a variadic list of DrawerBuilderOption functions
//
// Returns:
//   - Drawer: the drawer
func NewDrawer(device gpu.Device, options ...DrawerBuilderOption) Drawer {
	d := &drawer{
		device:  device,
		logger:  slog.Default().With("component", "drawer"),
		theme:   theme.FromPreset(theme.PresetQt),
		workers: 4,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.workers > 1 {
		d.pool = worker.NewDynamicWorkerPool(d.workers, 256, 1*time.Second)
	}
	return d
}

func (d *drawer) Theme() theme.Theme { return d.theme }

func (d *drawer) SetTheme(th theme.Theme) {
	before := d.Style()
	d.theme = th
	if d.Style() != before {
		d.notify()
	}
}

func (d *drawer) SetFont(f theme.Font) {
	if f == d.theme.Font {
		return
	}
	d.theme.Font = f
	d.notify()
}

func (d *drawer) SetLabelTransparency(t theme.LabelTransparency) {
	if t == d.theme.LabelTransparency {
		return
	}
	d.theme.LabelTransparency = t
	d.notify()
}

func (d *drawer) Style() LabelStyle { return StyleFromTheme(d.theme) }

func (d *drawer) Subscribe(listener func()) func() {
	return d.listeners.Add(listener)
}

func (d *drawer) notify() {
	d.listeners.Each(func(fn func()) { fn() })
}

func (d *drawer) DrawObject(program gpu.Program, object model.Model, texture gpu.Texture) error {
	if !program.Valid() || !object.IndexBuffer().Valid() {
		return fmt.Errorf("draw %s: %w", object.Name(), gpu.ErrInvalidHandle)
	}
	textured := texture.Valid()
	attributes := []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal}
	if textured {
		attributes = append(attributes, gpu.AttributeUV)
	}

	for _, a := range attributes {
		d.device.EnableAttribute(a, object.Buffer(a))
	}
	if textured {
		d.device.BindTexture(textureUnit, texture)
	}
	d.device.BindIndexBuffer(object.IndexBuffer())

	err := d.device.DrawIndexed(object.Mode(), object.IndexCount())

	d.device.UnbindIndexBuffer()
	if textured {
		d.device.UnbindTexture(textureUnit)
	}
	for _, a := range attributes {
		d.device.DisableAttribute(a)
	}
	if err != nil {
		return fmt.Errorf("draw %s: %w", object.Name(), err)
	}
	return nil
}

func (d *drawer) GenerateLabelTexture(label *LabelItem, text string) error {
	return d.GenerateStyledLabelTexture(label, text, d.Style())
}

func (d *drawer) GenerateStyledLabelTexture(label *LabelItem, text string, style LabelStyle) error {
	label.Clear()
	if text == "" {
		return nil
	}
	img, err := Rasterize(text, style, d.device.Capabilities().MaxTextureSize)
	if err != nil {
		return err
	}
	return d.upload(label, img)
}

func (d *drawer) GenerateItemLabelTexture(label *LabelItem, it item.LabelItem) error {
	return d.GenerateStyledLabelTexture(label, it.Text(), LabelStyle{
		Font:              it.Font(),
		TextColor:         it.TextColor(),
		Background:        it.BackgroundColor(),
		BackgroundEnabled: it.BackgroundEnabled(),
		BorderEnabled:     it.BackgroundEnabled() && it.BorderEnabled(),
	})
}

func (d *drawer) GenerateLabelTextures(labels []*LabelItem, texts []string) error {
	if len(labels) != len(texts) {
		return fmt.Errorf("%w: %d labels, %d texts", ErrLengthMismatch, len(labels), len(texts))
	}
	for _, l := range labels {
		l.Clear()
	}

	style := d.Style()
	maxSize := d.device.Capabilities().MaxTextureSize
	images := make([]*image.NRGBA, len(labels))
	errs := make([]error, len(labels))
	rasterize := func(i int) {
		if texts[i] == "" {
			return
		}
		images[i], errs[i] = Rasterize(texts[i], style, maxSize)
	}

	if d.pool == nil || len(labels) < 2 {
		for i := range labels {
			rasterize(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := range labels {
			wg.Add(1)
			idx := i
			d.pool.SubmitTask(worker.Task{
				ID: idx,
				Do: func() (any, error) {
					defer wg.Done()
					rasterize(idx)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	for i, img := range images {
		if errs[i] != nil || img == nil {
			continue
		}
		errs[i] = d.upload(labels[i], img)
	}
	err := errors.Join(errs...)
	if err != nil {
		d.logger.Warn("label generation failed", "labels", len(labels), "error", err)
	}
	return err
}

func (d *drawer) Close() {
	if d.pool == nil {
		return
	}
	d.pool.Stop()
	d.pool = nil
}

func (d *drawer) upload(label *LabelItem, img *image.NRGBA) error {
	tex, err := d.device.CreateTexture(staging(img), true)
	if err != nil {
		return fmt.Errorf("upload label texture: %w", err)
	}
	b := img.Bounds()
	label.texture = tex
	label.width, label.height = b.Dx(), b.Dy()
	return nil
}
