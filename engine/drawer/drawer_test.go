package drawer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*gputest.Recorder, Drawer, gpu.Program, model.Model) {
	t.Helper()
	dev := gputest.NewRecorder()
	prog, err := dev.CreateProgram(gpu.ProgramSource{Label: "test"})
	require.NoError(t, err)
	obj, err := model.NewModel(dev, model.Quad())
	require.NoError(t, err)
	return dev, NewDrawer(dev, WithWorkers(2)), prog, obj
}

func TestDrawObjectIsSymmetric(t *testing.T) {
	dev, d, prog, obj := newFixture(t)
	dev.UseProgram(prog)

	require.NoError(t, d.DrawObject(prog, obj, gpu.Texture{}))
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal}, dev.Draws[0].Attributes)
	assert.Empty(t, dev.Draws[0].Textures)
	assert.Equal(t, obj.IndexCount(), dev.Draws[0].Count)
	assert.Empty(t, dev.EnabledAttributes())
	assert.Zero(t, dev.BoundIndexBuffer())

	tex, err := dev.CreateTexture(common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}, true)
	require.NoError(t, err)
	require.NoError(t, d.DrawObject(prog, obj, tex))
	require.Len(t, dev.Draws, 2)
	assert.Equal(t, []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal, gpu.AttributeUV}, dev.Draws[1].Attributes)
	assert.Equal(t, map[int]uint32{0: tex.ID()}, dev.Draws[1].Textures)
	assert.Empty(t, dev.EnabledAttributes())
	assert.Zero(t, dev.BoundTextures())
	assert.Zero(t, dev.BoundIndexBuffer())
	assert.Equal(t, dev.Calls["EnableAttribute"], dev.Calls["DisableAttribute"])
}

func TestDrawObjectUnbindsOnFailure(t *testing.T) {
	dev, d, prog, obj := newFixture(t)
	dev.UseProgram(prog)
	dev.Lose()

	err := d.DrawObject(prog, obj, gpu.Texture{})
	assert.ErrorIs(t, err, gpu.ErrContextLost)
	assert.Empty(t, dev.EnabledAttributes())
	assert.Zero(t, dev.BoundIndexBuffer())
}

func TestDrawObjectRejectsReleasedHandles(t *testing.T) {
	dev, d, prog, obj := newFixture(t)
	obj.Release()
	assert.ErrorIs(t, d.DrawObject(prog, obj, gpu.Texture{}), gpu.ErrInvalidHandle)
	assert.Zero(t, dev.Calls["DrawIndexed"])
}

func TestGenerateLabelTextureFreesPrevious(t *testing.T) {
	dev, d, _, _ := newFixture(t)
	var label LabelItem
	require.NoError(t, d.GenerateLabelTexture(&label, "1.5"))
	first := label.Texture().ID()
	w, h := label.Size()
	assert.Positive(t, w)
	assert.Positive(t, h)

	require.NoError(t, d.GenerateLabelTexture(&label, "a much longer label"))
	assert.False(t, dev.IsLive(first))
	assert.Equal(t, 1, dev.Live(gpu.ObjectTexture))
	w2, _ := label.Size()
	assert.Greater(t, w2, w)

	require.NoError(t, d.GenerateLabelTexture(&label, ""))
	assert.True(t, label.Empty())
	assert.Zero(t, dev.Live(gpu.ObjectTexture))
}

func TestGenerateLabelTextureUploadFailure(t *testing.T) {
	dev, d, _, _ := newFixture(t)
	var label LabelItem
	require.NoError(t, d.GenerateLabelTexture(&label, "x"))

	dev.FailAlloc = true
	assert.ErrorIs(t, d.GenerateLabelTexture(&label, "y"), gpu.ErrOutOfMemory)
	assert.True(t, label.Empty())
	assert.Zero(t, dev.Live(gpu.ObjectTexture))
}

func TestGenerateLabelTextures(t *testing.T) {
	dev, d, _, _ := newFixture(t)
	labels := make([]*LabelItem, 5)
	for i := range labels {
		labels[i] = &LabelItem{}
	}
	texts := []string{"0", "10", "", "30", "40"}
	require.NoError(t, d.GenerateLabelTextures(labels, texts))
	assert.Equal(t, 4, dev.Live(gpu.ObjectTexture))
	assert.True(t, labels[2].Empty())

	require.NoError(t, d.GenerateLabelTextures(labels, texts))
	assert.Equal(t, 4, dev.Live(gpu.ObjectTexture))

	assert.ErrorIs(t, d.GenerateLabelTextures(labels, texts[:2]), ErrLengthMismatch)
}

func TestCloseStopsWorkers(t *testing.T) {
	dev, d, _, _ := newFixture(t)
	require.NotNil(t, d.(*drawer).pool)

	d.Close()
	d.Close()
	assert.Nil(t, d.(*drawer).pool)

	labels := []*LabelItem{{}, {}, {}}
	require.NoError(t, d.GenerateLabelTextures(labels, []string{"a", "b", "c"}))
	assert.Equal(t, 3, dev.Live(gpu.ObjectTexture))
}

func TestItemLabelUsesItsOwnStyle(t *testing.T) {
	dev, d, _, _ := newFixture(t)
	it := item.NewLabelItem(item.WithText("peak"))
	var label LabelItem
	require.NoError(t, d.GenerateItemLabelTexture(&label, it))
	assert.False(t, label.Empty())
	assert.Equal(t, 1, dev.Live(gpu.ObjectTexture))
}

func TestListenersFollowLabelChanges(t *testing.T) {
	_, d, _, _ := newFixture(t)
	calls := 0
	unsubscribe := d.Subscribe(func() { calls++ })

	f := d.Theme().Font
	d.SetFont(f)
	assert.Zero(t, calls)
	f.Size += 4
	d.SetFont(f)
	assert.Equal(t, 1, calls)

	d.SetLabelTransparency(theme.TransparencyNoBackground)
	d.SetLabelTransparency(theme.TransparencyNoBackground)
	assert.Equal(t, 2, calls)

	th := d.Theme()
	th.BaseColor = common.Color{1, 0, 0, 1}
	d.SetTheme(th)
	assert.Equal(t, 2, calls)

	th.LabelTextColor = common.Color{0, 1, 0, 1}
	d.SetTheme(th)
	assert.Equal(t, 3, calls)

	unsubscribe()
	d.SetFont(theme.Font{Face: theme.FaceMono, Size: 9})
	assert.Equal(t, 3, calls)
}

func TestTransparencyModes(t *testing.T) {
	th := theme.FromPreset(theme.PresetQt)
	th.LabelBackgroundColor = common.Color{1, 1, 1, 0.5}
	inset := borderWidth

	th.LabelTransparency = theme.TransparencyNone
	img, err := Rasterize("42", StyleFromTheme(th), 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(inset, inset).A)

	th.LabelTransparency = theme.TransparencyFromTheme
	img, err = Rasterize("42", StyleFromTheme(th), 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(128), img.NRGBAAt(inset, inset).A)

	th.LabelTransparency = theme.TransparencyNoBackground
	style := StyleFromTheme(th)
	assert.False(t, style.BorderEnabled)
	img, err = Rasterize("42", style, 0)
	require.NoError(t, err)
	assert.Zero(t, img.NRGBAAt(0, 0).A)
}

func TestRasterizeLimits(t *testing.T) {
	_, err := Rasterize("", LabelStyle{}, 0)
	assert.ErrorIs(t, err, ErrEmptyText)

	img, err := Rasterize("a label wider than the limit", LabelStyle{Font: theme.Font{Face: theme.FaceBold, Size: 24}}, 64)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 64)
	assert.LessOrEqual(t, img.Bounds().Dy(), 64)
}
