package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPresetResolves(t *testing.T) {
	for _, p := range Presets() {
		th := FromPreset(p)
		assert.Equal(t, p.String(), th.Name)
		parsed, err := ParsePreset(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParsePreset("neon")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, common.Color{1, 0, 0, 1}, c)

	c, err = ParseColor("#00ff0080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255.0, c[3], 1e-6)
	assert.Equal(t, "#00ff0080", FormatColor(c))

	_, err = ParseColor("red")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = ParseColor("#00ff00zz")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestGradientColor(t *testing.T) {
	th := New(PresetQt,
		WithUniformColoring(false),
		WithBaseColor(common.Color{0, 0, 0, 1}),
		WithHeightColor(common.Color{1, 1, 1, 1}),
	)
	bottom := th.GradientColor(-1)
	assert.InDelta(t, 0, bottom[0], 1e-4)
	assert.Equal(t, float32(1), bottom[3])
	top := th.GradientColor(2)
	assert.InDelta(t, 1, top[0], 1e-4)

	strip := th.GradientTexture(4)
	assert.Equal(t, uint32(4), strip.Width)
	assert.Len(t, strip.Pixels, 16)

	uniform := th.With(WithUniformColoring(true))
	assert.Equal(t, uniform.BaseColor, uniform.GradientColor(0.5))
	assert.False(t, th.UniformColoring)
}

func TestLabelBackground(t *testing.T) {
	th := New(PresetQt, WithLabelBackgroundColor(common.Color{1, 1, 1, 0.5}))

	_, ok := th.With(WithLabelTransparency(TransparencyNoBackground)).LabelBackground()
	assert.False(t, ok)

	bg, ok := th.With(WithLabelTransparency(TransparencyFromTheme)).LabelBackground()
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), bg[3])

	bg, _ = th.With(WithLabelTransparency(TransparencyNone)).LabelBackground()
	assert.Equal(t, float32(1), bg[3])
}

func TestDecodeYAMLAndTOML(t *testing.T) {
	y, err := Decode([]byte("preset: retro\nbaseColor: \"#112233\"\nfontSize: 12\nlabelTransparency: no-background\n"), ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "Retro", y.Name)
	assert.Equal(t, "#112233", FormatColor(y.BaseColor))
	assert.Equal(t, 12.0, y.Font.Size)
	assert.Equal(t, TransparencyNoBackground, y.LabelTransparency)

	tm, err := Decode([]byte("preset = \"Ebony\"\nname = \"night\"\ngridEnabled = false\n"), ".toml")
	require.NoError(t, err)
	assert.Equal(t, "night", tm.Name)
	assert.False(t, tm.GridEnabled)
	assert.Equal(t, FromPreset(PresetEbony).BaseColor, tm.BaseColor)

	_, err = Decode([]byte("{}"), ".json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Decode([]byte("fontSize: -1\n"), ".yml")
	assert.Error(t, err)
}

func TestWatchReloadsTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preset: qt\n"), 0o644))

	got := make(chan Theme, 4)
	w, err := Watch(path, func(th Theme) {
		select {
		case got <- th:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("preset: isabelle\n"), 0o644))
	// A truncating write can surface an intermediate empty file first.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case th := <-got:
			if th.Name != "Isabelle" {
				continue
			}
		case <-timeout:
			t.Fatal("theme was not reloaded")
		}
		break
	}
	assert.NoError(t, w.Close())
}
