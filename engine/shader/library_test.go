package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasUniform(src gpu.ProgramSource, name string) bool {
	for _, u := range src.Uniforms {
		if u.Name == name {
			return true
		}
	}
	return false
}

func TestObjectVariants(t *testing.T) {
	for _, lang := range []Language{LanguageWGSL, LanguageGLSL} {
		lib := NewLibrary(lang)

		plain, err := lib.Object(Variant{})
		require.NoError(t, err, lang)
		assert.False(t, plain.DepthTexture)
		assert.False(t, plain.Textured)
		assert.NotContains(t, plain.Fragment, "shadow")
		assert.NotContains(t, plain.Fragment, "@oxy:")

		soft, err := lib.Object(Variant{Shadow: ShadowSoft, Gradient: true})
		require.NoError(t, err, lang)
		assert.True(t, soft.DepthTexture)
		assert.True(t, soft.Textured)
		assert.True(t, hasUniform(soft, "u_depthMVP"))
		assert.True(t, hasUniform(soft, "u_gradientHeight"))
		assert.Contains(t, strings.ToLower(soft.Fragment), "shadowmap")
		assert.Contains(t, soft.Fragment, "for (")

		hard, err := lib.Object(Variant{Shadow: ShadowHard})
		require.NoError(t, err, lang)
		assert.NotContains(t, hard.Fragment, "for (")
	}
}

func TestConstrainedIgnoresShadows(t *testing.T) {
	lib := NewLibrary(LanguageGLSL)
	a, err := lib.Object(Variant{Shadow: ShadowSoft, Constrained: true})
	require.NoError(t, err)
	b, err := lib.Object(Variant{Constrained: true})
	require.NoError(t, err)
	assert.Equal(t, b, a)
	assert.Equal(t, "object[shadow=none,uniform,constrained]", a.Label)
}

func TestBackgroundNeverUsesGradient(t *testing.T) {
	lib := NewLibrary(LanguageWGSL)
	bg, err := lib.Background(Variant{Gradient: true, Shadow: ShadowHard})
	require.NoError(t, err)
	assert.False(t, bg.Textured)
	assert.True(t, bg.DepthTexture)
	assert.NotContains(t, bg.Fragment, "u_texture")
	assert.Equal(t, "background[shadow=hard,uniform,desktop]", bg.Label)
}

func TestAuxiliaryPrograms(t *testing.T) {
	for _, lang := range []Language{LanguageWGSL, LanguageGLSL} {
		lib := NewLibrary(lang)

		label, err := lib.Label()
		require.NoError(t, err)
		assert.Equal(t, []gpu.Attribute{gpu.AttributePosition, gpu.AttributeUV}, label.Attributes)
		assert.True(t, label.Textured)

		plain, err := lib.Plain()
		require.NoError(t, err)
		assert.True(t, hasUniform(plain, "u_color"))

		depth, err := lib.Depth()
		require.NoError(t, err)
		assert.Equal(t, []gpu.Attribute{gpu.AttributePosition}, depth.Attributes)

		item, err := lib.Item(Variant{Shadow: ShadowHard})
		require.NoError(t, err)
		assert.Len(t, item.Attributes, 3)
		assert.True(t, item.Textured)
	}
}

func TestClipCorrection(t *testing.T) {
	assert.Equal(t, mgl32.Ident4(), NewLibrary(LanguageGLSL).ClipCorrection())

	m := NewLibrary(LanguageWGSL).ClipCorrection()
	near := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := m.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	assert.InDelta(t, 0, near.Z(), 1e-6)
	assert.InDelta(t, 1, far.Z(), 1e-6)
}
