package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("    //@oxy:if SHADOW", 3)
	require.NoError(t, err)
	assert.Equal(t, &Annotation{Type: AnnotationTypeIf, Arg: "SHADOW", Line: 3}, a)

	a, err = parseAnnotation("let x = 1.0; // plain comment", 1)
	assert.NoError(t, err)
	assert.Nil(t, a)

	_, err = parseAnnotation("//@oxy:include nope", 1)
	assert.Error(t, err)
	_, err = parseAnnotation("//@oxy:endif extra", 1)
	assert.Error(t, err)
	_, err = parseAnnotation("//@oxy:", 1)
	assert.Error(t, err)
	_, err = parseAnnotation("//@oxy:define X", 1)
	assert.Error(t, err)
}

func TestProcessConditionals(t *testing.T) {
	pp := NewPreProcessor(LanguageGLSL, nil)
	src := "a\n//@oxy:if A\nb\n//@oxy:ifnot B\nc\n//@oxy:else\nd\n//@oxy:endif\n//@oxy:else\ne\n//@oxy:endif\nf"

	out, err := pp.Process(src, Environment{Defines: map[string]bool{"A": true}})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\nf\n", out)

	out, err = pp.Process(src, Environment{Defines: map[string]bool{"A": true, "B": true}})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nd\nf\n", out)

	out, err = pp.Process(src, Environment{})
	require.NoError(t, err)
	assert.Equal(t, "a\ne\nf\n", out)
}

func TestProcessUnbalanced(t *testing.T) {
	pp := NewPreProcessor(LanguageGLSL, nil)
	for _, src := range []string{
		"//@oxy:if A\nx",
		"//@oxy:endif",
		"//@oxy:else",
		"//@oxy:if A\n//@oxy:else\n//@oxy:else\n//@oxy:endif",
	} {
		_, err := pp.Process(src, Environment{})
		assert.Error(t, err, src)
	}
}

func TestProcessIncludeUsesDefines(t *testing.T) {
	pp := NewPreProcessor(LanguageGLSL, map[string]string{
		ChunkShadow: "//@oxy:if SHADOW_SOFT\nsoft\n//@oxy:else\nhard\n//@oxy:endif",
	})
	out, err := pp.Process("//@oxy:include shadow", Environment{Defines: map[string]bool{"SHADOW_SOFT": true}})
	require.NoError(t, err)
	assert.Equal(t, "soft\n", out)

	// Includes inside inactive blocks are skipped, even when the chunk is missing.
	out, err = pp.Process("//@oxy:if X\n//@oxy:include lighting\n//@oxy:endif\nok", Environment{})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = pp.Process("//@oxy:include lighting", Environment{})
	assert.Error(t, err)
}

func TestProcessUniforms(t *testing.T) {
	env := Environment{
		Uniforms: []gpu.Uniform{
			{Name: "u_mvp", Type: gpu.UniformMat4},
			{Name: "u_color", Type: gpu.UniformVec4},
		},
		Textured:     true,
		DepthTexture: true,
	}

	glsl, err := NewPreProcessor(LanguageGLSL, nil).Process("//@oxy:uniforms", env)
	require.NoError(t, err)
	assert.Equal(t, "uniform mat4 u_mvp;\nuniform vec4 u_color;\nuniform sampler2D u_texture;\nuniform sampler2DShadow u_shadowMap;\n", glsl)

	wgsl, err := NewPreProcessor(LanguageWGSL, nil).Process("//@oxy:uniforms", env)
	require.NoError(t, err)
	assert.Contains(t, wgsl, "    u_mvp: mat4x4<f32>,\n    u_color: vec4<f32>,\n")
	assert.Contains(t, wgsl, "@group(0) @binding(0) var<uniform> u: Uniforms;")
	assert.Contains(t, wgsl, "@binding(1) var u_texture: texture_2d<f32>;")
	assert.Contains(t, wgsl, "@binding(4) var u_shadowSampler: sampler_comparison;")
}
