package shader

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed assets/wgsl/*.wgsl assets/glsl/*
var assets embed.FS

// Shadow is the shadow sampling a program variant is compiled with.
type Shadow int

const (
	ShadowNone Shadow = iota
	// ShadowHard takes one comparison sample of the shadow map.
	ShadowHard
	// ShadowSoft filters the shadow map with a 3x3 PCF kernel.
	ShadowSoft
)

func (s Shadow) String() string {
	switch s {
	case ShadowHard:
		return "hard"
	case ShadowSoft:
		return "soft"
	default:
		return "none"
	}
}

// Variant selects one compiled form of the object and background programs.
type Variant struct {
	Shadow Shadow
	// Gradient colors objects by height from a gradient texture instead of a uniform color.
	Gradient bool
	// Constrained targets devices without depth textures. It forces ShadowNone.
	Constrained bool
}

// Normalize returns v with the fields the profile cannot use cleared.
func (v Variant) Normalize() Variant {
	if v.Constrained {
		v.Shadow = ShadowNone
	}
	return v
}

func (v Variant) String() string {
	v = v.Normalize()
	coloring := "uniform"
	if v.Gradient {
		coloring = "gradient"
	}
	profile := "desktop"
	if v.Constrained {
		profile = "constrained"
	}
	return fmt.Sprintf("shadow=%s,%s,%s", v.Shadow, coloring, profile)
}

func (v Variant) defines() map[string]bool {
	return map[string]bool{
		"SHADOW":      v.Shadow != ShadowNone,
		"SHADOW_SOFT": v.Shadow == ShadowSoft,
		"GRADIENT":    v.Gradient,
		"CONSTRAINED": v.Constrained,
	}
}

// Library generates the program sources of every renderer program for one device backend.
type Library interface {
	// Language returns the shading language the sources are generated in.
	Language() Language

	// Object returns the program for bars, points and surfaces.
	//
	// Parameters:
	//   - v: the variant; shadows are ignored on the constrained profile
	//
	// Returns:
	//   - gpu.ProgramSource: the program source
	//   - error: if the sources fail to pre-process
	Object(v Variant) (gpu.ProgramSource, error)

	// Background returns the program for the graph background and floor. It is the object
	// program without gradient coloring.
	Background(v Variant) (gpu.ProgramSource, error)

	// Item returns the textured program for custom items.
	Item(v Variant) (gpu.ProgramSource, error)

	// Label returns the program for label quads.
	Label() (gpu.ProgramSource, error)

	// Plain returns the flat color program used for grid lines and the selection pass.
	Plain() (gpu.ProgramSource, error)

	// Depth returns the depth-only program for the shadow pass.
	Depth() (gpu.ProgramSource, error)

	// ClipCorrection returns the matrix that maps OpenGL clip space to the backend's clip space.
	// Projections are multiplied by it before use.
	ClipCorrection() mgl32.Mat4
}

type library struct {
	language Language
	pp       PreProcessor
}

var _ Library = &library{}

// NewLibrary creates a Library for the given language.
//
// Parameters:
//   - language: LanguageWGSL for the WebGPU device, LanguageGLSL for the OpenGL device
//
// Returns:
//   - Library: the library
func NewLibrary(language Language) Library {
	chunks := map[string]string{
		ChunkLighting: mustAsset(language, "lighting"),
		ChunkShadow:   mustAsset(language, "shadow"),
	}
	return &library{language: language, pp: NewPreProcessor(language, chunks)}
}

func assetPath(language Language, name string) string {
	if language == LanguageGLSL {
		if strings.Contains(name, ".") {
			return "assets/glsl/" + name
		}
		return "assets/glsl/" + name + ".glsl"
	}
	return "assets/wgsl/" + name + ".wgsl"
}

func mustAsset(language Language, name string) string {
	b, err := assets.ReadFile(assetPath(language, name))
	if err != nil {
		panic(fmt.Sprintf("shader asset %s missing: %v", name, err))
	}
	return string(b)
}

func (l *library) Language() Language { return l.language }

// Uniform sets shared by the lit programs.
var (
	transformUniforms = []gpu.Uniform{
		{Name: "u_mvp", Type: gpu.UniformMat4},
		{Name: "u_model", Type: gpu.UniformMat4},
		{Name: "u_normalMatrix", Type: gpu.UniformMat4},
	}
	lightUniforms = []gpu.Uniform{
		{Name: "u_lightPosition", Type: gpu.UniformVec3},
		{Name: "u_lightStrength", Type: gpu.UniformFloat},
		{Name: "u_eyePosition", Type: gpu.UniformVec3},
		{Name: "u_ambientStrength", Type: gpu.UniformFloat},
		{Name: "u_color", Type: gpu.UniformVec4},
	}
	shadowUniforms = []gpu.Uniform{
		{Name: "u_depthMVP", Type: gpu.UniformMat4},
		{Name: "u_shadowBias", Type: gpu.UniformFloat},
		{Name: "u_shadowTexel", Type: gpu.UniformFloat},
	}
	gradientUniforms = []gpu.Uniform{
		{Name: "u_gradientMin", Type: gpu.UniformFloat},
		{Name: "u_gradientHeight", Type: gpu.UniformFloat},
	}
	mvpColorUniforms = []gpu.Uniform{
		{Name: "u_mvp", Type: gpu.UniformMat4},
		{Name: "u_color", Type: gpu.UniformVec4},
	}
)

// build pre-processes the vertex and fragment sources of a program. WGSL keeps both stages in
// one module.
func (l *library) build(label, vertex, fragment string, v Variant, src gpu.ProgramSource) (gpu.ProgramSource, error) {
	env := Environment{
		Defines:      v.defines(),
		Uniforms:     src.Uniforms,
		Textured:     src.Textured,
		DepthTexture: src.DepthTexture,
	}
	src.Label = label
	if l.language == LanguageWGSL {
		code, err := l.pp.Process(mustAsset(l.language, vertex), env)
		if err != nil {
			return gpu.ProgramSource{}, fmt.Errorf("%s: %w", label, err)
		}
		src.Vertex, src.Fragment = code, code
		return src, nil
	}

	vs, err := l.pp.Process(mustAsset(l.language, vertex+".vert"), env)
	if err != nil {
		return gpu.ProgramSource{}, fmt.Errorf("%s vertex: %w", label, err)
	}
	fs, err := l.pp.Process(mustAsset(l.language, fragment+".frag"), env)
	if err != nil {
		return gpu.ProgramSource{}, fmt.Errorf("%s fragment: %w", label, err)
	}
	src.Vertex, src.Fragment = vs, fs
	return src, nil
}

func litUniforms(v Variant, gradient bool) []gpu.Uniform {
	uniforms := append([]gpu.Uniform{}, transformUniforms...)
	uniforms = append(uniforms, lightUniforms...)
	if v.Shadow != ShadowNone {
		uniforms = append(uniforms, shadowUniforms...)
	}
	if gradient {
		uniforms = append(uniforms, gradientUniforms...)
	}
	return uniforms
}

func (l *library) Object(v Variant) (gpu.ProgramSource, error) {
	v = v.Normalize()
	return l.build("object["+v.String()+"]", "object", "object", v, gpu.ProgramSource{
		Attributes:   []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal},
		Uniforms:     litUniforms(v, v.Gradient),
		Textured:     v.Gradient,
		DepthTexture: v.Shadow != ShadowNone,
	})
}

func (l *library) Background(v Variant) (gpu.ProgramSource, error) {
	v = v.Normalize()
	v.Gradient = false
	return l.build("background["+v.String()+"]", "object", "object", v, gpu.ProgramSource{
		Attributes:   []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal},
		Uniforms:     litUniforms(v, false),
		DepthTexture: v.Shadow != ShadowNone,
	})
}

func (l *library) Item(v Variant) (gpu.ProgramSource, error) {
	v = v.Normalize()
	v.Gradient = false
	return l.build("item["+v.String()+"]", "item", "item", v, gpu.ProgramSource{
		Attributes:   []gpu.Attribute{gpu.AttributePosition, gpu.AttributeNormal, gpu.AttributeUV},
		Uniforms:     litUniforms(v, false),
		Textured:     true,
		DepthTexture: v.Shadow != ShadowNone,
	})
}

func (l *library) Label() (gpu.ProgramSource, error) {
	return l.build("label", "label", "label", Variant{}, gpu.ProgramSource{
		Attributes: []gpu.Attribute{gpu.AttributePosition, gpu.AttributeUV},
		Uniforms:   []gpu.Uniform{{Name: "u_mvp", Type: gpu.UniformMat4}},
		Textured:   true,
	})
}

func (l *library) Plain() (gpu.ProgramSource, error) {
	return l.build("plain", "plain", "plain", Variant{}, gpu.ProgramSource{
		Attributes: []gpu.Attribute{gpu.AttributePosition},
		Uniforms:   mvpColorUniforms,
	})
}

func (l *library) Depth() (gpu.ProgramSource, error) {
	return l.build("depth", "depth", "depth", Variant{}, gpu.ProgramSource{
		Attributes: []gpu.Attribute{gpu.AttributePosition},
		Uniforms:   []gpu.Uniform{{Name: "u_mvp", Type: gpu.UniformMat4}},
	})
}

func (l *library) ClipCorrection() mgl32.Mat4 {
	if l.language == LanguageGLSL {
		return mgl32.Ident4()
	}
	// z' = 0.5z + 0.5w
	return mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
}
